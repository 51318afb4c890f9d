package domain

import "github.com/shopspring/decimal"

// LineTotal returns quantity x unit price rounded half away from zero to 2 places
func LineTotal(item LineItem) (decimal.Decimal, error) {
	qty, err := item.Quantity.Decimal()
	if err != nil {
		return decimal.Zero, err
	}
	price, err := item.UnitPrice.Decimal()
	if err != nil {
		return decimal.Zero, err
	}
	return qty.Mul(price).Round(2), nil
}

// FormatLineTotal renders the line total with two decimals, or "-" for bad input
func FormatLineTotal(item LineItem) string {
	total, err := LineTotal(item)
	if err != nil {
		return "-"
	}
	return total.StringFixed(2)
}

// BreakdownLine is one display row of the computed breakdown
type BreakdownLine struct {
	Item  LineItem
	Total decimal.Decimal
	Valid bool
}

// InvoiceBreakdown holds the per-line totals and their sum
type InvoiceBreakdown struct {
	Lines   []BreakdownLine
	Total   decimal.Decimal
	Invalid int // lines left out of Total
}

// Breakdown computes line totals for display. Nothing here is persisted.
func Breakdown(inv Invoice) InvoiceBreakdown {
	b := InvoiceBreakdown{
		Lines: make([]BreakdownLine, 0, len(inv.Details)),
		Total: decimal.Zero,
	}
	for _, item := range inv.Details {
		total, err := LineTotal(item)
		if err != nil {
			b.Lines = append(b.Lines, BreakdownLine{Item: item})
			b.Invalid++
			continue
		}
		b.Lines = append(b.Lines, BreakdownLine{Item: item, Total: total, Valid: true})
		b.Total = b.Total.Add(total)
	}
	return b
}
