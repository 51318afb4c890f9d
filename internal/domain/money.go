package domain

import "github.com/shopspring/decimal"

// FormatMoney formats an amount as "$X,XXX.XX" with comma separators
func FormatMoney(amount decimal.Decimal, symbol string) string {
	negative := amount.IsNegative()
	if negative {
		amount = amount.Neg()
	}

	s := amount.StringFixed(2)

	// Split at decimal point
	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos:]

	// Add commas to integer part
	result := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	prefix := symbol
	if negative {
		prefix = "-" + symbol
	}
	return prefix + string(result) + decPart
}
