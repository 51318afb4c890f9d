package domain

import "fmt"

// Payload is the normalized body sent on create and update
type Payload struct {
	InvoiceNumber string        `json:"invoice_number"`
	CustomerName  string        `json:"customer_name"`
	Date          string        `json:"date"`
	Details       []PayloadLine `json:"details"`
}

// PayloadLine is a line item with coerced numeric fields
type PayloadLine struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// NewPayload coerces quantity and unit price of every line.
// Details is never nil so it encodes as [].
func NewPayload(inv Invoice) (Payload, error) {
	p := Payload{
		InvoiceNumber: inv.InvoiceNumber,
		CustomerName:  inv.CustomerName,
		Date:          inv.Date,
		Details:       make([]PayloadLine, 0, len(inv.Details)),
	}

	for i, item := range inv.Details {
		qty, err := item.Quantity.Float()
		if err != nil {
			return Payload{}, fmt.Errorf("line %d quantity: %w", i+1, err)
		}
		price, err := item.UnitPrice.Float()
		if err != nil {
			return Payload{}, fmt.Errorf("line %d unit price: %w", i+1, err)
		}
		p.Details = append(p.Details, PayloadLine{
			Description: item.Description,
			Quantity:    qty,
			UnitPrice:   price,
		})
	}

	return p, nil
}
