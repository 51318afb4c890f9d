package domain

import (
	"errors"
	"time"
)

// DateLayout is the calendar date format the backend speaks
const DateLayout = "2006-01-02"

// Invoice mirrors the backend invoice resource
type Invoice struct {
	ID            *int64     `json:"id"` // nil until the backend assigns one
	InvoiceNumber string     `json:"invoice_number"`
	CustomerName  string     `json:"customer_name"`
	Date          string     `json:"date"`
	Details       []LineItem `json:"details"`
}

// LineItem is one billable row of an invoice
type LineItem struct {
	Description string  `json:"description"`
	Quantity    Numeric `json:"quantity"`
	UnitPrice   Numeric `json:"unit_price"`
}

// NewInvoice returns the empty draft shape
func NewInvoice() Invoice {
	return Invoice{Details: make([]LineItem, 0)}
}

// NewLineItem returns a zero-valued line item
func NewLineItem() LineItem {
	return LineItem{Quantity: "0", UnitPrice: "0"}
}

// IsPersisted returns true once the backend has assigned an identity
func (i Invoice) IsPersisted() bool {
	return i.ID != nil
}

// IDValue returns the identity or 0 when unsaved
func (i Invoice) IDValue() int64 {
	if i.ID == nil {
		return 0
	}
	return *i.ID
}

// Clone returns a deep copy so edits never alias the source
func (i Invoice) Clone() Invoice {
	out := i
	if i.ID != nil {
		id := *i.ID
		out.ID = &id
	}
	if i.Details != nil {
		out.Details = make([]LineItem, len(i.Details))
		copy(out.Details, i.Details)
	}
	return out
}

// ParsedDate parses the Date field
func (i Invoice) ParsedDate() (time.Time, error) {
	if i.Date == "" {
		return time.Time{}, errors.New("date is required")
	}
	return time.Parse(DateLayout, i.Date)
}

// Int64Ptr is a helper for building invoices with an identity
func Int64Ptr(v int64) *int64 {
	return &v
}
