// Package form holds the invoice draft and edit-mode flag behind explicit,
// side-effect free transitions. Network calls live in the service package.
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andy/invoicedesk/internal/domain"
)

var (
	ErrUnknownField    = errors.New("unknown field")
	ErrIndexOutOfRange = errors.New("line item index out of range")
)

// Field names a scalar header field of the draft
type Field string

const (
	FieldInvoiceNumber Field = "invoice_number"
	FieldCustomerName  Field = "customer_name"
	FieldDate          Field = "date"
)

// LineField names an editable field of a line item
type LineField string

const (
	LineDescription LineField = "description"
	LineQuantity    LineField = "quantity"
	LineUnitPrice   LineField = "unit_price"
)

// Form is the draft invoice plus the edit-mode flag.
// It is not safe for concurrent use; the owner serializes access.
type Form struct {
	draft   domain.Invoice
	editing bool
}

// New returns a form holding the empty draft
func New() *Form {
	f := &Form{}
	f.Reset()
	return f
}

// Draft returns a copy of the current draft
func (f *Form) Draft() domain.Invoice {
	return f.draft.Clone()
}

// Editing reports whether submit updates an existing invoice
func (f *Form) Editing() bool {
	return f.editing
}

// Target returns the identity an update is sent to, nil when creating
func (f *Form) Target() *int64 {
	if !f.editing || f.draft.ID == nil {
		return nil
	}
	id := *f.draft.ID
	return &id
}

// LineCount returns the number of line items in the draft
func (f *Form) LineCount() int {
	return len(f.draft.Details)
}

// SetField overwrites one header field
func (f *Form) SetField(name Field, value string) error {
	switch name {
	case FieldInvoiceNumber:
		f.draft.InvoiceNumber = value
	case FieldCustomerName:
		f.draft.CustomerName = value
	case FieldDate:
		f.draft.Date = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// AddLineItem appends a zero-valued line item
func (f *Form) AddLineItem() {
	f.draft.Details = append(f.draft.Details, domain.NewLineItem())
}

// RemoveLineItem removes the item at index, keeping the order of the rest
func (f *Form) RemoveLineItem(index int) error {
	if err := f.checkIndex(index); err != nil {
		return err
	}
	details := make([]domain.LineItem, 0, len(f.draft.Details)-1)
	details = append(details, f.draft.Details[:index]...)
	details = append(details, f.draft.Details[index+1:]...)
	f.draft.Details = details
	return nil
}

// SetLineItemField stores the raw value without coercion
func (f *Form) SetLineItemField(index int, field LineField, value string) error {
	if err := f.checkIndex(index); err != nil {
		return err
	}
	item := &f.draft.Details[index]
	switch field {
	case LineDescription:
		item.Description = value
	case LineQuantity:
		item.Quantity = domain.Numeric(value)
	case LineUnitPrice:
		item.UnitPrice = domain.Numeric(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// BeginEdit replaces the draft with a copy of inv and enters edit-mode
func (f *Form) BeginEdit(inv domain.Invoice) {
	f.draft = inv.Clone()
	f.editing = true
}

// Reset returns to the empty draft in create mode
func (f *Form) Reset() {
	f.draft = domain.NewInvoice()
	f.editing = false
}

// BuildPayload is the only place raw numeric input is coerced
func (f *Form) BuildPayload() (domain.Payload, error) {
	return domain.NewPayload(f.draft)
}

// Missing lists required inputs that are still empty
func (f *Form) Missing() []string {
	var missing []string
	if strings.TrimSpace(f.draft.InvoiceNumber) == "" {
		missing = append(missing, "invoice number")
	}
	if strings.TrimSpace(f.draft.CustomerName) == "" {
		missing = append(missing, "customer name")
	}
	if strings.TrimSpace(f.draft.Date) == "" {
		missing = append(missing, "date")
	}
	for i, item := range f.draft.Details {
		if strings.TrimSpace(item.Description) == "" {
			missing = append(missing, fmt.Sprintf("line %d description", i+1))
		}
		if item.Quantity.IsBlank() {
			missing = append(missing, fmt.Sprintf("line %d quantity", i+1))
		}
		if item.UnitPrice.IsBlank() {
			missing = append(missing, fmt.Sprintf("line %d unit price", i+1))
		}
	}
	return missing
}

func (f *Form) checkIndex(index int) error {
	if index < 0 || index >= len(f.draft.Details) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(f.draft.Details))
	}
	return nil
}
