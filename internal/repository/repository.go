package repository

import (
	"context"

	"github.com/andy/invoicedesk/internal/domain"
)

// InvoiceRepository is the remote invoice collection
type InvoiceRepository interface {
	// List returns every invoice, walking pages when the backend paginates
	List(ctx context.Context) ([]domain.Invoice, error)
	Create(ctx context.Context, payload domain.Payload) (*domain.Invoice, error)
	// Update replaces an invoice. The returned invoice is nil when the backend only acks.
	Update(ctx context.Context, id int64, payload domain.Payload) (*domain.Invoice, error)
	Delete(ctx context.Context, id int64) error
}
