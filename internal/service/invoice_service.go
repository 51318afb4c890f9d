package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/form"
	"github.com/andy/invoicedesk/internal/repository"
	"go.uber.org/zap"
)

var (
	// ErrStaleCollection wraps a refresh failure that followed a successful mutation
	ErrStaleCollection = errors.New("saved, but the invoice list could not be refreshed")
	ErrMissingID       = errors.New("invoice being edited has no id")
)

// InvoiceService mirrors the remote invoice collection and performs mutations.
// Every mutation is followed by a full refresh; nothing is applied optimistically.
type InvoiceService interface {
	// FetchAll replaces the cache with the backend's collection.
	// On failure the previous cache is kept.
	FetchAll(ctx context.Context) ([]domain.Invoice, error)

	// Invoices returns a copy of the cached collection
	Invoices() []domain.Invoice

	// Find looks an invoice up in the cache
	Find(id int64) (domain.Invoice, bool)

	Create(ctx context.Context, payload domain.Payload) (*domain.Invoice, error)
	Update(ctx context.Context, id int64, payload domain.Payload) (*domain.Invoice, error)

	// Remove deletes an invoice and refreshes the cache on success
	Remove(ctx context.Context, id int64) error

	// Save creates when target is nil and updates otherwise, then refreshes
	Save(ctx context.Context, target *int64, payload domain.Payload) error

	// Submit builds the payload from f, saves it and resets f on success.
	// On failure f is left untouched so the user can retry.
	Submit(ctx context.Context, f *form.Form) error
}

type invoiceService struct {
	repo repository.InvoiceRepository
	log  *zap.Logger

	mu       sync.RWMutex
	invoices []domain.Invoice
}

// NewInvoiceService creates an invoice service with an empty cache
func NewInvoiceService(repo repository.InvoiceRepository, log *zap.Logger) InvoiceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &invoiceService{
		repo:     repo,
		log:      log,
		invoices: make([]domain.Invoice, 0),
	}
}

func (s *invoiceService) FetchAll(ctx context.Context) ([]domain.Invoice, error) {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("fetch invoices failed", zap.Error(err))
		return s.Invoices(), fmt.Errorf("fetch invoices: %w", err)
	}

	s.mu.Lock()
	s.invoices = invoices
	s.mu.Unlock()

	s.log.Debug("invoice cache replaced", zap.Int("count", len(invoices)))
	return s.Invoices(), nil
}

func (s *invoiceService) Invoices() []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Invoice, len(s.invoices))
	for i, inv := range s.invoices {
		out[i] = inv.Clone()
	}
	return out
}

func (s *invoiceService) Find(id int64) (domain.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invoices {
		if inv.ID != nil && *inv.ID == id {
			return inv.Clone(), true
		}
	}
	return domain.Invoice{}, false
}

func (s *invoiceService) Create(ctx context.Context, payload domain.Payload) (*domain.Invoice, error) {
	created, err := s.repo.Create(ctx, payload)
	if err != nil {
		s.log.Error("create invoice failed",
			zap.String("invoice_number", payload.InvoiceNumber),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	s.log.Info("invoice created",
		zap.Int64("id", created.IDValue()),
		zap.String("invoice_number", created.InvoiceNumber),
	)
	return created, nil
}

func (s *invoiceService) Update(ctx context.Context, id int64, payload domain.Payload) (*domain.Invoice, error) {
	updated, err := s.repo.Update(ctx, id, payload)
	if err != nil {
		s.log.Error("update invoice failed", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("update invoice %d: %w", id, err)
	}
	s.log.Info("invoice updated", zap.Int64("id", id))
	return updated, nil
}

func (s *invoiceService) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("delete invoice failed", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("delete invoice %d: %w", id, err)
	}
	s.log.Info("invoice deleted", zap.Int64("id", id))

	if _, err := s.FetchAll(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStaleCollection, err)
	}
	return nil
}

func (s *invoiceService) Save(ctx context.Context, target *int64, payload domain.Payload) error {
	var err error
	if target == nil {
		_, err = s.Create(ctx, payload)
	} else {
		_, err = s.Update(ctx, *target, payload)
	}
	if err != nil {
		return err
	}

	if _, err := s.FetchAll(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStaleCollection, err)
	}
	return nil
}

func (s *invoiceService) Submit(ctx context.Context, f *form.Form) error {
	payload, err := f.BuildPayload()
	if err != nil {
		s.log.Error("invoice payload rejected", zap.Error(err))
		return fmt.Errorf("build payload: %w", err)
	}

	target := f.Target()
	if f.Editing() && target == nil {
		s.log.Error("submit in edit mode without id")
		return ErrMissingID
	}

	err = s.Save(ctx, target, payload)
	if err != nil && !errors.Is(err, ErrStaleCollection) {
		return err
	}

	// the mutation landed, so the draft is consumed even if the refresh failed
	f.Reset()
	return err
}
