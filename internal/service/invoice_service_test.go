package service

import (
	"context"
	"errors"
	"testing"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// mockInvoiceRepo keeps invoices in memory and records calls
type mockInvoiceRepo struct {
	invoices map[int64]domain.Invoice
	nextID   int64

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	listCalls int
	created   []domain.Payload
	updated   map[int64]domain.Payload
	deleted   []int64
}

func newMockRepo(seed ...domain.Invoice) *mockInvoiceRepo {
	m := &mockInvoiceRepo{
		invoices: make(map[int64]domain.Invoice),
		updated:  make(map[int64]domain.Payload),
		nextID:   1,
	}
	for _, inv := range seed {
		inv.ID = domain.Int64Ptr(m.nextID)
		m.invoices[m.nextID] = inv
		m.nextID++
	}
	return m
}

func (m *mockInvoiceRepo) List(ctx context.Context) ([]domain.Invoice, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Invoice, 0, len(m.invoices))
	for id := int64(1); id < m.nextID; id++ {
		if inv, ok := m.invoices[id]; ok {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *mockInvoiceRepo) Create(ctx context.Context, p domain.Payload) (*domain.Invoice, error) {
	m.created = append(m.created, p)
	if m.createErr != nil {
		return nil, m.createErr
	}
	inv := domain.Invoice{
		ID:            domain.Int64Ptr(m.nextID),
		InvoiceNumber: p.InvoiceNumber,
		CustomerName:  p.CustomerName,
		Date:          p.Date,
		Details:       []domain.LineItem{},
	}
	m.invoices[m.nextID] = inv
	m.nextID++
	return &inv, nil
}

func (m *mockInvoiceRepo) Update(ctx context.Context, id int64, p domain.Payload) (*domain.Invoice, error) {
	m.updated[id] = p
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	inv := m.invoices[id]
	inv.CustomerName = p.CustomerName
	inv.InvoiceNumber = p.InvoiceNumber
	m.invoices[id] = inv
	return nil, nil
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.invoices, id)
	return nil
}

func raj() domain.Invoice {
	return domain.Invoice{
		InvoiceNumber: "INV001",
		CustomerName:  "Raj Mallu",
		Date:          "2024-11-30",
		Details:       []domain.LineItem{},
	}
}

func fillForm(t *testing.T, f *form.Form, inv domain.Invoice) {
	t.Helper()
	require.NoError(t, f.SetField(form.FieldInvoiceNumber, inv.InvoiceNumber))
	require.NoError(t, f.SetField(form.FieldCustomerName, inv.CustomerName))
	require.NoError(t, f.SetField(form.FieldDate, inv.Date))
}

func TestSubmitCreatesWithExactPayload(t *testing.T) {
	repo := newMockRepo()
	svc := NewInvoiceService(repo, zap.NewNop())

	f := form.New()
	fillForm(t, f, raj())

	require.NoError(t, svc.Submit(context.Background(), f))

	require.Len(t, repo.created, 1)
	assert.Equal(t, domain.Payload{
		InvoiceNumber: "INV001",
		CustomerName:  "Raj Mallu",
		Date:          "2024-11-30",
		Details:       []domain.PayloadLine{},
	}, repo.created[0])
	assert.Empty(t, repo.updated)

	// refreshed and reset
	assert.Equal(t, 1, repo.listCalls)
	require.Len(t, svc.Invoices(), 1)
	assert.Equal(t, domain.NewInvoice(), f.Draft())
	assert.False(t, f.Editing())
}

func TestSubmitUpdatesInEditMode(t *testing.T) {
	repo := newMockRepo(raj())
	svc := NewInvoiceService(repo, zap.NewNop())
	_, err := svc.FetchAll(context.Background())
	require.NoError(t, err)

	inv, ok := svc.Find(1)
	require.True(t, ok)

	f := form.New()
	f.BeginEdit(inv)
	require.NoError(t, f.SetField(form.FieldCustomerName, "Updated Name"))
	f.AddLineItem()
	require.NoError(t, f.SetLineItemField(0, form.LineDescription, "Consulting"))
	require.NoError(t, f.SetLineItemField(0, form.LineQuantity, "3"))
	require.NoError(t, f.SetLineItemField(0, form.LineUnitPrice, "2.005"))

	require.NoError(t, svc.Submit(context.Background(), f))

	assert.Empty(t, repo.created)
	require.Contains(t, repo.updated, int64(1))
	p := repo.updated[1]
	assert.Equal(t, "Updated Name", p.CustomerName)
	assert.Equal(t, []domain.PayloadLine{{Description: "Consulting", Quantity: 3, UnitPrice: 2.005}}, p.Details)

	cached, ok := svc.Find(1)
	require.True(t, ok)
	assert.Equal(t, "Updated Name", cached.CustomerName)
	assert.False(t, f.Editing())
}

func TestSubmitFailureLeavesDraft(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	repo := newMockRepo()
	repo.createErr = errors.New("connection refused")
	svc := NewInvoiceService(repo, zap.New(core))

	f := form.New()
	fillForm(t, f, raj())
	f.AddLineItem()
	before := f.Draft()

	err := svc.Submit(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	assert.Equal(t, before, f.Draft())
	assert.False(t, f.Editing())
	assert.Equal(t, 0, repo.listCalls, "no refresh after a failed mutation")
	assert.Equal(t, 1, logs.FilterMessage("create invoice failed").Len())
}

func TestSubmitFailureKeepsEditMode(t *testing.T) {
	repo := newMockRepo(raj())
	repo.updateErr = errors.New("404")
	svc := NewInvoiceService(repo, zap.NewNop())

	inv := raj()
	inv.ID = domain.Int64Ptr(1)
	f := form.New()
	f.BeginEdit(inv)

	require.Error(t, svc.Submit(context.Background(), f))
	assert.True(t, f.Editing())
	assert.Equal(t, inv, f.Draft())
}

func TestSubmitRejectsNonNumericWithoutCalling(t *testing.T) {
	repo := newMockRepo()
	svc := NewInvoiceService(repo, zap.NewNop())

	f := form.New()
	fillForm(t, f, raj())
	f.AddLineItem()
	require.NoError(t, f.SetLineItemField(0, form.LineQuantity, "many"))

	err := svc.Submit(context.Background(), f)
	require.ErrorIs(t, err, domain.ErrNotNumeric)
	assert.Empty(t, repo.created)
	assert.Equal(t, 1, f.LineCount())
}

func TestSubmitEditWithoutID(t *testing.T) {
	repo := newMockRepo()
	svc := NewInvoiceService(repo, zap.NewNop())

	f := form.New()
	f.BeginEdit(raj())

	require.ErrorIs(t, svc.Submit(context.Background(), f), ErrMissingID)
	assert.Empty(t, repo.created)
	assert.Empty(t, repo.updated)
}

func TestSubmitStaleRefreshStillResets(t *testing.T) {
	repo := newMockRepo()
	repo.listErr = errors.New("timeout")
	svc := NewInvoiceService(repo, zap.NewNop())

	f := form.New()
	fillForm(t, f, raj())

	err := svc.Submit(context.Background(), f)
	require.ErrorIs(t, err, ErrStaleCollection)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, domain.NewInvoice(), f.Draft())
}

func TestFetchAllFailureKeepsCache(t *testing.T) {
	repo := newMockRepo(raj())
	svc := NewInvoiceService(repo, zap.NewNop())

	first, err := svc.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	repo.listErr = errors.New("backend down")
	got, err := svc.FetchAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, first, got)
	assert.Equal(t, first, svc.Invoices())
}

func TestFetchAllReplacesCache(t *testing.T) {
	repo := newMockRepo(raj(), raj())
	svc := NewInvoiceService(repo, zap.NewNop())
	_, err := svc.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, svc.Invoices(), 2)

	delete(repo.invoices, 1)
	_, err = svc.FetchAll(context.Background())
	require.NoError(t, err)

	invoices := svc.Invoices()
	require.Len(t, invoices, 1)
	assert.Equal(t, int64(2), invoices[0].IDValue())
}

func TestRemoveRefreshesCache(t *testing.T) {
	repo := newMockRepo(raj(), raj())
	svc := NewInvoiceService(repo, zap.NewNop())
	_, err := svc.FetchAll(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), 1))

	assert.Equal(t, []int64{1}, repo.deleted)
	_, ok := svc.Find(1)
	assert.False(t, ok)

	invoices, err := svc.FetchAll(context.Background())
	require.NoError(t, err)
	for _, inv := range invoices {
		assert.NotEqual(t, int64(1), inv.IDValue())
	}
}

func TestRemoveFailureLeavesCache(t *testing.T) {
	repo := newMockRepo(raj())
	svc := NewInvoiceService(repo, zap.NewNop())
	_, err := svc.FetchAll(context.Background())
	require.NoError(t, err)
	calls := repo.listCalls

	repo.deleteErr = errors.New("500")
	require.Error(t, svc.Remove(context.Background(), 1))

	_, ok := svc.Find(1)
	assert.True(t, ok)
	assert.Equal(t, calls, repo.listCalls)
}

func TestInvoicesReturnsCopies(t *testing.T) {
	inv := raj()
	inv.Details = []domain.LineItem{{Description: "a", Quantity: "1", UnitPrice: "1"}}
	repo := newMockRepo(inv)
	svc := NewInvoiceService(repo, nil)
	_, err := svc.FetchAll(context.Background())
	require.NoError(t, err)

	list := svc.Invoices()
	list[0].Details[0].Description = "mutated"

	again, _ := svc.Find(1)
	assert.Equal(t, "a", again.Details[0].Description)
}
