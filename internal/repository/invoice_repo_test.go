package repository

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, b *fakeBackend) (InvoiceRepository, *Client) {
	t.Helper()
	srv := b.start(t)
	client, err := NewClient(srv.URL+"/api/invoices",
		WithTimeout(2*time.Second),
		WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewInvoiceRepo(client), client
}

func sampleInvoice() domain.Invoice {
	return domain.Invoice{
		InvoiceNumber: "INV001",
		CustomerName:  "John Doe",
		Date:          "2024-11-12",
		Details: []domain.LineItem{
			{Description: "Product A", Quantity: "2", UnitPrice: "50.00"},
		},
	}
}

func TestNewClientNormalizesBaseURL(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:8000/api/invoices")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000/api/invoices/", c.BaseURL())
	assert.Equal(t, "http://127.0.0.1:8000/api/invoices/12/", c.ItemURL(12))

	_, err = NewClient("ftp://example.com/api/")
	assert.Error(t, err)
	_, err = NewClient("://bad")
	assert.Error(t, err)
}

func TestListBareArray(t *testing.T) {
	b := newFakeBackend()
	b.seed(sampleInvoice())
	second := sampleInvoice()
	second.InvoiceNumber = "INV002"
	second.Details = nil
	b.seed(second)

	repo, _ := newTestRepo(t, b)
	invoices, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, invoices, 2)
	assert.Equal(t, int64(1), invoices[0].IDValue())
	assert.Equal(t, "INV001", invoices[0].InvoiceNumber)
	assert.Equal(t, domain.Numeric("50.00"), invoices[0].Details[0].UnitPrice)
	assert.NotNil(t, invoices[1].Details, "missing details decode as an empty list")
}

func TestListFollowsPaginatedEnvelope(t *testing.T) {
	b := newFakeBackend()
	b.pageSize = 2
	for i := 0; i < 5; i++ {
		b.seed(sampleInvoice())
	}

	repo, _ := newTestRepo(t, b)
	invoices, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, invoices, 5)
	for i, inv := range invoices {
		assert.Equal(t, int64(i+1), inv.IDValue())
	}
	assert.Len(t, b.requests, 3)
}

func TestListEmptyEnvelope(t *testing.T) {
	b := newFakeBackend()
	b.pageSize = 10

	repo, _ := newTestRepo(t, b)
	invoices, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, invoices)
	assert.NotNil(t, invoices)
}

func TestPageRejectsUnknownShape(t *testing.T) {
	var p page
	assert.Error(t, p.UnmarshalJSON([]byte(`{"count":0}`)))
	assert.Error(t, p.UnmarshalJSON([]byte(`"nope"`)))
}

func TestCreatePostsPayload(t *testing.T) {
	b := newFakeBackend()
	repo, _ := newTestRepo(t, b)

	payload := domain.Payload{
		InvoiceNumber: "INV002",
		CustomerName:  "Jane Doe",
		Date:          "2024-11-20",
		Details: []domain.PayloadLine{
			{Description: "Product X", Quantity: 1, UnitPrice: 100},
			{Description: "Product Y", Quantity: 2, UnitPrice: 50},
		},
	}

	created, err := repo.Create(context.Background(), payload)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(1), created.IDValue())
	assert.Equal(t, "INV002", created.InvoiceNumber)
	require.Len(t, created.Details, 2)

	require.Len(t, b.requests, 1)
	req := b.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/invoices/", req.Path)
	_, err = uuid.Parse(req.RequestID)
	assert.NoError(t, err, "request id should be a uuid")

	details := req.Body["details"].([]any)
	first := details[0].(map[string]any)
	assert.Equal(t, float64(1), first["quantity"])
	assert.Equal(t, float64(100), first["unit_price"])
}

func TestCreateValidationError(t *testing.T) {
	b := newFakeBackend()
	repo, _ := newTestRepo(t, b)

	_, err := repo.Create(context.Background(), domain.Payload{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "invoice_number")
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestUpdateReturnsResource(t *testing.T) {
	b := newFakeBackend()
	id := b.seed(sampleInvoice())
	repo, _ := newTestRepo(t, b)

	updated, err := repo.Update(context.Background(), id, domain.Payload{
		InvoiceNumber: "INV001",
		CustomerName:  "Updated Name",
		Date:          "2024-11-12",
		Details:       []domain.PayloadLine{},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Updated Name", updated.CustomerName)

	last := b.requests[len(b.requests)-1]
	assert.Equal(t, http.MethodPut, last.Method)
	assert.Equal(t, "/api/invoices/1/", last.Path)
}

func TestUpdateToleratesAck(t *testing.T) {
	b := newFakeBackend()
	b.ackOnPut = true
	id := b.seed(sampleInvoice())
	repo, _ := newTestRepo(t, b)

	updated, err := repo.Update(context.Background(), id, domain.Payload{InvoiceNumber: "INV001", Details: []domain.PayloadLine{}})
	require.NoError(t, err)
	assert.Nil(t, updated)
	assert.Equal(t, "INV001", b.invoices[id].InvoiceNumber)
}

func TestUpdateMissingInvoice(t *testing.T) {
	b := newFakeBackend()
	repo, _ := newTestRepo(t, b)

	_, err := repo.Update(context.Background(), 42, domain.Payload{Details: []domain.PayloadLine{}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDelete(t *testing.T) {
	b := newFakeBackend()
	id := b.seed(sampleInvoice())
	repo, _ := newTestRepo(t, b)

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.Empty(t, b.invoices)

	last := b.requests[len(b.requests)-1]
	assert.Equal(t, http.MethodDelete, last.Method)
	assert.Equal(t, "/api/invoices/1/", last.Path)

	err := repo.Delete(context.Background(), id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestServerErrorSurfacesAsAPIError(t *testing.T) {
	b := newFakeBackend()
	b.failStatus = http.StatusInternalServerError
	repo, _ := newTestRepo(t, b)

	_, err := repo.List(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, http.MethodGet, apiErr.Method)
}

func TestUnreachableBackend(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1/api/invoices/", WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = NewInvoiceRepo(client).List(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
