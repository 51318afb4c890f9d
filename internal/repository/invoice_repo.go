package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/andy/invoicedesk/internal/domain"
)

// maxPages bounds pagination so a looping next link cannot spin forever
const maxPages = 1000

type invoiceRepo struct {
	client *Client
}

// NewInvoiceRepo creates an InvoiceRepository backed by the REST API
func NewInvoiceRepo(client *Client) InvoiceRepository {
	return &invoiceRepo{client: client}
}

// page is one list response: a bare array or a paginated envelope
type page struct {
	invoices []domain.Invoice
	next     string
}

func (p *page) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &p.invoices)
	}

	var envelope struct {
		Results []domain.Invoice `json:"results"`
		Next    *string          `json:"next"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if envelope.Results == nil {
		return errors.New("list response has neither an array nor a results field")
	}
	p.invoices = envelope.Results
	if envelope.Next != nil {
		p.next = *envelope.Next
	}
	return nil
}

func (r *invoiceRepo) List(ctx context.Context) ([]domain.Invoice, error) {
	invoices := make([]domain.Invoice, 0)
	link := r.client.BaseURL()
	seen := make(map[string]bool)

	for n := 0; link != ""; n++ {
		if n >= maxPages || seen[link] {
			return nil, fmt.Errorf("pagination did not terminate after %d pages", n)
		}
		seen[link] = true

		var p page
		if _, err := r.client.Do(ctx, http.MethodGet, link, nil, &p); err != nil {
			return nil, err
		}
		invoices = append(invoices, p.invoices...)

		if p.next == "" {
			break
		}
		next, err := r.client.resolve(p.next)
		if err != nil {
			return nil, err
		}
		link = next
	}

	for i := range invoices {
		if invoices[i].Details == nil {
			invoices[i].Details = make([]domain.LineItem, 0)
		}
	}
	return invoices, nil
}

func (r *invoiceRepo) Create(ctx context.Context, payload domain.Payload) (*domain.Invoice, error) {
	var created domain.Invoice
	if _, err := r.client.Do(ctx, http.MethodPost, r.client.BaseURL(), payload, &created); err != nil {
		return nil, err
	}
	if created.Details == nil {
		created.Details = make([]domain.LineItem, 0)
	}
	return &created, nil
}

func (r *invoiceRepo) Update(ctx context.Context, id int64, payload domain.Payload) (*domain.Invoice, error) {
	data, err := r.client.Do(ctx, http.MethodPut, r.client.ItemURL(id), payload, nil)
	if err != nil {
		return nil, err
	}

	// Some backends answer with {"message": "..."} instead of the resource
	var updated domain.Invoice
	if len(bytes.TrimSpace(data)) == 0 || json.Unmarshal(data, &updated) != nil || updated.ID == nil {
		return nil, nil
	}
	if updated.Details == nil {
		updated.Details = make([]domain.LineItem, 0)
	}
	return &updated, nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.client.Do(ctx, http.MethodDelete, r.client.ItemURL(id), nil, nil)
	return err
}
