package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/gorilla/mux"
)

// fakeBackend is an in-memory stand-in for the invoices REST API
type fakeBackend struct {
	mu       sync.Mutex
	nextID   int64
	invoices map[int64]domain.Invoice
	pageSize int  // 0 serves a bare array
	ackOnPut bool // answer PUT with a message instead of the resource

	requests   []recordedRequest
	failStatus int // when set, every request answers with this status
}

type recordedRequest struct {
	Method    string
	Path      string
	RequestID string
	Body      map[string]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 1, invoices: make(map[int64]domain.Invoice)}
}

func (b *fakeBackend) start(t *testing.T) *httptest.Server {
	t.Helper()

	r := mux.NewRouter()
	r.Use(b.record)
	r.HandleFunc("/api/invoices/", b.list).Methods(http.MethodGet)
	r.HandleFunc("/api/invoices/", b.create).Methods(http.MethodPost)
	r.HandleFunc("/api/invoices/{id:[0-9]+}/", b.update).Methods(http.MethodPut)
	r.HandleFunc("/api/invoices/{id:[0-9]+}/", b.delete).Methods(http.MethodDelete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func (b *fakeBackend) seed(inv domain.Invoice) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	inv.ID = domain.Int64Ptr(id)
	b.invoices[id] = inv
	return id
}

func (b *fakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: r.Header.Get(RequestIDHeader),
		}
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			raw, _ := io.ReadAll(r.Body)
			r.Body.Close()
			_ = json.Unmarshal(raw, &rec.Body)
			r.Body = io.NopCloser(bytes.NewReader(raw))
		}

		b.mu.Lock()
		b.requests = append(b.requests, rec)
		status := b.failStatus
		b.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"error": "boom"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) sorted() []domain.Invoice {
	ids := make([]int64, 0, len(b.invoices))
	for id := range b.invoices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]domain.Invoice, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.invoices[id])
	}
	return out
}

func (b *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	all := b.sorted()
	size := b.pageSize
	b.mu.Unlock()

	if size == 0 {
		writeJSON(w, http.StatusOK, all)
		return
	}

	pageNum := 1
	if p := r.URL.Query().Get("page"); p != "" {
		pageNum, _ = strconv.Atoi(p)
	}
	start := (pageNum - 1) * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}

	var next *string
	if end < len(all) {
		// relative link exercises resolution against the base URL
		link := fmt.Sprintf("/api/invoices/?page=%d", pageNum+1)
		next = &link
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(all),
		"next":    next,
		"results": all[start:end],
	})
}

func (b *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	var p domain.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if p.InvoiceNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"invoice_number": {"This field is required."}})
		return
	}
	id := b.seed(fromPayload(p))

	b.mu.Lock()
	inv := b.invoices[id]
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, inv)
}

func (b *fakeBackend) update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	var p domain.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.invoices[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Invoice not found"})
		return
	}
	inv := fromPayload(p)
	inv.ID = domain.Int64Ptr(id)
	b.invoices[id] = inv

	if b.ackOnPut {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Invoice updated successfully"})
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (b *fakeBackend) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.invoices[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Invoice not found"})
		return
	}
	delete(b.invoices, id)
	w.WriteHeader(http.StatusNoContent)
}

func fromPayload(p domain.Payload) domain.Invoice {
	inv := domain.Invoice{
		InvoiceNumber: p.InvoiceNumber,
		CustomerName:  p.CustomerName,
		Date:          p.Date,
		Details:       make([]domain.LineItem, 0, len(p.Details)),
	}
	for _, d := range p.Details {
		inv.Details = append(inv.Details, domain.LineItem{
			Description: d.Description,
			Quantity:    domain.NumericFromFloat(d.Quantity),
			// two decimal places, like the real serializer
			UnitPrice: domain.Numeric(strconv.FormatFloat(d.UnitPrice, 'f', 2, 64)),
		})
	}
	return inv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
