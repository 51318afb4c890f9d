package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/form"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type invoiceViewMode int

const (
	invoiceViewList          invoiceViewMode = iota
	invoiceViewDetail                        // Viewing one invoice's breakdown
	invoiceViewForm                          // Creating or updating
	invoiceViewConfirmDelete                 // Waiting for y/n
)

// InvoicesModel lists invoices and hosts the create/update form
type InvoicesModel struct {
	app       *app.App
	mode      invoiceViewMode
	invoices  []domain.Invoice
	cursor    int
	loading   bool
	saving    bool
	err       error
	statusMsg string

	// Form state
	form       *form.Form
	inputs     []textinput.Model
	inputFocus int
}

// IsCapturingInput returns true while the form or the delete prompt is open
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.mode == invoiceViewForm || m.mode == invoiceViewConfirmDelete
}

type invoicesDataMsg struct {
	invoices []domain.Invoice
	err      error
}

// invoiceSavedMsg reports the outcome of a create or update
type invoiceSavedMsg struct {
	invoices []domain.Invoice
	updated  bool
	err      error
}

type invoiceDeletedMsg struct {
	invoices []domain.Invoice
	err      error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	return &InvoicesModel{
		app:     a,
		mode:    invoiceViewList,
		loading: true,
		form:    form.New(),
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	svc := m.app.InvoiceService
	return func() tea.Msg {
		invoices, err := svc.FetchAll(context.Background())
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

// saveInvoice snapshots the draft and its target now, so the command never
// touches the form from another goroutine.
func (m *InvoicesModel) saveInvoice() tea.Cmd {
	if missing := m.form.Missing(); len(missing) > 0 {
		m.err = fmt.Errorf("missing %s", joinFields(missing))
		return nil
	}
	draft := m.form.Draft()
	if _, err := draft.ParsedDate(); err != nil {
		m.err = fmt.Errorf("date must be YYYY-MM-DD")
		return nil
	}
	payload, err := m.form.BuildPayload()
	if err != nil {
		m.err = err
		return nil
	}
	target := m.form.Target()
	svc := m.app.InvoiceService

	m.saving = true
	m.err = nil
	return func() tea.Msg {
		err := svc.Save(context.Background(), target, payload)
		return invoiceSavedMsg{invoices: svc.Invoices(), updated: target != nil, err: err}
	}
}

func (m *InvoicesModel) deleteInvoice(id int64) tea.Cmd {
	svc := m.app.InvoiceService
	return func() tea.Msg {
		err := svc.Remove(context.Background(), id)
		return invoiceDeletedMsg{invoices: svc.Invoices(), err: err}
	}
}

func (m *InvoicesModel) setInvoices(invoices []domain.Invoice) {
	m.invoices = invoices
	if m.cursor >= len(m.invoices) {
		m.cursor = len(m.invoices) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *InvoicesModel) current() (domain.Invoice, bool) {
	if m.cursor < 0 || m.cursor >= len(m.invoices) {
		return domain.Invoice{}, false
	}
	return m.invoices[m.cursor], true
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		if m.mode == invoiceViewForm {
			return m, nil
		}
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		m.setInvoices(msg.invoices)
		return m, nil

	case invoiceSavedMsg:
		m.saving = false
		m.setInvoices(msg.invoices)
		if msg.err != nil && !errors.Is(msg.err, service.ErrStaleCollection) {
			// Keep the draft so the user can retry
			m.err = msg.err
			return m, nil
		}
		m.err = msg.err
		m.form.Reset()
		m.mode = invoiceViewList
		if msg.updated {
			m.statusMsg = "Invoice updated"
		} else {
			m.statusMsg = "Invoice created"
		}
		return m, nil

	case invoiceDeletedMsg:
		m.loading = false
		m.setInvoices(msg.invoices)
		m.err = msg.err
		if msg.err == nil || errors.Is(msg.err, service.ErrStaleCollection) {
			m.statusMsg = "Invoice deleted"
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading || m.saving {
			return m, nil
		}

		switch m.mode {
		case invoiceViewList:
			return m.updateList(msg)
		case invoiceViewDetail:
			return m.updateDetail(msg)
		case invoiceViewForm:
			return m.updateForm(msg)
		case invoiceViewConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
	}

	// Forward non-key messages to the focused input (cursor blink, etc.)
	if m.mode == invoiceViewForm && len(m.inputs) > 0 {
		var cmd tea.Cmd
		m.inputs[m.inputFocus], cmd = m.inputs[m.inputFocus].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.New):
		m.form.Reset()
		return m, m.openForm()
	case key.Matches(msg, DefaultKeyMap.Edit), key.Matches(msg, DefaultKeyMap.Select):
		inv, ok := m.current()
		if !ok {
			return m, nil
		}
		m.form.BeginEdit(inv)
		return m, m.openForm()
	case key.Matches(msg, DefaultKeyMap.View):
		if _, ok := m.current(); ok {
			m.mode = invoiceViewDetail
		}
	case key.Matches(msg, DefaultKeyMap.Delete):
		if inv, ok := m.current(); ok && inv.IsPersisted() {
			m.mode = invoiceViewConfirmDelete
		}
	case key.Matches(msg, DefaultKeyMap.Refresh):
		m.loading = true
		return m, m.loadInvoices()
	}
	return m, nil
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
	case key.Matches(msg, DefaultKeyMap.Edit):
		if inv, ok := m.current(); ok {
			m.form.BeginEdit(inv)
			return m, m.openForm()
		}
	}
	return m, nil
}

func (m *InvoicesModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = invoiceViewList
	if msg.String() != "y" && msg.String() != "Y" {
		m.statusMsg = "Delete cancelled"
		return m, nil
	}
	inv, ok := m.current()
	if !ok {
		return m, nil
	}
	m.loading = true
	return m, m.deleteInvoice(inv.IDValue())
}

func (m *InvoicesModel) View() string {
	switch m.mode {
	case invoiceViewDetail:
		return m.viewDetail()
	case invoiceViewForm:
		return m.viewForm()
	default:
		return m.viewList()
	}
}

func (m *InvoicesModel) viewList() string {
	var s string
	s += titleStyle.Render("Invoices") + "\n\n"

	if m.statusMsg != "" {
		s += renderStatus(m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += renderError(m.err) + "\n\n"
	}
	if m.loading {
		s += subtitleStyle.Render("  Loading...") + "\n\n"
	}

	if len(m.invoices) == 0 && !m.loading {
		s += subtitleStyle.Render("  No invoices yet. Press 'n' to create one.")
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-14s  %-24s  %-10s  %5s  %12s",
		"Number", "Customer", "Date", "Lines", "Total",
	)) + "\n"

	symbol := m.app.Config.Display.CurrencySymbol
	for i, inv := range m.invoices {
		b := domain.Breakdown(inv)
		line := fmt.Sprintf("  %-14s  %-24s  %-10s  %5d  %12s",
			truncateStr(inv.InvoiceNumber, 14),
			truncateStr(inv.CustomerName, 24),
			inv.Date,
			len(inv.Details),
			domain.FormatMoney(b.Total, symbol),
		)
		if i == m.cursor {
			s += selectedStyle.Render(line) + "\n"
		} else {
			s += line + "\n"
		}
	}

	if m.mode == invoiceViewConfirmDelete {
		if inv, ok := m.current(); ok {
			s += "\n" + renderWarning(fmt.Sprintf("Delete invoice %s? (y/n)", inv.InvoiceNumber))
			return s
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter/e: edit  v: view  d: delete  r: refresh")
	return s
}

func (m *InvoicesModel) viewDetail() string {
	inv, ok := m.current()
	if !ok {
		return subtitleStyle.Render("  No invoice selected")
	}

	var s string
	s += titleStyle.Render(fmt.Sprintf("Invoice %s", inv.InvoiceNumber)) + "\n\n"
	s += fmt.Sprintf("  Customer: %s\n", inv.CustomerName)
	s += fmt.Sprintf("  Date:     %s\n\n", inv.Date)
	s += renderBreakdown(inv, m.app.Config.Display.CurrencySymbol)
	s += "\n" + helpStyle.Render("  e: edit  esc: back")
	return s
}

// renderBreakdown draws the per-line totals table
func renderBreakdown(inv domain.Invoice, symbol string) string {
	b := domain.Breakdown(inv)
	if len(b.Lines) == 0 {
		return subtitleStyle.Render("  No line items") + "\n"
	}

	var s string
	s += subtitleStyle.Render(fmt.Sprintf("  %-30s  %10s  %12s  %12s",
		"Description", "Qty", "Unit Price", "Line Total")) + "\n"
	for _, line := range b.Lines {
		total := "-"
		if line.Valid {
			total = domain.FormatMoney(line.Total, symbol)
		}
		s += fmt.Sprintf("  %-30s  %10s  %12s  %12s\n",
			truncateStr(line.Item.Description, 30),
			truncateStr(string(line.Item.Quantity), 10),
			truncateStr(string(line.Item.UnitPrice), 12),
			total,
		)
	}
	s += "\n  " + totalStyle.Render(fmt.Sprintf("Total: %s", domain.FormatMoney(b.Total, symbol))) + "\n"
	if b.Invalid > 0 {
		s += renderWarning(fmt.Sprintf("%d line(s) with non-numeric values left out", b.Invalid)) + "\n"
	}
	return s
}
