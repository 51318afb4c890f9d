package tui

import (
	"fmt"

	"github.com/andy/invoicedesk/internal/form"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Inputs are laid out as the header fields followed by one group per line item.
var (
	headerFields = []form.Field{form.FieldInvoiceNumber, form.FieldCustomerName, form.FieldDate}
	headerLabels = []string{"Invoice Number:", "Customer Name:", "Date (YYYY-MM-DD):"}
	lineFields   = []form.LineField{form.LineDescription, form.LineQuantity, form.LineUnitPrice}
)

const lineFieldCount = 3

func (m *InvoicesModel) openForm() tea.Cmd {
	m.mode = invoiceViewForm
	m.err = nil
	m.statusMsg = ""
	return m.buildInputs(0)
}

// buildInputs recreates the text inputs from the draft and focuses index focus
func (m *InvoicesModel) buildInputs(focus int) tea.Cmd {
	draft := m.form.Draft()
	m.inputs = make([]textinput.Model, 0, len(headerFields)+lineFieldCount*len(draft.Details))

	headerValues := []string{draft.InvoiceNumber, draft.CustomerName, draft.Date}
	for i, v := range headerValues {
		ti := textinput.New()
		ti.CharLimit = 100
		ti.Width = 40
		if headerFields[i] == form.FieldDate {
			ti.Placeholder = "2006-01-02"
			ti.CharLimit = 10
		}
		ti.SetValue(v)
		m.inputs = append(m.inputs, ti)
	}

	for _, item := range draft.Details {
		desc := textinput.New()
		desc.Placeholder = "Description"
		desc.CharLimit = 200
		desc.Width = 30
		desc.SetValue(item.Description)

		qty := textinput.New()
		qty.Placeholder = "0"
		qty.CharLimit = 20
		qty.Width = 10
		qty.SetValue(string(item.Quantity))

		price := textinput.New()
		price.Placeholder = "0.00"
		price.CharLimit = 20
		price.Width = 12
		price.SetValue(string(item.UnitPrice))

		m.inputs = append(m.inputs, desc, qty, price)
	}

	if focus >= len(m.inputs) {
		focus = len(m.inputs) - 1
	}
	if focus < 0 {
		focus = 0
	}
	m.inputFocus = focus
	return m.inputs[m.inputFocus].Focus()
}

// lineOf maps an input index to its line item, or -1 for a header field
func lineOf(index int) int {
	if index < len(headerFields) {
		return -1
	}
	return (index - len(headerFields)) / lineFieldCount
}

// syncInput writes the value of input i into the draft
func (m *InvoicesModel) syncInput(i int) error {
	value := m.inputs[i].Value()
	if i < len(headerFields) {
		return m.form.SetField(headerFields[i], value)
	}
	offset := i - len(headerFields)
	return m.form.SetLineItemField(offset/lineFieldCount, lineFields[offset%lineFieldCount], value)
}

func (m *InvoicesModel) moveFocus(delta int) tea.Cmd {
	m.inputs[m.inputFocus].Blur()
	n := len(m.inputs)
	m.inputFocus = (m.inputFocus + delta + n) % n
	return m.inputs[m.inputFocus].Focus()
}

func (m *InvoicesModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.form.Reset()
		m.inputs = nil
		m.err = nil
		m.mode = invoiceViewList
		return m, nil

	case key.Matches(msg, DefaultKeyMap.Submit):
		return m, m.saveInvoice()

	case key.Matches(msg, DefaultKeyMap.AddLine):
		m.form.AddLineItem()
		return m, m.buildInputs(len(m.inputs))

	case key.Matches(msg, DefaultKeyMap.RemoveLine):
		line := lineOf(m.inputFocus)
		if line < 0 {
			m.err = fmt.Errorf("move to a line item to remove it")
			return m, nil
		}
		if err := m.form.RemoveLineItem(line); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		return m, m.buildInputs(m.inputFocus - lineFieldCount)

	case key.Matches(msg, DefaultKeyMap.NextField):
		return m, m.moveFocus(1)

	case key.Matches(msg, DefaultKeyMap.PrevField):
		return m, m.moveFocus(-1)

	case msg.String() == "enter":
		if m.inputFocus == len(m.inputs)-1 {
			return m, m.saveInvoice()
		}
		return m, m.moveFocus(1)
	}

	var cmd tea.Cmd
	m.inputs[m.inputFocus], cmd = m.inputs[m.inputFocus].Update(msg)
	if err := m.syncInput(m.inputFocus); err != nil {
		m.err = err
	}
	return m, cmd
}

func (m *InvoicesModel) viewForm() string {
	var s string
	if m.form.Editing() {
		s += titleStyle.Render("Update Invoice") + "\n\n"
	} else {
		s += titleStyle.Render("Create Invoice") + "\n\n"
	}

	for i, label := range headerLabels {
		s += m.renderInput(i, label) + "\n"
	}

	draft := m.form.Draft()
	s += "\n" + subtitleStyle.Render(fmt.Sprintf("  Line Items (%d)", len(draft.Details))) + "\n"
	if len(draft.Details) == 0 {
		s += subtitleStyle.Render("  none, press ctrl+a to add one") + "\n"
	}
	for line := range draft.Details {
		base := len(headerFields) + line*lineFieldCount
		row := fmt.Sprintf("  %2d. ", line+1)
		for col := 0; col < lineFieldCount; col++ {
			row += m.indicator(base+col) + m.inputs[base+col].View() + " "
		}
		s += row + "\n"
	}

	if len(draft.Details) > 0 {
		s += "\n" + renderBreakdown(draft, m.app.Config.Display.CurrencySymbol)
	}

	if m.saving {
		s += "\n" + subtitleStyle.Render("  Saving...") + "\n"
	}
	if m.err != nil {
		s += "\n" + renderError(m.err) + "\n"
	}

	s += "\n" + helpStyle.Render("  tab/shift+tab: fields  ctrl+a: add line  ctrl+x: remove line  ctrl+s: save  esc: cancel")
	return s
}

func (m *InvoicesModel) indicator(i int) string {
	if i == m.inputFocus {
		return focusStyle.Render(">")
	}
	return " "
}

func (m *InvoicesModel) renderInput(i int, label string) string {
	labelStyle := subtitleStyle
	if i == m.inputFocus {
		labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	}
	return fmt.Sprintf("%s %s\n  %s", m.indicator(i), labelStyle.Render(label), m.inputs[i].View())
}
