package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldAPIURL = iota
	settingsFieldTimeout
	settingsFieldCurrency
	settingsFieldLogLevel
	settingsFieldCount
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

type settingsSavedMsg struct {
	err error
}

// SettingsModel manages the settings screen
type SettingsModel struct {
	app        *app.App
	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	err        error
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:  a,
		mode: settingsModeView,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) initForm() {
	m.fields = make([]textinput.Model, settingsFieldCount)
	cfg := m.app.Config

	m.fields[settingsFieldAPIURL] = textinput.New()
	m.fields[settingsFieldAPIURL].Placeholder = "http://localhost:8000/api/invoices/"
	m.fields[settingsFieldAPIURL].CharLimit = 256
	m.fields[settingsFieldAPIURL].Width = 60
	m.fields[settingsFieldAPIURL].SetValue(cfg.API.BaseURL)

	m.fields[settingsFieldTimeout] = textinput.New()
	m.fields[settingsFieldTimeout].Placeholder = "10"
	m.fields[settingsFieldTimeout].CharLimit = 5
	m.fields[settingsFieldTimeout].Width = 10
	m.fields[settingsFieldTimeout].SetValue(strconv.Itoa(cfg.API.TimeoutSeconds))

	m.fields[settingsFieldCurrency] = textinput.New()
	m.fields[settingsFieldCurrency].Placeholder = "$"
	m.fields[settingsFieldCurrency].CharLimit = 5
	m.fields[settingsFieldCurrency].Width = 10
	m.fields[settingsFieldCurrency].SetValue(cfg.Display.CurrencySymbol)

	m.fields[settingsFieldLogLevel] = textinput.New()
	m.fields[settingsFieldLogLevel].Placeholder = "info"
	m.fields[settingsFieldLogLevel].CharLimit = 10
	m.fields[settingsFieldLogLevel].Width = 10
	m.fields[settingsFieldLogLevel].SetValue(cfg.Log.Level)

	m.fieldFocus = settingsFieldAPIURL
	m.fields[settingsFieldAPIURL].Focus()
}

// saveSettings applies the form on the update goroutine, since reconnecting
// swaps the service other screens read. Previous values are restored if
// reconnecting or writing fails.
func (m *SettingsModel) saveSettings() tea.Cmd {
	msg := m.applySettings()
	return func() tea.Msg { return msg }
}

func (m *SettingsModel) applySettings() settingsSavedMsg {
	baseURL := strings.TrimSpace(m.fields[settingsFieldAPIURL].Value())
	timeoutStr := strings.TrimSpace(m.fields[settingsFieldTimeout].Value())
	currency := strings.TrimSpace(m.fields[settingsFieldCurrency].Value())
	level := strings.ToLower(strings.TrimSpace(m.fields[settingsFieldLogLevel].Value()))
	a := m.app

	if baseURL == "" {
		return settingsSavedMsg{err: fmt.Errorf("API URL is required")}
	}
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil || timeout <= 0 {
		return settingsSavedMsg{err: fmt.Errorf("timeout must be a positive number of seconds")}
	}
	if currency == "" {
		return settingsSavedMsg{err: fmt.Errorf("currency symbol is required")}
	}
	if !logLevels[level] {
		return settingsSavedMsg{err: fmt.Errorf("log level must be one of debug, info, warn, error")}
	}

	previous := *a.Config
	a.Config.API.BaseURL = baseURL
	a.Config.API.TimeoutSeconds = timeout
	a.Config.Display.CurrencySymbol = currency
	a.Config.Log.Level = level

	if err := a.SaveConfig(); err != nil {
		*a.Config = previous
		if rerr := a.SaveConfig(); rerr != nil {
			a.Logger.Warn("restoring previous settings failed")
		}
		return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
	}
	return settingsSavedMsg{}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch {
		case msg.String() == "enter":
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.initForm()
			return m, m.fields[m.fieldFocus].Focus()
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.statusMsg = "Settings saved"
		// back to the list so it reloads from the new backend
		return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenInvoices} }

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = settingsModeView
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + settingsFieldCount) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == settingsFieldCount-1 {
				return m, m.saveSettings()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveSettings()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.mode == settingsModeEdit {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Settings") + "\n\n"

	if m.statusMsg != "" {
		s += renderStatus(m.statusMsg) + "\n\n"
	}

	cfg := m.app.Config

	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)

	s += subtitleStyle.Render("  Backend") + "\n\n"
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("API URL:"), valueStyle.Render(cfg.API.BaseURL))
	s += fmt.Sprintf("  %s %s\n\n", labelStyle.Render("Timeout:"), valueStyle.Render(fmt.Sprintf("%ds", cfg.API.TimeoutSeconds)))

	s += subtitleStyle.Render("  Display & Logging") + "\n\n"
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Currency Symbol:"), valueStyle.Render(cfg.Display.CurrencySymbol))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Log Level:"), valueStyle.Render(cfg.Log.Level))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Config File:"), subtitleStyle.Render(m.app.ConfigPath))

	s += "\n" + helpStyle.Render("  enter: edit settings")

	return s
}

func (m *SettingsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Edit Settings") + "\n\n"

	labels := []string{"API URL:", "Timeout (seconds):", "Currency Symbol:", "Log Level (next start):"}
	for i, label := range labels {
		indicator := "  "
		if i == m.fieldFocus {
			indicator = "> "
		}
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += renderError(m.err) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")

	return s
}
