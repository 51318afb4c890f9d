package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// truncateStr truncates a string to maxLen terminal cells with ellipsis
func truncateStr(s string, maxLen int) string {
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

func renderError(err error) string {
	return lipgloss.NewStyle().Foreground(errorColor).
		Render(fmt.Sprintf("  Error: %v", err))
}

func renderStatus(msg string) string {
	return lipgloss.NewStyle().Foreground(successColor).Render("  " + msg)
}

func renderWarning(msg string) string {
	return lipgloss.NewStyle().Foreground(warningColor).Render("  " + msg)
}

func joinFields(fields []string) string {
	return strings.Join(fields, ", ")
}
