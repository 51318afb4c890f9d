package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/form"
	"github.com/mattn/go-runewidth"
)

// truncate shortens s to maxLen terminal cells without splitting a rune
func truncate(s string, maxLen int) string {
	return runewidth.Truncate(s, maxLen, "...")
}

// parseDate accepts YYYY-MM-DD, "today" or "yesterday" and returns YYYY-MM-DD
func parseDate(s string) (string, error) {
	switch s {
	case "today":
		return time.Now().Format(domain.DateLayout), nil
	case "yesterday":
		return time.Now().AddDate(0, 0, -1).Format(domain.DateLayout), nil
	default:
		t, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			return "", fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
		}
		return t.Format(domain.DateLayout), nil
	}
}

// parseItem splits "description|quantity|unit price"
func parseItem(raw string) (description, quantity, unitPrice string, err error) {
	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("invalid item %q: expected \"description|quantity|unit price\"", raw)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]), nil
}

// appendItems adds one line item per --item value
func appendItems(f *form.Form, items []string) error {
	for _, raw := range items {
		desc, qty, price, err := parseItem(raw)
		if err != nil {
			return err
		}
		f.AddLineItem()
		idx := f.LineCount() - 1
		if err := f.SetLineItemField(idx, form.LineDescription, desc); err != nil {
			return err
		}
		if err := f.SetLineItemField(idx, form.LineQuantity, qty); err != nil {
			return err
		}
		if err := f.SetLineItemField(idx, form.LineUnitPrice, price); err != nil {
			return err
		}
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid invoice ID: %s", s)
	}
	return id, nil
}

func confirmPrompt(in io.Reader, out io.Writer, message string) bool {
	fmt.Fprintf(out, "%s [y/N] ", message)
	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
