package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotNumeric is returned when a numeric input holds text that is not a number
var ErrNotNumeric = errors.New("value is not a number")

// Numeric is the raw text of a numeric input.
// It stays a string while the user edits and is only coerced on submit.
type Numeric string

// NumericFromFloat formats f with the shortest representation that round-trips
func NumericFromFloat(f float64) Numeric {
	return Numeric(strconv.FormatFloat(f, 'f', -1, 64))
}

// IsBlank reports whether the input is empty or whitespace
func (n Numeric) IsBlank() bool {
	return strings.TrimSpace(string(n)) == ""
}

// Decimal coerces the input. Blank input is zero.
func (n Numeric) Decimal() (decimal.Decimal, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q: %w", s, ErrNotNumeric)
	}
	return d, nil
}

// Float coerces the input to a float64 for the wire payload
func (n Numeric) Float() (float64, error) {
	d, err := n.Decimal()
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q out of range: %w", strings.TrimSpace(string(n)), ErrNotNumeric)
	}
	return f, nil
}

// UnmarshalJSON accepts a JSON number, a JSON string or null
func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeric(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("numeric field: %w", err)
	}
	*n = Numeric(num.String())
	return nil
}

// MarshalJSON writes a number when the text parses, and a string otherwise.
// Text that is already a JSON number is kept verbatim so "50.00" stays "50.00".
func (n Numeric) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return json.Marshal(string(n))
	}
	if isJSONNumber(s) {
		return []byte(s), nil
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return []byte(d.String()), nil
	}
	return json.Marshal(string(n))
}

func isJSONNumber(s string) bool {
	if s[0] != '-' && (s[0] < '0' || s[0] > '9') {
		return false
	}
	var num json.Number
	return json.Unmarshal([]byte(s), &num) == nil
}
