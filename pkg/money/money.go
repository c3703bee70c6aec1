// Package money holds the decimal helpers used for prices and totals.
package money

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

var Zero = decimal.Zero

var (
	minInt = decimal.NewFromInt(math.MinInt)
	maxInt = decimal.NewFromInt(math.MaxInt)
)

// Line returns price * quantity.
func Line(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// FromNumber parses a raw JSON value that must be a JSON number literal.
// Quoted numbers, booleans and null are rejected.
func FromNumber(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Decimal{}, fmt.Errorf("missing number")
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return decimal.Decimal{}, fmt.Errorf("not a number: %s", s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a number: %w", err)
	}
	return decimal.NewFromString(n.String())
}

// IntFromNumber parses a raw JSON number that must hold an integral value.
func IntFromNumber(raw json.RawMessage) (int, error) {
	d, err := FromNumber(raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("not an integer: %s", d.String())
	}
	if d.LessThan(minInt) || d.GreaterThan(maxInt) {
		return 0, fmt.Errorf("out of range: %s", d.String())
	}
	return int(d.IntPart()), nil
}

// Fixed renders an amount with two decimal places.
func Fixed(d decimal.Decimal) string { return d.StringFixed(2) }
