package httpx

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// Number accepts a JSON number or a numeric string, the way HTML form clients submit values.
type Number struct {
	raw string
	Set bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*n = Number{}
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		text = strings.TrimSpace(s)
	}
	*n = Number{raw: text, Set: true}
	return nil
}

// Float parses the value as a finite float.
func (n Number) Float(field string) (float64, error) {
	v, err := strconv.ParseFloat(n.raw, 64)
	if err != nil || v != v || v > 1e15 || v < -1e15 {
		return 0, fmt.Errorf("%w: %s must be a number", shared.ErrInvalidArgument, field)
	}
	return v, nil
}

// Int parses the value as an integer.
func (n Number) Int(field string) (int, error) {
	v, err := strconv.Atoi(n.raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", shared.ErrInvalidArgument, field)
	}
	return v, nil
}

// Decimal parses the value as an exact decimal.
func (n Number) Decimal(field string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(n.raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a decimal number", shared.ErrInvalidArgument, field)
	}
	return v, nil
}

// NumberOf builds a Number from literal text, mostly for callers outside HTTP decoding.
func NumberOf(text string) Number {
	return Number{raw: text, Set: true}
}
