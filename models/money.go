package models

import (
	"bytes"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxMoney is the largest value a NUMERIC(10,2) column holds.
var MaxMoney = MustMoney("99999999.99")

var ErrInvalidMoney = errors.New("invalid monetary value")

// Money is a decimal amount with exactly two fractional digits.
type Money struct {
	d decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{d: d.Round(2)} }

func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidMoney
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidMoney
	}
	// Negative input is kept unrounded so -0.004 still fails a >= 0 check.
	if d.IsNegative() {
		return Money{d: d}, nil
	}
	return NewMoney(d), nil
}

func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.d }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }
func (m Money) Equal(o Money) bool       { return m.d.Equal(o.d) }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) Add(o Money) Money        { return NewMoney(m.d.Add(o.d)) }

// String formats the amount with two fractional digits, e.g. "2500.00".
func (m Money) String() string { return m.d.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		b = b[1 : len(b)-1]
	}
	v, err := ParseMoney(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
