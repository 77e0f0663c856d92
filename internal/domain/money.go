package domain

import (
	"github.com/shopspring/decimal"
)

// Money is a fixed point amount with two decimal places, matching the
// NUMERIC(10,2) price columns.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d to cents
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// ParseMoney parses a decimal string such as "12.5"
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d), nil
}

// MustMoney is ParseMoney for literals in tests and seed data
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MarshalJSON always renders two decimal places as a JSON number
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

// UnmarshalJSON accepts both quoted and bare numbers
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}

// Equal compares by value, ignoring exponent differences
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}
