package shared

import (
	"errors"
	"math"
)

// DefaultCurrency is the operator's billing currency.
const DefaultCurrency = "VND"

// Money value object. Amounts are stored in the smallest currency unit.
type Money struct {
	amount   int64
	currency string
}

// NewMoney creates a Money value object.
func NewMoney(amount int64, currency string) *Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Money{
		amount:   amount,
		currency: currency,
	}
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) *Money {
	return NewMoney(0, currency)
}

// Amount returns the raw amount.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add returns the sum as a new Money value object.
func (m Money) Add(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, errors.New("cannot add money with different currencies")
	}
	if (other.amount > 0 && m.amount > math.MaxInt64-other.amount) ||
		(other.amount < 0 && m.amount < math.MinInt64-other.amount) {
		return nil, errors.New("money addition overflows")
	}

	return &Money{
		amount:   m.amount + other.amount,
		currency: m.currency,
	}, nil
}

// Subtract returns the difference as a new Money value object.
func (m Money) Subtract(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, errors.New("cannot subtract money with different currencies")
	}

	return &Money{
		amount:   m.amount - other.amount,
		currency: m.currency,
	}, nil
}

// Multiply scales the amount by a quantity with overflow detection.
func (m Money) Multiply(quantity int) (*Money, error) {
	if quantity < 0 {
		return nil, errors.New("quantity must not be negative")
	}
	if quantity != 0 && m.amount > math.MaxInt64/int64(quantity) {
		return nil, errors.New("money multiplication overflows")
	}

	return &Money{
		amount:   m.amount * int64(quantity),
		currency: m.currency,
	}, nil
}

// IsGreaterThan reports whether m exceeds other.
func (m Money) IsGreaterThan(other Money) bool {
	return m.amount > other.amount
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// Equals compares both amount and currency.
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}
