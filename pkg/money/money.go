// Package money provides the Money value object used for every balance and
// transaction amount in the system.
package money

import (
	"errors"
	"fmt"

	"github.com/revobank/revobank/pkg/currency"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCurrencyCode is returned when a currency code is malformed.
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
	// ErrCurrencyMismatch is returned when two amounts in different
	// currencies are combined or compared.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrExcessPrecision is returned when an amount carries more decimal
	// places than the currency allows.
	ErrExcessPrecision = errors.New("amount has too many decimal places")
	// ErrAmountOutOfRange is returned when an amount does not fit in the
	// smallest-unit representation.
	ErrAmountOutOfRange = errors.New("amount exceeds maximum representable value")
)

// Amount is a monetary amount in the smallest currency unit (e.g. cents).
type Amount = int64

// Money represents a monetary value in a specific currency.
//
// Invariants:
//   - The amount is always stored in the smallest currency unit.
//   - The currency code is a valid, supported ISO 4217 code.
//   - Arithmetic and comparison require matching currencies.
type Money struct {
	amount   Amount
	currency currency.Code
}

// New creates a Money value from a main-unit amount (e.g. 10.50 for ten and
// a half units). Amounts with more decimal places than the currency allows
// are rejected rather than rounded.
func New(amount float64, code currency.Code) (Money, error) {
	return Parse(decimal.NewFromFloat(amount), code)
}

// Parse creates a Money value from an exact decimal main-unit amount.
func Parse(amount decimal.Decimal, code currency.Code) (Money, error) {
	if code == "" {
		code = currency.DefaultCurrency
	}
	if !currency.IsValidFormat(string(code)) {
		return Money{}, ErrInvalidCurrencyCode
	}
	meta, err := currency.Get(code)
	if err != nil {
		return Money{}, err
	}
	minor := amount.Shift(int32(meta.Decimals))
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf("%w: %s allows %d", ErrExcessPrecision, code, meta.Decimals)
	}
	if !minor.BigInt().IsInt64() {
		return Money{}, ErrAmountOutOfRange
	}
	return Money{amount: minor.IntPart(), currency: code}, nil
}

// FromSmallestUnit creates a Money value directly from smallest-unit data,
// e.g. when hydrating from the data store.
func FromSmallestUnit(amount int64, code currency.Code) (Money, error) {
	if code == "" {
		code = currency.DefaultCurrency
	}
	if !currency.IsValidFormat(string(code)) {
		return Money{}, ErrInvalidCurrencyCode
	}
	return Money{amount: amount, currency: code}, nil
}

// Amount returns the amount in the smallest currency unit.
func (m Money) Amount() Amount { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() currency.Code { return m.currency }

// Decimal returns the amount in main currency units as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	meta, err := currency.Get(m.currency)
	if err != nil {
		meta.Decimals = currency.DefaultDecimals
	}
	return decimal.New(m.amount, 0).Shift(int32(-meta.Decimals))
}

// Float returns the amount in main currency units. Intended for API
// responses only; arithmetic stays on the smallest-unit representation.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// Add returns the sum of two amounts in the same currency.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Subtract returns the difference of two amounts in the same currency.
func (m Money) Subtract(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// SameCurrency reports whether both values share a currency.
func (m Money) SameCurrency(other Money) bool { return m.currency == other.currency }

// Equals reports whether both values share a currency and amount.
func (m Money) Equals(other Money) bool {
	return m.SameCurrency(other) && m.amount == other.amount
}

// LessThan reports whether m < other. Currencies must match.
func (m Money) LessThan(other Money) (bool, error) {
	if !m.SameCurrency(other) {
		return false, ErrCurrencyMismatch
	}
	return m.amount < other.amount, nil
}

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// IsNegative reports whether the amount is less than zero.
func (m Money) IsNegative() bool { return m.amount < 0 }

// String renders the amount with the currency's decimal places and code.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().String(), m.currency)
}
