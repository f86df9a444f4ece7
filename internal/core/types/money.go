// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits stored for monetary values.
const MoneyPlaces = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Percent is a percentage in the range [0, 100] (18 means 18%).
type Percent = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds half-up to two decimal places.
// decimal.Round rounds halves away from zero, which is half-up for the
// non-negative amounts produced by pricing.
func Round2(m Money) Money {
	return m.Round(MoneyPlaces)
}

// Fraction converts a percentage to a multiplier (18 -> 0.18).
func Fraction(p Percent) decimal.Decimal {
	return p.Div(hundred)
}

// Complement returns 1 - p/100, the factor left after a percentage discount.
func Complement(p Percent) decimal.Decimal {
	return decimal.NewFromInt(1).Sub(Fraction(p))
}

// ValidPercent reports whether p lies within [0, 100].
func ValidPercent(p Percent) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// Qty converts an integer quantity to a decimal for money arithmetic.
func Qty(q int64) decimal.Decimal {
	return decimal.NewFromInt(q)
}
