// Package money holds the amount helpers shared by the ledger. Amounts are
// Mexican pesos carried as decimals with two fractional digits.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept on every stored amount.
const Places = 2

var (
	// ErrAmountMustBePositive is returned when an amount is zero or negative.
	ErrAmountMustBePositive = errors.New("amount must be positive")
	// ErrTooPrecise is returned when an amount has more than two decimals.
	ErrTooPrecise = errors.New("amount has more than two decimal places")
)

// Normalize rounds d half away from zero to Places.
func Normalize(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// ValidateAmount checks a caller supplied transfer amount.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrAmountMustBePositive
	}
	if !d.Equal(d.Truncate(Places)) {
		return ErrTooPrecise
	}
	return nil
}

// FromString parses a decimal amount, e.g. "100.50".
func FromString(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Format renders d with exactly two decimals, the format the gateway expects.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
