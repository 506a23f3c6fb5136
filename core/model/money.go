package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places kept for monetary values.
const CurrencyPlaces = 2

// RoundCurrency rounds d half away from zero to two decimal places.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// ParseMoney parses a decimal string and rounds it to currency precision.
func ParseMoney(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return RoundCurrency(d), nil
}

// MustMoney is ParseMoney for constants and tests.
func MustMoney(value string) decimal.Decimal {
	d, err := ParseMoney(value)
	if err != nil {
		panic(err)
	}
	return d
}

// MoneyPtr returns a pointer to a copy of d.
func MoneyPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
