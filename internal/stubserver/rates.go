package stubserver

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownCurrency is returned by [Rates.Convert] for a code missing from the table.
var ErrUnknownCurrency = errors.New("unknown currency")

// Rates maps an upper-case ISO code to units per one US dollar.
type Rates map[string]decimal.Decimal

// DefaultRates is a fixed demo table.
func DefaultRates() Rates {
	return Rates{
		"USD": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("0.92"),
		"GBP": decimal.RequireFromString("0.79"),
		"JPY": decimal.RequireFromString("151.50"),
		"CHF": decimal.RequireFromString("0.90"),
		"CAD": decimal.RequireFromString("1.36"),
		"INR": decimal.RequireFromString("83.20"),
	}
}

// Convert turns amount of from into to, rounded to four places.
func (r Rates) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromRate, ok := r[strings.ToUpper(from)]
	if !ok || fromRate.IsZero() {
		return decimal.Decimal{}, ErrUnknownCurrency
	}
	toRate, ok := r[strings.ToUpper(to)]
	if !ok {
		return decimal.Decimal{}, ErrUnknownCurrency
	}
	return amount.Mul(toRate).DivRound(fromRate, 4), nil
}
