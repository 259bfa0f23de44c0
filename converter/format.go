package converter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is rendered for an amount that has not arrived.
const Placeholder = "—"

// UnavailableText replaces the converted side of the display after a failure.
const UnavailableText = "conversion unavailable"

// Format renders amount in code using ISO symbols, e.g. "USD 1.00".
func Format(amount decimal.NullDecimal, code string) string {
	return FormatIn(language.Und, amount, code)
}

// FormatIn renders amount in code for tag. language.Und selects ISO symbols.
// Codes unknown to ISO 4217 fall back to "<CODE> <amount>" with two decimals.
func FormatIn(tag language.Tag, amount decimal.NullDecimal, code string) string {
	if !amount.Valid {
		return Placeholder
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return strings.ToUpper(code) + " " + amount.Decimal.StringFixed(2)
	}
	amt := unit.Amount(amount.Decimal.InexactFloat64())
	if tag == language.Und {
		return fmt.Sprint(currency.ISO(amt))
	}
	return message.NewPrinter(tag).Sprint(currency.Symbol(amt))
}

func display(tag language.Tag, amount decimal.Decimal, from string, result Result, to string, unavailable bool) string {
	left := FormatIn(tag, decimal.NewNullDecimal(amount), from)
	if unavailable {
		return left + " = " + UnavailableText
	}
	return left + " = " + FormatIn(tag, result.Converted, to)
}
