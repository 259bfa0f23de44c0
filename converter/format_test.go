package converter

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.NullDecimal
		code   string
		want   string
	}{
		{"missing", decimal.NullDecimal{}, "USD", Placeholder},
		{"iso", decimal.NewNullDecimal(decimal.NewFromInt(1)), "USD", "USD 1.00"},
		{"unknown code", decimal.NewNullDecimal(decimal.RequireFromString("2.5")), "not-a-code", "NOT-A-CODE 2.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.amount, tt.code); got != tt.want {
				t.Fatalf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "1"},
		{"   ", "1"},
		{"0", "1"},
		{"-4", "1"},
		{"abc", "1"},
		{"12.5", "12.5"},
		{" 3 ", "3"},
	}
	for _, tt := range tests {
		if got := ParseAmount(tt.raw); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
