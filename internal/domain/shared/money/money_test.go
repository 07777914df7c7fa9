package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromDecimalRoundsHalfAwayFromZero(t *testing.T) {
	cases := map[string]int64{
		"1234.5":  1235,
		"1234.49": 1234,
		"0.5":     1,
		"30000":   30000,
	}
	for in, want := range cases {
		got := FromDecimal(decimal.RequireFromString(in), "")
		if got.Amount != want {
			t.Fatalf("FromDecimal(%s) = %d, want %d", in, got.Amount, want)
		}
		if got.Currency != DefaultCurrency {
			t.Fatalf("currency = %q, want %q", got.Currency, DefaultCurrency)
		}
	}
}

func TestSubAndClamp(t *testing.T) {
	total, err := FCFA(5000).Sub(FCFA(8000))
	if err != nil {
		t.Fatal(err)
	}
	if total.ClampZero().Amount != 0 {
		t.Fatalf("expected clamped zero, got %d", total.ClampZero().Amount)
	}
	if _, err := FCFA(1).Add(Must(1, "eur")); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected currency mismatch, got %v", err)
	}
	if _, err := New(1, "EURO"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected invalid currency, got %v", err)
	}
}
