package promo

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func activeCode(kind DiscountType, value int64) *PromoCode {
	return &PromoCode{ID: "p1", Code: "SUMMER", DiscountType: kind, DiscountValue: decimal.NewFromInt(value), Active: true}
}

func TestValidateRules(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		code   *PromoCode
		base   int64
		reason Reason
		amount int64
	}{
		{name: "empty", input: "   ", code: activeCode(DiscountPercent, 10), base: 1000, reason: ReasonEmpty},
		{name: "not found", input: "nope", code: nil, base: 1000, reason: ReasonInvalid},
		{name: "inactive", input: "summer", code: func() *PromoCode { c := activeCode(DiscountPercent, 10); c.Active = false; return c }(), base: 1000, reason: ReasonInactive},
		{name: "expired", input: "summer", code: func() *PromoCode { c := activeCode(DiscountPercent, 10); c.ExpiresAt = timePtr(now.Add(-time.Minute)); return c }(), base: 1000, reason: ReasonExpired},
		{name: "expires later", input: "summer", code: func() *PromoCode { c := activeCode(DiscountPercent, 10); c.ExpiresAt = timePtr(now.Add(time.Minute)); return c }(), base: 1000, amount: 100},
		{name: "limit reached", input: "summer", code: func() *PromoCode { c := activeCode(DiscountPercent, 10); c.MaxUses = intPtr(5); c.UsedCount = 5; return c }(), base: 1000, reason: ReasonLimitReached},
		{name: "one use left", input: "summer", code: func() *PromoCode { c := activeCode(DiscountPercent, 10); c.MaxUses = intPtr(5); c.UsedCount = 4; return c }(), base: 1000, amount: 100},
		{name: "percent", input: " summer ", code: activeCode(DiscountPercent, 10), base: 100000, amount: 10000},
		{name: "percent rounds", input: "summer", code: activeCode(DiscountPercent, 15), base: 333, amount: 50},
		{name: "fixed capped at base", input: "summer", code: activeCode(DiscountFixed, 8000), base: 5000, amount: 5000},
		{name: "fixed below base", input: "summer", code: activeCode(DiscountFixed, 8000), base: 50000, amount: 8000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Validate(tc.input, tc.code, decimal.NewFromInt(tc.base), now)
			if tc.reason != ReasonNone {
				if v.Valid || v.Reason != tc.reason {
					t.Fatalf("got valid=%v reason=%q, want reason %q", v.Valid, v.Reason, tc.reason)
				}
				if v.Reason.Message() == "" {
					t.Fatalf("missing message for %q", v.Reason)
				}
				return
			}
			if !v.Valid {
				t.Fatalf("expected valid, got reason %q", v.Reason)
			}
			if v.Code != "SUMMER" {
				t.Fatalf("code = %q, want SUMMER", v.Code)
			}
			if v.DiscountAmount.Amount != tc.amount {
				t.Fatalf("discount = %d, want %d", v.DiscountAmount.Amount, tc.amount)
			}
		})
	}
}

func TestValidateHasNoSideEffects(t *testing.T) {
	code := activeCode(DiscountFixed, 500)
	code.MaxUses = intPtr(2)
	first := Validate("summer", code, decimal.NewFromInt(1000), now)
	second := Validate("summer", code, decimal.NewFromInt(1000), now)
	if first.DiscountAmount != second.DiscountAmount || first.Valid != second.Valid {
		t.Fatalf("validation must be repeatable: %+v vs %+v", first, second)
	}
	if code.UsedCount != 0 {
		t.Fatalf("validation changed used count to %d", code.UsedCount)
	}
}

func TestApplyRedemption(t *testing.T) {
	code := activeCode(DiscountPercent, 10)
	code.MaxUses = intPtr(1)
	if err := code.ApplyRedemption("res-1"); err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	if err := code.ApplyRedemption("res-1"); !errors.Is(err, ErrAlreadyRedeemed) {
		t.Fatalf("expected ErrAlreadyRedeemed, got %v", err)
	}
	if err := code.ApplyRedemption("res-2"); !errors.Is(err, ErrUsageLimitReached) {
		t.Fatalf("expected ErrUsageLimitReached, got %v", err)
	}
	if code.UsedCount != 1 {
		t.Fatalf("used count = %d, want 1", code.UsedCount)
	}
}

func TestNewNormalizesAndValidates(t *testing.T) {
	code, err := New(CreateParams{ID: "p", Code: " noel25 ", DiscountType: DiscountPercent, DiscountValue: decimal.NewFromInt(25), MaxUses: intPtr(0), CreatedAt: now})
	if err != nil {
		t.Fatal(err)
	}
	if code.Code != "NOEL25" || !code.Active || code.UsedCount != 0 || code.MaxUses != nil {
		t.Fatalf("unexpected code: %+v", code)
	}
	if _, err := New(CreateParams{Code: "  "}); !errors.Is(err, ErrEmptyCode) {
		t.Fatalf("expected ErrEmptyCode, got %v", err)
	}
	if _, err := New(CreateParams{Code: "X", DiscountType: DiscountPercent, DiscountValue: decimal.NewFromInt(150)}); !errors.Is(err, ErrInvalidDiscount) {
		t.Fatalf("expected ErrInvalidDiscount, got %v", err)
	}
}
