package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signature/internal/domain/shared/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateThreeNights(t *testing.T) {
	q := Calculate(decimal.NewFromInt(100000), day(2025, 7, 1), day(2025, 7, 4), decimal.NewFromInt(10))
	if q.Nights != 3 {
		t.Fatalf("nights = %d, want 3", q.Nights)
	}
	if !q.Subtotal.Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("subtotal = %s, want 300000", q.Subtotal)
	}
	if !q.CommissionAmount.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("commission = %s, want 30000", q.CommissionAmount)
	}
}

func TestCalculateIsLinearInNights(t *testing.T) {
	price := decimal.RequireFromString("45750.5")
	rate := decimal.RequireFromString("12.5")
	start := day(2025, 3, 1)
	one := Calculate(price, start, start.AddDate(0, 0, 1), rate)
	for n := 1; n <= 10; n++ {
		q := Calculate(price, start, start.AddDate(0, 0, n), rate)
		want := one.Subtotal.Mul(decimal.NewFromInt(int64(n)))
		if !q.Subtotal.Equal(want) {
			t.Fatalf("nights=%d subtotal = %s, want %s", n, q.Subtotal, want)
		}
		wantCommission := q.Subtotal.Mul(rate).Div(decimal.NewFromInt(100))
		if !q.CommissionAmount.Equal(wantCommission) {
			t.Fatalf("nights=%d commission = %s, want %s", n, q.CommissionAmount, wantCommission)
		}
	}
}

func TestCalculateDoesNotValidate(t *testing.T) {
	q := Calculate(decimal.NewFromInt(1000), day(2025, 7, 4), day(2025, 7, 1), decimal.NewFromInt(10))
	if q.Nights != -3 || !q.Subtotal.Equal(decimal.NewFromInt(-3000)) {
		t.Fatalf("unexpected quote for reversed range: %+v", q)
	}
}

func TestSettleAppliesDiscountAndClamps(t *testing.T) {
	q := Calculate(decimal.NewFromInt(100000), day(2025, 7, 1), day(2025, 7, 4), decimal.NewFromInt(10))
	b := q.Settle(money.FCFA(30000), "")
	if b.Subtotal.Amount != 300000 || b.Total.Amount != 270000 || b.CommissionAmount.Amount != 30000 {
		t.Fatalf("unexpected breakdown: %+v", b)
	}

	small := Calculate(decimal.NewFromInt(5000), day(2025, 7, 1), day(2025, 7, 2), decimal.Zero)
	if got := small.Settle(money.FCFA(8000), "").Total.Amount; got != 0 {
		t.Fatalf("total = %d, want 0", got)
	}
}

func TestSettleRoundsCommission(t *testing.T) {
	q := Calculate(decimal.NewFromInt(12345), day(2025, 7, 1), day(2025, 7, 2), decimal.NewFromInt(10))
	b := q.Settle(money.Money{}, "")
	if b.CommissionAmount.Amount != 1235 {
		t.Fatalf("commission = %d, want 1235 (1234.5 rounded half away from zero)", b.CommissionAmount.Amount)
	}
	if b.Discount.Currency != money.DefaultCurrency {
		t.Fatalf("discount currency = %q", b.Discount.Currency)
	}
}
