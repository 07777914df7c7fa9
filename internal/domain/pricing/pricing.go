package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"signature/internal/domain/shared/daterange"
	"signature/internal/domain/shared/money"
)

var hundred = decimal.NewFromInt(100)

// Quote is the exact price of a stay before any promo is applied.
type Quote struct {
	Nights           int
	PricePerNight    decimal.Decimal
	CommissionRate   decimal.Decimal
	Subtotal         decimal.Decimal
	CommissionAmount decimal.Decimal
}

// Calculate prices a stay. Inputs are not validated; a non-positive night count
// yields a non-positive subtotal and the caller rejects it.
func Calculate(pricePerNight decimal.Decimal, checkIn, checkOut time.Time, commissionRate decimal.Decimal) Quote {
	nights := daterange.CountNights(checkIn, checkOut)
	subtotal := pricePerNight.Mul(decimal.NewFromInt(int64(nights)))
	return Quote{
		Nights:           nights,
		PricePerNight:    pricePerNight,
		CommissionRate:   commissionRate,
		Subtotal:         subtotal,
		CommissionAmount: subtotal.Mul(commissionRate).Div(hundred),
	}
}

// Breakdown is the persisted, rounded form of a quote with the discount applied.
type Breakdown struct {
	Nights           int
	PricePerNight    money.Money
	CommissionRate   decimal.Decimal
	Subtotal         money.Money
	CommissionAmount money.Money
	Discount         money.Money
	Total            money.Money
}

// Settle rounds the quote to whole currency units and applies a discount.
// The total never drops below zero.
func (q Quote) Settle(discount money.Money, currency string) Breakdown {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	subtotal := money.FromDecimal(q.Subtotal, currency)
	if discount.Currency == "" {
		discount.Currency = subtotal.Currency
	}
	total := money.Money{Amount: subtotal.Amount - discount.Amount, Currency: subtotal.Currency}.ClampZero()
	return Breakdown{
		Nights:           q.Nights,
		PricePerNight:    money.FromDecimal(q.PricePerNight, currency),
		CommissionRate:   q.CommissionRate,
		Subtotal:         subtotal,
		CommissionAmount: money.FromDecimal(q.CommissionAmount, currency),
		Discount:         discount,
		Total:            total,
	}
}
