package dto

import (
	"time"

	domainpromo "signature/internal/domain/promo"
)

type PromoValidation struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code,omitempty"`
	DiscountType   string `json:"discount_type,omitempty"`
	DiscountValue  string `json:"discount_value,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
	Reason         string `json:"reason,omitempty"`
	Error          string `json:"error,omitempty"`
}

type PromoCode struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue string     `json:"discount_value"`
	Active        bool       `json:"active"`
	ExpiresAt     *time.Time `json:"expires_at"`
	MaxUses       *int       `json:"max_uses"`
	UsedCount     int        `json:"used_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

type PromoCodeCollection struct {
	Items []PromoCode `json:"items"`
}

func MapPromoValidation(v domainpromo.Validation) PromoValidation {
	if !v.Valid {
		return PromoValidation{Valid: false, Code: v.Code, Reason: string(v.Reason), Error: v.Reason.Message()}
	}
	return PromoValidation{
		Valid:          true,
		Code:           v.Code,
		DiscountType:   string(v.DiscountType),
		DiscountValue:  v.DiscountValue.String(),
		DiscountAmount: v.DiscountAmount.Amount,
	}
}

func MapPromoCode(p *domainpromo.PromoCode) PromoCode {
	return PromoCode{
		ID:            string(p.ID),
		Code:          p.Code,
		DiscountType:  string(p.DiscountType),
		DiscountValue: p.DiscountValue.String(),
		Active:        p.Active,
		ExpiresAt:     p.ExpiresAt,
		MaxUses:       p.MaxUses,
		UsedCount:     p.UsedCount,
		CreatedAt:     p.CreatedAt,
	}
}

func MapPromoCodes(items []*domainpromo.PromoCode) PromoCodeCollection {
	out := PromoCodeCollection{Items: make([]PromoCode, 0, len(items))}
	for _, p := range items {
		out.Items = append(out.Items, MapPromoCode(p))
	}
	return out
}
