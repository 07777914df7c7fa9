package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"signature/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("promo: code not found")
	ErrDuplicateCode     = errors.New("promo: code already exists")
	ErrEmptyCode         = errors.New("promo: code required")
	ErrInvalidDiscount   = errors.New("promo: invalid discount")
	ErrUsageLimitReached = errors.New("promo: usage limit reached")
	ErrAlreadyRedeemed   = errors.New("promo: already redeemed with this token")
)

type ID string

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercent || t == DiscountFixed
}

// PromoCode is an admin-managed discount code. Code is stored upper-cased.
type PromoCode struct {
	ID            ID
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	Active        bool
	ExpiresAt     *time.Time
	MaxUses       *int
	UsedCount     int
	Redemptions   []string
	CreatedAt     time.Time
}

type Repository interface {
	FindByCode(ctx context.Context, code string) (*PromoCode, error)
	ByID(ctx context.Context, id ID) (*PromoCode, error)
	// Redeem atomically increments UsedCount unless MaxUses would be exceeded,
	// recording token so the same redemption is never counted twice.
	Redeem(ctx context.Context, id ID, token string) error
	Create(ctx context.Context, code *PromoCode) error
	SetActive(ctx context.Context, id ID, active bool) error
	Delete(ctx context.Context, id ID) error
	List(ctx context.Context) ([]*PromoCode, error)
}

type CreateParams struct {
	ID            ID
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	ExpiresAt     *time.Time
	MaxUses       *int
	CreatedAt     time.Time
}

// New builds an active code with no redemptions.
func New(params CreateParams) (*PromoCode, error) {
	code := Normalize(params.Code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if !params.DiscountType.Valid() || !params.DiscountValue.IsPositive() {
		return nil, ErrInvalidDiscount
	}
	if params.DiscountType == DiscountPercent && params.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrInvalidDiscount
	}
	if params.MaxUses != nil && *params.MaxUses <= 0 {
		params.MaxUses = nil
	}
	var expires *time.Time
	if params.ExpiresAt != nil {
		at := params.ExpiresAt.UTC()
		expires = &at
	}
	return &PromoCode{
		ID:            params.ID,
		Code:          code,
		DiscountType:  params.DiscountType,
		DiscountValue: params.DiscountValue,
		Active:        true,
		ExpiresAt:     expires,
		MaxUses:       params.MaxUses,
		CreatedAt:     params.CreatedAt.UTC(),
	}, nil
}

// Normalize trims and upper-cases user input.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (p *PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

func (p *PromoCode) Exhausted() bool {
	return p.MaxUses != nil && p.UsedCount >= *p.MaxUses
}

func (p *PromoCode) Redeemed(token string) bool {
	for _, t := range p.Redemptions {
		if t == token {
			return true
		}
	}
	return false
}

// ApplyRedemption mutates the code in place. Stores that cannot express the
// conditional update natively call it under their own lock.
func (p *PromoCode) ApplyRedemption(token string) error {
	if token != "" && p.Redeemed(token) {
		return ErrAlreadyRedeemed
	}
	if p.Exhausted() {
		return ErrUsageLimitReached
	}
	p.UsedCount++
	if token != "" {
		p.Redemptions = append(p.Redemptions, token)
	}
	return nil
}

func (p *PromoCode) Clone() *PromoCode {
	if p == nil {
		return nil
	}
	cp := *p
	if p.ExpiresAt != nil {
		at := *p.ExpiresAt
		cp.ExpiresAt = &at
	}
	if p.MaxUses != nil {
		limit := *p.MaxUses
		cp.MaxUses = &limit
	}
	cp.Redemptions = append([]string(nil), p.Redemptions...)
	return &cp
}

type Reason string

const (
	ReasonNone         Reason = ""
	ReasonEmpty        Reason = "empty code"
	ReasonInvalid      Reason = "invalid code"
	ReasonInactive     Reason = "inactive"
	ReasonExpired      Reason = "expired"
	ReasonLimitReached Reason = "usage limit reached"
)

var messages = map[Reason]string{
	ReasonEmpty:        "Code vide",
	ReasonInvalid:      "Code promo invalide",
	ReasonInactive:     "Ce code promo n'est plus actif",
	ReasonExpired:      "Ce code promo a expiré",
	ReasonLimitReached: "Ce code promo a atteint sa limite d'utilisation",
}

// Message is the guest-facing text for a rejection reason.
func (r Reason) Message() string {
	return messages[r]
}

// Validation is the outcome of checking a code against a base price.
type Validation struct {
	Valid          bool
	Reason         Reason
	PromoID        ID
	Code           string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	DiscountAmount money.Money
}

// Validate checks input against the looked-up code. code is nil when the lookup
// found nothing. It has no side effects and the first failing rule wins.
func Validate(input string, code *PromoCode, basePrice decimal.Decimal, now time.Time) Validation {
	normalized := Normalize(input)
	switch {
	case normalized == "":
		return Validation{Reason: ReasonEmpty}
	case code == nil:
		return Validation{Reason: ReasonInvalid, Code: normalized}
	case !code.Active:
		return Validation{Reason: ReasonInactive, Code: normalized}
	case code.Expired(now):
		return Validation{Reason: ReasonExpired, Code: normalized}
	case code.Exhausted():
		return Validation{Reason: ReasonLimitReached, Code: normalized}
	}
	return Validation{
		Valid:          true,
		PromoID:        code.ID,
		Code:           normalized,
		DiscountType:   code.DiscountType,
		DiscountValue:  code.DiscountValue,
		DiscountAmount: money.FromDecimal(DiscountAmount(code.DiscountType, code.DiscountValue, basePrice), ""),
	}
}

// DiscountAmount is round(base*value/100) for percent codes and min(value, base)
// for fixed ones.
func DiscountAmount(kind DiscountType, value, base decimal.Decimal) decimal.Decimal {
	if kind == DiscountPercent {
		return base.Mul(value).Div(decimal.NewFromInt(100)).Round(0)
	}
	return decimal.Min(value, base)
}
