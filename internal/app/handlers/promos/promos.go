package promos

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"signature/internal/app/commands"
	"signature/internal/app/dto"
	"signature/internal/app/handlers/support"
	"signature/internal/app/queries"
	"signature/internal/app/uow"
	domainpromo "signature/internal/domain/promo"
)

const (
	validatePromoKey = "promo.validate"
	listPromosKey    = "promo.list"
	createPromoKey   = "promo.create"
	togglePromoKey   = "promo.toggle"
	deletePromoKey   = "promo.delete"
)

// ValidatePromoCodeQuery previews a code against a base price without using it.
type ValidatePromoCodeQuery struct {
	Code      string
	BasePrice int64 `validate:"gte=0"`
}

func (ValidatePromoCodeQuery) Key() string { return validatePromoKey }

type ListPromoCodesQuery struct{}

func (ListPromoCodesQuery) Key() string         { return listPromosKey }
func (ListPromoCodesQuery) RequiresAdmin() bool { return true }

type CreatePromoCodeCommand struct {
	Code          string  `validate:"required"`
	DiscountType  string  `validate:"required,oneof=percent fixed"`
	DiscountValue float64 `validate:"gt=0"`
	ExpiresAt     *time.Time
	MaxUses       *int `validate:"omitempty,gt=0"`
}

func (CreatePromoCodeCommand) Key() string         { return createPromoKey }
func (CreatePromoCodeCommand) RequiresAdmin() bool { return true }

type TogglePromoCodeCommand struct {
	ID     string `validate:"required"`
	Active bool
}

func (TogglePromoCodeCommand) Key() string         { return togglePromoKey }
func (TogglePromoCodeCommand) RequiresAdmin() bool { return true }

type DeletePromoCodeCommand struct {
	ID string `validate:"required"`
}

func (DeletePromoCodeCommand) Key() string         { return deletePromoKey }
func (DeletePromoCodeCommand) RequiresAdmin() bool { return true }

type Handler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

func (h *Handler) Validate(ctx context.Context, q ValidatePromoCodeQuery) (dto.PromoValidation, error) {
	now := support.Clock(h.Now)
	normalized := domainpromo.Normalize(q.Code)
	if normalized == "" {
		return dto.MapPromoValidation(domainpromo.Validate(q.Code, nil, decimal.Zero, now)), nil
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PromoValidation{}, err
	}
	defer cleanup()
	code, err := unit.Promos().FindByCode(ctx, normalized)
	if err != nil {
		if !errors.Is(err, domainpromo.ErrNotFound) {
			return dto.PromoValidation{}, err
		}
		code = nil
	}
	return dto.MapPromoValidation(domainpromo.Validate(q.Code, code, decimal.NewFromInt(q.BasePrice), now)), nil
}

func (h *Handler) List(ctx context.Context, _ ListPromoCodesQuery) (dto.PromoCodeCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PromoCodeCollection{}, err
	}
	defer cleanup()
	items, err := unit.Promos().List(ctx)
	if err != nil {
		return dto.PromoCodeCollection{}, err
	}
	return dto.MapPromoCodes(items), nil
}

func (h *Handler) Create(ctx context.Context, cmd CreatePromoCodeCommand) (*dto.PromoCode, error) {
	code, err := domainpromo.New(domainpromo.CreateParams{
		ID:            domainpromo.ID(h.newID()),
		Code:          cmd.Code,
		DiscountType:  domainpromo.DiscountType(cmd.DiscountType),
		DiscountValue: decimal.NewFromFloat(cmd.DiscountValue),
		ExpiresAt:     cmd.ExpiresAt,
		MaxUses:       cmd.MaxUses,
		CreatedAt:     support.Clock(h.Now),
	})
	if err != nil {
		return nil, err
	}
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if err := unit.Promos().Create(ctx, code); err != nil {
		return nil, finish(err)
	}
	if err := finish(nil); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "promo code created", "code", code.Code, "type", code.DiscountType)
	out := dto.MapPromoCode(code)
	return &out, nil
}

func (h *Handler) Toggle(ctx context.Context, cmd TogglePromoCodeCommand) (*dto.PromoCode, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	id := domainpromo.ID(cmd.ID)
	if err := unit.Promos().SetActive(ctx, id, cmd.Active); err != nil {
		return nil, finish(err)
	}
	code, err := unit.Promos().ByID(ctx, id)
	if err != nil {
		return nil, finish(err)
	}
	if err := finish(nil); err != nil {
		return nil, err
	}
	out := dto.MapPromoCode(code)
	return &out, nil
}

func (h *Handler) Delete(ctx context.Context, cmd DeletePromoCodeCommand) (struct{}, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return struct{}{}, err
	}
	if err := unit.Promos().Delete(ctx, domainpromo.ID(cmd.ID)); err != nil {
		return struct{}{}, finish(err)
	}
	return struct{}{}, finish(nil)
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func Register(cmds *commands.Registry, qs *queries.Registry, h *Handler) {
	queries.Register(qs, validatePromoKey, queries.HandlerFunc[ValidatePromoCodeQuery, dto.PromoValidation](h.Validate))
	queries.Register(qs, listPromosKey, queries.HandlerFunc[ListPromoCodesQuery, dto.PromoCodeCollection](h.List))
	commands.Register(cmds, createPromoKey, commands.HandlerFunc[CreatePromoCodeCommand, *dto.PromoCode](h.Create))
	commands.Register(cmds, togglePromoKey, commands.HandlerFunc[TogglePromoCodeCommand, *dto.PromoCode](h.Toggle))
	commands.Register(cmds, deletePromoKey, commands.HandlerFunc[DeletePromoCodeCommand, struct{}](h.Delete))
}
