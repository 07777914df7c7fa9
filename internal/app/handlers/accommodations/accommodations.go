package accommodations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"signature/internal/app/commands"
	"signature/internal/app/handlers/support"
	"signature/internal/app/queries"
	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
)

const upsertAccommodationKey = "accommodation.upsert"

// UpsertAccommodationCommand seeds or edits a property. Price and rate are
// whole numbers in the admin form. A nil Active keeps the current status and
// makes a new property active.
type UpsertAccommodationCommand struct {
	ID             string
	Name           string `validate:"required"`
	Type           string `validate:"omitempty,oneof=villa appartement chambre"`
	Location       string
	PricePerNight  int64   `validate:"gt=0"`
	CommissionRate float64 `validate:"gte=0,lte=100"`
	Capacity       int     `validate:"gt=0"`
	Active         *bool
	Featured       bool
}

func (UpsertAccommodationCommand) Key() string         { return upsertAccommodationKey }
func (UpsertAccommodationCommand) RequiresAdmin() bool { return true }

type Result struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

type Handler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
	NewID      func() string
}

func (h *Handler) Upsert(ctx context.Context, cmd UpsertAccommodationCommand) (*Result, error) {
	now := support.Clock(h.Now)
	acc := &domainaccommodation.Accommodation{
		ID:             domainaccommodation.ID(strings.TrimSpace(cmd.ID)),
		Name:           strings.TrimSpace(cmd.Name),
		Slug:           domainaccommodation.Slugify(cmd.Name),
		Type:           domainaccommodation.Type(cmd.Type),
		Location:       strings.TrimSpace(cmd.Location),
		PricePerNight:  decimal.NewFromInt(cmd.PricePerNight),
		CommissionRate: decimal.NewFromFloat(cmd.CommissionRate),
		Capacity:       cmd.Capacity,
		Status:         statusFor(cmd.Active, domainaccommodation.StatusActive),
		Featured:       cmd.Featured,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := acc.Validate(); err != nil {
		return nil, err
	}

	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if acc.ID == "" {
		acc.ID = domainaccommodation.ID(h.newID())
	} else {
		existing, err := unit.Accommodations().ByID(ctx, acc.ID)
		switch {
		case err == nil:
			acc.CreatedAt = existing.CreatedAt
			acc.Status = statusFor(cmd.Active, existing.Status)
		case !errors.Is(err, domainaccommodation.ErrNotFound):
			return nil, finish(err)
		}
	}
	if err := unit.Accommodations().Save(ctx, acc); err != nil {
		return nil, finish(err)
	}
	if err := finish(nil); err != nil {
		return nil, err
	}
	return &Result{ID: string(acc.ID), Slug: acc.Slug}, nil
}

func statusFor(active *bool, fallback domainaccommodation.Status) domainaccommodation.Status {
	switch {
	case active == nil:
		return fallback
	case *active:
		return domainaccommodation.StatusActive
	default:
		return domainaccommodation.StatusInactive
	}
}

func (h *Handler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func Register(cmds *commands.Registry, qs *queries.Registry, h *Handler, reads *QueryHandler) {
	commands.Register(cmds, upsertAccommodationKey, commands.HandlerFunc[UpsertAccommodationCommand, *Result](h.Upsert))
	queries.Register(qs, listAccommodationsKey, ListHandler(reads))
	queries.Register(qs, getAccommodationKey, GetHandler(reads))
}
