package accommodations

import (
	"context"
	"errors"
	"strings"

	"signature/internal/app/dto"
	"signature/internal/app/handlers/support"
	"signature/internal/app/queries"
	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
)

const (
	listAccommodationsKey = "accommodation.list"
	getAccommodationKey   = "accommodation.get"
)

// ListAccommodationsQuery lists the public catalogue. IncludeInactive is the
// back-office view and needs an admin session.
type ListAccommodationsQuery struct {
	IncludeInactive bool
}

func (ListAccommodationsQuery) Key() string           { return listAccommodationsKey }
func (q ListAccommodationsQuery) RequiresAdmin() bool { return q.IncludeInactive }

// GetAccommodationQuery looks a property up by Ref, tried as an id first and
// then as a slug.
type GetAccommodationQuery struct {
	Ref             string `validate:"required"`
	IncludeInactive bool
}

func (GetAccommodationQuery) Key() string           { return getAccommodationKey }
func (q GetAccommodationQuery) RequiresAdmin() bool { return q.IncludeInactive }

type QueryHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *QueryHandler) List(ctx context.Context, q ListAccommodationsQuery) (dto.AccommodationCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AccommodationCollection{}, err
	}
	defer cleanup()
	filter := domainaccommodation.Filter{Status: domainaccommodation.StatusActive}
	if q.IncludeInactive {
		filter = domainaccommodation.Filter{}
	}
	items, err := unit.Accommodations().List(ctx, filter)
	if err != nil {
		return dto.AccommodationCollection{}, err
	}
	return dto.MapAccommodations(items, q.IncludeInactive), nil
}

// Get hides inactive properties from the public view.
func (h *QueryHandler) Get(ctx context.Context, q GetAccommodationQuery) (*dto.Accommodation, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	ref := strings.TrimSpace(q.Ref)
	acc, err := unit.Accommodations().ByID(ctx, domainaccommodation.ID(ref))
	if errors.Is(err, domainaccommodation.ErrNotFound) {
		acc, err = unit.Accommodations().BySlug(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if !q.IncludeInactive && !acc.Bookable() {
		return nil, domainaccommodation.ErrNotFound
	}
	out := dto.MapAccommodation(acc, q.IncludeInactive)
	return &out, nil
}

func ListHandler(h *QueryHandler) queries.Handler[ListAccommodationsQuery, dto.AccommodationCollection] {
	return queries.HandlerFunc[ListAccommodationsQuery, dto.AccommodationCollection](h.List)
}

func GetHandler(h *QueryHandler) queries.Handler[GetAccommodationQuery, *dto.Accommodation] {
	return queries.HandlerFunc[GetAccommodationQuery, *dto.Accommodation](h.Get)
}
