package reservations

import (
	"context"

	"signature/internal/app/dto"
	"signature/internal/app/handlers/support"
	"signature/internal/app/queries"
	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainpack "signature/internal/domain/pack"
	domainreservation "signature/internal/domain/reservation"
	domainstats "signature/internal/domain/stats"
)

const (
	getReservationKey   = "reservation.get"
	listReservationsKey = "reservation.list"
	adminStatsKey       = "reservation.stats"
)

type GetReservationQuery struct {
	ID string `validate:"required"`
}

func (GetReservationQuery) Key() string         { return getReservationKey }
func (GetReservationQuery) RequiresAdmin() bool { return true }

type ListReservationsQuery struct {
	Status          string `validate:"omitempty,oneof=pending confirmed cancelled"`
	PaymentStatus   string `validate:"omitempty,oneof=pending paid cancelled"`
	AccommodationID string
	Limit           int `validate:"gte=0,lte=500"`
}

func (ListReservationsQuery) Key() string         { return listReservationsKey }
func (ListReservationsQuery) RequiresAdmin() bool { return true }

type AdminStatsQuery struct{}

func (AdminStatsQuery) Key() string         { return adminStatsKey }
func (AdminStatsQuery) RequiresAdmin() bool { return true }

type QueryHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *QueryHandler) Get(ctx context.Context, q GetReservationQuery) (*dto.Reservation, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	r, err := unit.Reservations().ByID(ctx, domainreservation.ID(q.ID))
	if err != nil {
		return nil, err
	}
	out := dto.MapReservation(r)
	return &out, nil
}

// List returns reservations newest first.
func (h *QueryHandler) List(ctx context.Context, q ListReservationsQuery) (dto.ReservationCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	defer cleanup()
	items, err := unit.Reservations().List(ctx, domainreservation.Filter{
		Status:          domainreservation.Status(q.Status),
		PaymentStatus:   domainreservation.PaymentStatus(q.PaymentStatus),
		AccommodationID: domainaccommodation.ID(q.AccommodationID),
		Limit:           q.Limit,
	})
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	return dto.MapReservations(items), nil
}

func (h *QueryHandler) Stats(ctx context.Context, _ AdminStatsQuery) (dto.AdminStats, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AdminStats{}, err
	}
	defer cleanup()
	items, err := unit.Reservations().List(ctx, domainreservation.Filter{})
	if err != nil {
		return dto.AdminStats{}, err
	}
	dashboard := domainstats.Compute(items)
	requests, err := unit.Packs().ListRequests(ctx, domainpack.RequestNew)
	if err != nil {
		return dto.AdminStats{}, err
	}
	dashboard.NewPackRequests = len(requests)
	return dto.MapStats(dashboard), nil
}

func GetHandler(h *QueryHandler) queries.Handler[GetReservationQuery, *dto.Reservation] {
	return queries.HandlerFunc[GetReservationQuery, *dto.Reservation](h.Get)
}

func ListHandler(h *QueryHandler) queries.Handler[ListReservationsQuery, dto.ReservationCollection] {
	return queries.HandlerFunc[ListReservationsQuery, dto.ReservationCollection](h.List)
}

func StatsHandler(h *QueryHandler) queries.Handler[AdminStatsQuery, dto.AdminStats] {
	return queries.HandlerFunc[AdminStatsQuery, dto.AdminStats](h.Stats)
}
