package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signature/internal/app/commands"
	"signature/internal/app/dto"
	"signature/internal/app/handlers/support"
	"signature/internal/app/queries"
	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
)

const (
	checkAvailabilityKey  = "availability.check"
	unavailableDatesKey   = "availability.unavailable_dates"
	updateAvailabilityKey = "availability.update"
)

type CheckAvailabilityQuery struct {
	AccommodationID string `validate:"required"`
	CheckIn         time.Time
	CheckOut        time.Time
}

func (CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type UnavailableDatesQuery struct {
	AccommodationID string `validate:"required"`
	// From defaults to today.
	From time.Time
}

func (UnavailableDatesQuery) Key() string { return unavailableDatesKey }

type DayInput struct {
	Date      time.Time `validate:"required"`
	Available bool
}

type UpdateAvailabilityCommand struct {
	AccommodationID string     `validate:"required"`
	Days            []DayInput `validate:"required,min=1,dive"`
}

func (UpdateAvailabilityCommand) Key() string         { return updateAvailabilityKey }
func (UpdateAvailabilityCommand) RequiresAdmin() bool { return true }

type UpdateAvailabilityResult struct {
	Updated int `json:"updated"`
}

type Handler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *Handler) Check(ctx context.Context, q CheckAvailabilityQuery) (dto.Availability, error) {
	rng, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Availability{}, fmt.Errorf("%w: %w", domainreservation.ErrInvalidDates, err)
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Availability{}, err
	}
	defer cleanup()

	id := domainaccommodation.ID(q.AccommodationID)
	if _, err := unit.Accommodations().ByID(ctx, id); err != nil {
		return dto.Availability{}, err
	}
	blocked, err := unit.Availability().ListBlockedDates(ctx, id, rng.CheckIn, rng.CheckOut)
	if err != nil {
		return dto.Availability{}, err
	}
	confirmed, err := unit.Reservations().ListConfirmedOverlapping(ctx, id, rng)
	if err != nil {
		return dto.Availability{}, err
	}
	res := domainavailability.Check(rng, blocked, ranges(confirmed))
	return dto.MapAvailability(q.AccommodationID, rng, res), nil
}

func (h *Handler) Unavailable(ctx context.Context, q UnavailableDatesQuery) (dto.UnavailableDates, error) {
	from := daterange.Day(q.From)
	if from.IsZero() {
		from = daterange.Day(support.Clock(h.Now))
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UnavailableDates{}, err
	}
	defer cleanup()

	id := domainaccommodation.ID(q.AccommodationID)
	blocked, err := unit.Availability().ListBlockedDates(ctx, id, from, time.Time{})
	if err != nil {
		return dto.UnavailableDates{}, err
	}
	confirmed, err := unit.Reservations().ListConfirmedEndingAfter(ctx, id, from)
	if err != nil {
		return dto.UnavailableDates{}, err
	}
	dates := domainavailability.UnavailableDates(from, blocked, ranges(confirmed))
	return dto.MapDates(q.AccommodationID, dates), nil
}

var ErrDuplicateDay = errors.New("availability: day listed twice")

func (h *Handler) Update(ctx context.Context, cmd UpdateAvailabilityCommand) (*UpdateAvailabilityResult, error) {
	days := make([]domainavailability.DayStatus, 0, len(cmd.Days))
	seen := make(map[time.Time]struct{}, len(cmd.Days))
	for _, d := range cmd.Days {
		day := daterange.Day(d.Date)
		if _, dup := seen[day]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDay, daterange.FormatDate(day))
		}
		seen[day] = struct{}{}
		days = append(days, domainavailability.DayStatus{Date: day, Available: d.Available})
	}

	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	id := domainaccommodation.ID(cmd.AccommodationID)
	if _, err := unit.Accommodations().ByID(ctx, id); err != nil {
		return nil, finish(err)
	}
	if err := unit.Availability().SetAvailability(ctx, id, days); err != nil {
		return nil, finish(err)
	}
	if err := finish(nil); err != nil {
		return nil, err
	}
	return &UpdateAvailabilityResult{Updated: len(days)}, nil
}

func ranges(items []*domainreservation.Reservation) []daterange.DateRange {
	out := make([]daterange.DateRange, 0, len(items))
	for _, r := range items {
		out = append(out, r.Range)
	}
	return out
}

func Register(cmds *commands.Registry, qs *queries.Registry, h *Handler) {
	queries.Register(qs, checkAvailabilityKey, queries.HandlerFunc[CheckAvailabilityQuery, dto.Availability](h.Check))
	queries.Register(qs, unavailableDatesKey, queries.HandlerFunc[UnavailableDatesQuery, dto.UnavailableDates](h.Unavailable))
	commands.Register(cmds, updateAvailabilityKey, commands.HandlerFunc[UpdateAvailabilityCommand, *UpdateAvailabilityResult](h.Update))
}
