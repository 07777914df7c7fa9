package reservations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"signature/internal/app/commands"
	"signature/internal/app/dto"
	"signature/internal/app/handlers/support"
	"signature/internal/app/middleware"
	"signature/internal/app/outbox"
	"signature/internal/app/policies"
	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	"signature/internal/domain/pricing"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
	"signature/internal/domain/shared/money"
)

const createReservationKey = "reservation.create"

// ErrPersistence hides store failures from callers; the cause is logged.
var ErrPersistence = errors.New("reservations: failed to persist reservation")

type CreateReservationCommand struct {
	AccommodationID string `validate:"required"`
	UserID          string
	FirstName       string    `validate:"required"`
	LastName        string    `validate:"required"`
	Email           string    `validate:"required,email"`
	Phone           string    `validate:"required"`
	CheckIn         time.Time `validate:"required"`
	CheckOut        time.Time `validate:"required"`
	Guests          int       `validate:"gt=0"`
	PaymentMethod   string    `validate:"payment_method"`
	Notes           string
	PromoCode       string
	IdempotencyKeyV string
}

func (c CreateReservationCommand) Key() string { return createReservationKey }

func (c CreateReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateReservationCommand) ResultPrototype() any { return &CreateReservationResult{} }

type CreateReservationResult struct {
	ReservationID string          `json:"reservation_id"`
	Reservation   dto.Reservation `json:"reservation"`
	// PromoRejected carries the reason an offered promo code was ignored.
	PromoRejected string `json:"promo_rejected,omitempty"`
}

type CreateReservationHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
	Currency   string
}

func (h *CreateReservationHandler) Handle(ctx context.Context, cmd CreateReservationCommand) (*CreateReservationResult, error) {
	rng, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainreservation.ErrInvalidDates, err)
	}
	guest := domainreservation.Guest{
		FirstName: strings.TrimSpace(cmd.FirstName),
		LastName:  strings.TrimSpace(cmd.LastName),
		Email:     strings.TrimSpace(cmd.Email),
		Phone:     strings.TrimSpace(cmd.Phone),
	}
	if err := guest.Validate(); err != nil {
		return nil, err
	}
	if cmd.Guests <= 0 {
		return nil, domainreservation.ErrInvalidGuests
	}
	method := domainreservation.PaymentMethod(cmd.PaymentMethod)
	if !method.Valid() {
		return nil, domainreservation.ErrInvalidPaymentMethod
	}

	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, h.persistenceError(ctx, "begin unit", err)
	}
	res, err := h.create(ctx, unit, cmd, rng, guest, method)
	if err != nil {
		_ = finish(err)
		return nil, err
	}
	if err := finish(nil); err != nil {
		return nil, h.persistenceError(ctx, "commit", err)
	}
	return res, nil
}

func (h *CreateReservationHandler) create(ctx context.Context, unit uow.UnitOfWork, cmd CreateReservationCommand, rng daterange.DateRange, guest domainreservation.Guest, method domainreservation.PaymentMethod) (*CreateReservationResult, error) {
	logger := h.logger()
	acc, err := unit.Accommodations().ByID(ctx, domainaccommodation.ID(cmd.AccommodationID))
	if err != nil {
		if errors.Is(err, domainaccommodation.ErrNotFound) {
			return nil, domainaccommodation.ErrNotFound
		}
		return nil, h.persistenceError(ctx, "load accommodation", err)
	}
	if !acc.Bookable() {
		return nil, domainaccommodation.ErrNotFound
	}
	if acc.Capacity > 0 && cmd.Guests > acc.Capacity {
		return nil, domainreservation.ErrCapacityExceeded
	}

	check, err := checkAvailability(ctx, unit, acc.ID, rng)
	if err != nil {
		return nil, h.persistenceError(ctx, "check availability", err)
	}
	if !check.Available {
		return nil, domainavailability.ErrDatesUnavailable
	}

	now := support.Clock(h.Now)
	quote := pricing.Calculate(acc.PricePerNight, rng.CheckIn, rng.CheckOut, acc.CommissionRate)
	if quote.Nights <= 0 {
		return nil, domainreservation.ErrInvalidDates
	}

	var (
		discount  money.Money
		applied   domainpromo.Validation
		promoCode string
		rejected  string
	)
	if strings.TrimSpace(cmd.PromoCode) != "" {
		applied = h.lookupPromo(ctx, unit, cmd.PromoCode, quote, now)
		if applied.Valid {
			discount = applied.DiscountAmount
			promoCode = applied.Code
		} else {
			rejected = string(applied.Reason)
			logger.InfoContext(ctx, "promo code ignored", "code", applied.Code, "reason", applied.Reason)
		}
	}

	id := domainreservation.ID(h.newID())
	if applied.Valid {
		reason, err := h.redeemPromo(ctx, unit, applied, id)
		if err != nil {
			return nil, h.persistenceError(ctx, "redeem promo", err)
		}
		if reason != domainpromo.ReasonNone {
			discount, promoCode, rejected = money.Money{}, "", string(reason)
		}
	}

	r, err := domainreservation.New(domainreservation.CreateParams{
		ID:              id,
		AccommodationID: acc.ID,
		UserID:          cmd.UserID,
		Guest:           guest,
		Guests:          cmd.Guests,
		Range:           rng,
		Price:           quote.Settle(discount, h.Currency),
		PromoCode:       promoCode,
		PaymentMethod:   method,
		Notes:           cmd.Notes,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Reservations().Create(ctx, r); err != nil {
		return nil, h.persistenceError(ctx, "create reservation", err)
	}

	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, r.PullEvents()); err != nil {
		return nil, h.persistenceError(ctx, "record events", err)
	}

	logger.InfoContext(ctx, "reservation created",
		"reservation_id", r.ID,
		"accommodation_id", acc.ID,
		"nights", quote.Nights,
		"total", r.Price.Total.Amount,
	)
	res := &CreateReservationResult{ReservationID: string(r.ID), Reservation: dto.MapReservation(r), PromoRejected: rejected}
	uow.AfterCommit(ctx, func() { h.notify(ctx, res, acc) })
	return res, nil
}

func (h *CreateReservationHandler) lookupPromo(ctx context.Context, unit uow.UnitOfWork, input string, quote pricing.Quote, now time.Time) domainpromo.Validation {
	code, err := unit.Promos().FindByCode(ctx, domainpromo.Normalize(input))
	if err != nil {
		if !errors.Is(err, domainpromo.ErrNotFound) {
			h.logger().WarnContext(ctx, "promo lookup failed", "error", err)
		}
		code = nil
	}
	return domainpromo.Validate(input, code, quote.Subtotal, now)
}

// redeemPromo consumes one use of the validated code with the reservation id
// as token. A refusal by the store yields the reason the discount is dropped;
// only store faults are returned as errors.
func (h *CreateReservationHandler) redeemPromo(ctx context.Context, unit uow.UnitOfWork, applied domainpromo.Validation, id domainreservation.ID) (domainpromo.Reason, error) {
	err := unit.Promos().Redeem(ctx, applied.PromoID, string(id))
	switch {
	case err == nil, errors.Is(err, domainpromo.ErrAlreadyRedeemed):
		return domainpromo.ReasonNone, nil
	case errors.Is(err, domainpromo.ErrUsageLimitReached):
		h.logger().InfoContext(ctx, "promo code exhausted before redemption", "code", applied.Code, "reservation_id", id)
		return domainpromo.ReasonLimitReached, nil
	case errors.Is(err, domainpromo.ErrNotFound):
		h.logger().InfoContext(ctx, "promo code removed before redemption", "code", applied.Code, "reservation_id", id)
		return domainpromo.ReasonInvalid, nil
	default:
		return domainpromo.ReasonNone, err
	}
}

func (h *CreateReservationHandler) notify(ctx context.Context, res *CreateReservationResult, acc *domainaccommodation.Accommodation) {
	if h.Notifier == nil || res == nil || acc == nil {
		return
	}
	r := res.Reservation
	checkIn, _ := daterange.ParseDate(r.CheckIn)
	checkOut, _ := daterange.ParseDate(r.CheckOut)
	notice := policies.ReservationNotice{
		ReservationID:     r.ID,
		AccommodationName: acc.Name,
		AccommodationSlug: acc.Slug,
		Location:          acc.Location,
		GuestFirstName:    r.GuestFirstName,
		GuestLastName:     r.GuestLastName,
		GuestEmail:        r.GuestEmail,
		GuestPhone:        r.GuestPhone,
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		Nights:            r.Nights,
		Guests:            r.Guests,
		TotalPrice:        r.TotalPrice,
		PaymentMethod:     r.PaymentMethod,
		Notes:             r.Notes,
	}
	support.Go(ctx, h.logger(), "notify reservation requested", 0, func(ctx context.Context) error {
		return h.Notifier.ReservationRequested(ctx, notice)
	})
}

func (h *CreateReservationHandler) persistenceError(ctx context.Context, step string, err error) error {
	h.logger().ErrorContext(ctx, "reservation store failure", "step", step, "error", err)
	return fmt.Errorf("%w: %s", ErrPersistence, step)
}

func (h *CreateReservationHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *CreateReservationHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

// checkAvailability loads blocks and confirmed stays for rng and runs the pure check.
func checkAvailability(ctx context.Context, unit uow.UnitOfWork, id domainaccommodation.ID, rng daterange.DateRange) (domainavailability.Result, error) {
	blocked, err := unit.Availability().ListBlockedDates(ctx, id, rng.CheckIn, rng.CheckOut)
	if err != nil {
		return domainavailability.Result{}, err
	}
	confirmed, err := unit.Reservations().ListConfirmedOverlapping(ctx, id, rng)
	if err != nil {
		return domainavailability.Result{}, err
	}
	return domainavailability.Check(rng, blocked, ranges(confirmed)), nil
}

func ranges(items []*domainreservation.Reservation) []daterange.DateRange {
	out := make([]daterange.DateRange, 0, len(items))
	for _, r := range items {
		out = append(out, r.Range)
	}
	return out
}

var _ commands.Handler[CreateReservationCommand, *CreateReservationResult] = (*CreateReservationHandler)(nil)
var _ middleware.IdempotentCommand = CreateReservationCommand{}
