package reservations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"signature/internal/app/commands"
	"signature/internal/app/dto"
	"signature/internal/app/handlers/support"
	"signature/internal/app/outbox"
	"signature/internal/app/uow"
	domainavailability "signature/internal/domain/availability"
	domainreservation "signature/internal/domain/reservation"
)

const (
	confirmReservationKey  = "reservation.confirm"
	cancelReservationKey   = "reservation.cancel"
	updatePaymentStatusKey = "reservation.payment"
)

type ConfirmReservationCommand struct {
	ReservationID string `validate:"required"`
	AdminNotes    string
}

func (ConfirmReservationCommand) Key() string         { return confirmReservationKey }
func (ConfirmReservationCommand) RequiresAdmin() bool { return true }

type CancelReservationCommand struct {
	ReservationID string `validate:"required"`
	Reason        string
	AdminNotes    string
}

func (CancelReservationCommand) Key() string         { return cancelReservationKey }
func (CancelReservationCommand) RequiresAdmin() bool { return true }

type UpdatePaymentStatusCommand struct {
	ReservationID string `validate:"required"`
	Status        string `validate:"oneof=paid cancelled"`
	Reference     string
	AdminNotes    string
}

func (UpdatePaymentStatusCommand) Key() string         { return updatePaymentStatusKey }
func (UpdatePaymentStatusCommand) RequiresAdmin() bool { return true }

// StatusHandler serves the admin transitions of an existing reservation.
type StatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *StatusHandler) Confirm(ctx context.Context, cmd ConfirmReservationCommand) (*dto.Reservation, error) {
	return h.transition(ctx, cmd.ReservationID, func(ctx context.Context, unit uow.UnitOfWork, r *domainreservation.Reservation, now time.Time) error {
		if r.Status != domainreservation.StatusPending {
			return domainreservation.ErrInvalidTransition
		}
		if err := unit.Accommodations().Lock(ctx, r.AccommodationID); err != nil {
			return err
		}
		others, err := unit.Reservations().ListConfirmedOverlapping(ctx, r.AccommodationID, r.Range)
		if err != nil {
			return err
		}
		for _, other := range others {
			if other.ID != r.ID {
				h.logger().InfoContext(ctx, "confirmation rejected by overlapping stay", "reservation_id", r.ID, "conflict_id", other.ID)
				return domainavailability.ErrDatesUnavailable
			}
		}
		return r.Confirm(cmd.AdminNotes, now)
	})
}

func (h *StatusHandler) Cancel(ctx context.Context, cmd CancelReservationCommand) (*dto.Reservation, error) {
	return h.transition(ctx, cmd.ReservationID, func(_ context.Context, _ uow.UnitOfWork, r *domainreservation.Reservation, now time.Time) error {
		return r.Cancel(cmd.Reason, cmd.AdminNotes, now)
	})
}

func (h *StatusHandler) UpdatePayment(ctx context.Context, cmd UpdatePaymentStatusCommand) (*dto.Reservation, error) {
	return h.transition(ctx, cmd.ReservationID, func(_ context.Context, _ uow.UnitOfWork, r *domainreservation.Reservation, now time.Time) error {
		var err error
		switch domainreservation.PaymentStatus(cmd.Status) {
		case domainreservation.PaymentPaid:
			err = r.MarkPaid(cmd.Reference, now)
		case domainreservation.PaymentCancelled:
			err = r.CancelPayment(now)
		default:
			err = domainreservation.ErrInvalidTransition
		}
		if err != nil {
			return err
		}
		r.SetAdminNotes(cmd.AdminNotes)
		return nil
	})
}

type mutation func(ctx context.Context, unit uow.UnitOfWork, r *domainreservation.Reservation, now time.Time) error

func (h *StatusHandler) transition(ctx context.Context, id string, apply mutation) (*dto.Reservation, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	out, err := h.apply(ctx, unit, domainreservation.ID(id), apply)
	if err != nil {
		_ = finish(err)
		return nil, err
	}
	if err := finish(nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *StatusHandler) apply(ctx context.Context, unit uow.UnitOfWork, id domainreservation.ID, apply mutation) (*dto.Reservation, error) {
	r, err := unit.Reservations().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(ctx, unit, r, support.Clock(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Reservations().Save(ctx, r); err != nil {
		if errors.Is(err, domainreservation.ErrConcurrentUpdate) {
			h.logger().WarnContext(ctx, "reservation modified concurrently", "reservation_id", r.ID)
		}
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, r.PullEvents()); err != nil {
		return nil, err
	}
	out := dto.MapReservation(r)
	return &out, nil
}

func (h *StatusHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func ConfirmHandler(h *StatusHandler) commands.Handler[ConfirmReservationCommand, *dto.Reservation] {
	return commands.HandlerFunc[ConfirmReservationCommand, *dto.Reservation](h.Confirm)
}

func CancelHandler(h *StatusHandler) commands.Handler[CancelReservationCommand, *dto.Reservation] {
	return commands.HandlerFunc[CancelReservationCommand, *dto.Reservation](h.Cancel)
}

func PaymentHandler(h *StatusHandler) commands.Handler[UpdatePaymentStatusCommand, *dto.Reservation] {
	return commands.HandlerFunc[UpdatePaymentStatusCommand, *dto.Reservation](h.UpdatePayment)
}
