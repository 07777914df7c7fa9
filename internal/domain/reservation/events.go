package reservation

import (
	"time"

	"signature/internal/domain/accommodation"
)

type ReservationRequested struct {
	ReservationID   ID               `json:"reservation_id"`
	AccommodationID accommodation.ID `json:"accommodation_id"`
	GuestEmail      string           `json:"guest_email"`
	GuestName       string           `json:"guest_name"`
	CheckIn         string           `json:"check_in"`
	CheckOut        string           `json:"check_out"`
	Nights          int              `json:"nights"`
	Guests          int              `json:"guests"`
	Total           int64            `json:"total_price"`
	PromoCode       string           `json:"promo_code,omitempty"`
	PaymentMethod   PaymentMethod    `json:"payment_method"`
	At              time.Time        `json:"occurred_at"`
}

func (e ReservationRequested) EventName() string     { return "reservation.requested" }
func (e ReservationRequested) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationRequested) OccurredAt() time.Time { return e.At }

type ReservationConfirmed struct {
	ReservationID   ID               `json:"reservation_id"`
	AccommodationID accommodation.ID `json:"accommodation_id"`
	CheckIn         string           `json:"check_in"`
	CheckOut        string           `json:"check_out"`
	At              time.Time        `json:"occurred_at"`
}

func (e ReservationConfirmed) EventName() string     { return "reservation.confirmed" }
func (e ReservationConfirmed) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationConfirmed) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	ReservationID ID        `json:"reservation_id"`
	Reason        string    `json:"reason,omitempty"`
	At            time.Time `json:"occurred_at"`
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }

type PaymentRecorded struct {
	ReservationID ID            `json:"reservation_id"`
	Status        PaymentStatus `json:"payment_status"`
	Reference     string        `json:"payment_reference,omitempty"`
	At            time.Time     `json:"occurred_at"`
}

func (e PaymentRecorded) EventName() string     { return "reservation.payment_" + string(e.Status) }
func (e PaymentRecorded) AggregateID() string   { return string(e.ReservationID) }
func (e PaymentRecorded) OccurredAt() time.Time { return e.At }
