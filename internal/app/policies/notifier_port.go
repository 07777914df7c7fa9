package policies

import (
	"context"
	"time"
)

// ReservationNotice carries what guest and admin e-mails need about a new
// reservation request.
type ReservationNotice struct {
	ReservationID     string    `json:"reservation_id"`
	AccommodationName string    `json:"accommodation_name"`
	AccommodationSlug string    `json:"accommodation_slug"`
	Location          string    `json:"location,omitempty"`
	GuestFirstName    string    `json:"guest_first_name"`
	GuestLastName     string    `json:"guest_last_name"`
	GuestEmail        string    `json:"guest_email"`
	GuestPhone        string    `json:"guest_phone"`
	CheckIn           time.Time `json:"check_in"`
	CheckOut          time.Time `json:"check_out"`
	Nights            int       `json:"nights"`
	Guests            int       `json:"guests"`
	TotalPrice        int64     `json:"total_price"`
	PaymentMethod     string    `json:"payment_method"`
	Notes             string    `json:"notes,omitempty"`
}

type PackRequestNotice struct {
	RequestID string     `json:"request_id"`
	PackName  string     `json:"pack_name"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	EventDate *time.Time `json:"event_date,omitempty"`
	Guests    *int       `json:"guests,omitempty"`
	Message   string     `json:"message,omitempty"`
	PromoCode string     `json:"promo_code,omitempty"`
}

// Notifier delivers guest and admin notifications. Implementations must be
// safe for concurrent use; callers never fail a request on notifier errors.
type Notifier interface {
	ReservationRequested(ctx context.Context, notice ReservationNotice) error
	PackRequested(ctx context.Context, notice PackRequestNotice) error
}
