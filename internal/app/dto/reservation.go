package dto

import (
	"time"

	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
)

type Reservation struct {
	ID                 string     `json:"id"`
	AccommodationID    string     `json:"accommodation_id"`
	UserID             string     `json:"user_id,omitempty"`
	GuestFirstName     string     `json:"guest_first_name"`
	GuestLastName      string     `json:"guest_last_name"`
	GuestEmail         string     `json:"guest_email"`
	GuestPhone         string     `json:"guest_phone"`
	CheckIn            string     `json:"check_in"`
	CheckOut           string     `json:"check_out"`
	Guests             int        `json:"guests"`
	Nights             int        `json:"nights"`
	PricePerNight      int64      `json:"price_per_night"`
	Subtotal           int64      `json:"subtotal"`
	CommissionRate     string     `json:"commission_rate"`
	CommissionAmount   int64      `json:"commission_amount"`
	PromoCode          *string    `json:"promo_code"`
	DiscountAmount     *int64     `json:"discount_amount"`
	TotalPrice         int64      `json:"total_price"`
	Currency           string     `json:"currency"`
	PaymentMethod      string     `json:"payment_method"`
	PaymentStatus      string     `json:"payment_status"`
	PaymentReference   string     `json:"payment_reference,omitempty"`
	PaymentDate        *time.Time `json:"payment_date,omitempty"`
	ReservationStatus  string     `json:"reservation_status"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	AdminNotes         string     `json:"admin_notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type ReservationCollection struct {
	Items []Reservation `json:"items"`
}

func MapReservation(r *domainreservation.Reservation) Reservation {
	out := Reservation{
		ID:                 string(r.ID),
		AccommodationID:    string(r.AccommodationID),
		UserID:             r.UserID,
		GuestFirstName:     r.Guest.FirstName,
		GuestLastName:      r.Guest.LastName,
		GuestEmail:         r.Guest.Email,
		GuestPhone:         r.Guest.Phone,
		CheckIn:            daterange.FormatDate(r.Range.CheckIn),
		CheckOut:           daterange.FormatDate(r.Range.CheckOut),
		Guests:             r.Guests,
		Nights:             r.Price.Nights,
		PricePerNight:      r.Price.PricePerNight.Amount,
		Subtotal:           r.Price.Subtotal.Amount,
		CommissionRate:     r.Price.CommissionRate.String(),
		CommissionAmount:   r.Price.CommissionAmount.Amount,
		TotalPrice:         r.Price.Total.Amount,
		Currency:           r.Price.Total.Currency,
		PaymentMethod:      string(r.PaymentMethod),
		PaymentStatus:      string(r.PaymentStatus),
		PaymentReference:   r.PaymentReference,
		PaymentDate:        r.PaidAt,
		ReservationStatus:  string(r.Status),
		ConfirmedAt:        r.ConfirmedAt,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
		Notes:              r.Notes,
		AdminNotes:         r.AdminNotes,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.PromoCode != "" {
		code := r.PromoCode
		discount := r.Price.Discount.Amount
		out.PromoCode = &code
		out.DiscountAmount = &discount
	}
	return out
}

func MapReservations(items []*domainreservation.Reservation) ReservationCollection {
	out := ReservationCollection{Items: make([]Reservation, 0, len(items))}
	for _, r := range items {
		out.Items = append(out.Items, MapReservation(r))
	}
	return out
}
