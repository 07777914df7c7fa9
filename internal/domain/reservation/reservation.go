package reservation

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"signature/internal/domain/accommodation"
	"signature/internal/domain/pricing"
	"signature/internal/domain/shared/daterange"
	"signature/internal/domain/shared/events"
)

var (
	ErrNotFound                    = errors.New("reservation: not found")
	ErrInvalidDates                = errors.New("reservation: invalid dates")
	ErrInvalidGuests               = errors.New("reservation: guests count must be positive")
	ErrCapacityExceeded            = errors.New("reservation: guests exceed accommodation capacity")
	ErrInvalidContact              = errors.New("reservation: guest contact incomplete")
	ErrInvalidPaymentMethod        = errors.New("reservation: unknown payment method")
	ErrInvalidTransition           = errors.New("reservation: invalid status transition")
	ErrPaymentRequiresConfirmation = errors.New("reservation: payment can only be recorded on a confirmed reservation")
	ErrConcurrentUpdate            = errors.New("reservation: concurrent update detected")
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentOrangeMoney  PaymentMethod = "orange_money"
	PaymentBankTransfer PaymentMethod = "virement"
	PaymentCash         PaymentMethod = "especes"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentOrangeMoney, PaymentBankTransfer, PaymentCash:
		return true
	}
	return false
}

// Label is the French display name used in guest communication.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentOrangeMoney:
		return "Orange Money"
	case PaymentBankTransfer:
		return "Virement bancaire"
	case PaymentCash:
		return "Espèces"
	}
	return string(m)
}

type Guest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (g Guest) Validate() error {
	if strings.TrimSpace(g.FirstName) == "" || strings.TrimSpace(g.LastName) == "" || strings.TrimSpace(g.Phone) == "" {
		return ErrInvalidContact
	}
	if _, err := mail.ParseAddress(g.Email); err != nil {
		return ErrInvalidContact
	}
	return nil
}

func (g Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

// Reservation is a guest's request for a stay. Price fields are a snapshot
// taken at creation and never recomputed.
type Reservation struct {
	ID                 ID
	AccommodationID    accommodation.ID
	UserID             string
	Guest              Guest
	Guests             int
	Range              daterange.DateRange
	Price              pricing.Breakdown
	PromoCode          string
	PaymentMethod      PaymentMethod
	Status             Status
	PaymentStatus      PaymentStatus
	PaymentReference   string
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	PaidAt             *time.Time
	CancellationReason string
	Notes              string
	AdminNotes         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
	events.EventRecorder
}

// Filter narrows List results; zero values match everything.
type Filter struct {
	Status          Status
	PaymentStatus   PaymentStatus
	AccommodationID accommodation.ID
	Limit           int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Reservation, error)
	// Create inserts a new reservation with version 1.
	Create(ctx context.Context, r *Reservation) error
	// Save persists changes when the stored version equals r.Version and bumps it.
	Save(ctx context.Context, r *Reservation) error
	// ListConfirmedOverlapping returns confirmed stays of the accommodation
	// intersecting rng.
	ListConfirmedOverlapping(ctx context.Context, id accommodation.ID, rng daterange.DateRange) ([]*Reservation, error)
	// ListConfirmedEndingAfter returns confirmed stays whose checkout is on or after from.
	ListConfirmedEndingAfter(ctx context.Context, id accommodation.ID, from time.Time) ([]*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, error)
}

type CreateParams struct {
	ID              ID
	AccommodationID accommodation.ID
	UserID          string
	Guest           Guest
	Guests          int
	Range           daterange.DateRange
	Price           pricing.Breakdown
	PromoCode       string
	PaymentMethod   PaymentMethod
	Notes           string
	CreatedAt       time.Time
}

func New(params CreateParams) (*Reservation, error) {
	if err := params.Range.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidDates, err)
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if err := params.Guest.Validate(); err != nil {
		return nil, err
	}
	if !params.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:              params.ID,
		AccommodationID: params.AccommodationID,
		UserID:          params.UserID,
		Guest:           params.Guest,
		Guests:          params.Guests,
		Range:           params.Range,
		Price:           params.Price,
		PromoCode:       params.PromoCode,
		PaymentMethod:   params.PaymentMethod,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		Notes:           strings.TrimSpace(params.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.Record(ReservationRequested{
		ReservationID:   r.ID,
		AccommodationID: r.AccommodationID,
		GuestEmail:      r.Guest.Email,
		GuestName:       r.Guest.FullName(),
		CheckIn:         daterange.FormatDate(r.Range.CheckIn),
		CheckOut:        daterange.FormatDate(r.Range.CheckOut),
		Nights:          r.Price.Nights,
		Guests:          r.Guests,
		Total:           r.Price.Total.Amount,
		PromoCode:       r.PromoCode,
		PaymentMethod:   r.PaymentMethod,
		At:              now,
	})
	return r, nil
}

func (r *Reservation) Confirm(adminNotes string, now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	at := now.UTC()
	r.Status = StatusConfirmed
	r.ConfirmedAt = &at
	r.SetAdminNotes(adminNotes)
	r.UpdatedAt = at
	r.Record(ReservationConfirmed{ReservationID: r.ID, AccommodationID: r.AccommodationID, CheckIn: daterange.FormatDate(r.Range.CheckIn), CheckOut: daterange.FormatDate(r.Range.CheckOut), At: at})
	return nil
}

func (r *Reservation) Cancel(reason, adminNotes string, now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	at := now.UTC()
	r.Status = StatusCancelled
	r.CancelledAt = &at
	if reason = strings.TrimSpace(reason); reason != "" {
		r.CancellationReason = reason
	}
	r.SetAdminNotes(adminNotes)
	r.UpdatedAt = at
	r.Record(ReservationCancelled{ReservationID: r.ID, Reason: r.CancellationReason, At: at})
	return nil
}

// MarkPaid records a settled payment. Only confirmed stays can be paid.
func (r *Reservation) MarkPaid(reference string, now time.Time) error {
	if r.PaymentStatus != PaymentPending {
		return ErrInvalidTransition
	}
	if r.Status != StatusConfirmed {
		return ErrPaymentRequiresConfirmation
	}
	at := now.UTC()
	r.PaymentStatus = PaymentPaid
	r.PaidAt = &at
	if reference = strings.TrimSpace(reference); reference != "" {
		r.PaymentReference = reference
	}
	r.UpdatedAt = at
	r.Record(PaymentRecorded{ReservationID: r.ID, Status: PaymentPaid, Reference: r.PaymentReference, At: at})
	return nil
}

func (r *Reservation) CancelPayment(now time.Time) error {
	if r.PaymentStatus != PaymentPending {
		return ErrInvalidTransition
	}
	at := now.UTC()
	r.PaymentStatus = PaymentCancelled
	r.UpdatedAt = at
	r.Record(PaymentRecorded{ReservationID: r.ID, Status: PaymentCancelled, At: at})
	return nil
}

// SetAdminNotes replaces the admin notes unless notes is blank.
func (r *Reservation) SetAdminNotes(notes string) {
	if notes = strings.TrimSpace(notes); notes != "" {
		r.AdminNotes = notes
	}
}

// Clone copies the reservation without its pending events.
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	cp := *r
	cp.EventRecorder = events.EventRecorder{}
	cp.ConfirmedAt = copyTime(r.ConfirmedAt)
	cp.CancelledAt = copyTime(r.CancelledAt)
	cp.PaidAt = copyTime(r.PaidAt)
	return &cp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
