package pack

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"signature/internal/domain/accommodation"
	"signature/internal/domain/shared/events"
)

var (
	ErrNotFound          = errors.New("pack: not found")
	ErrRequestNotFound   = errors.New("pack: request not found")
	ErrNameRequired      = errors.New("pack: name is required")
	ErrInvalidContact    = errors.New("pack: contact details incomplete")
	ErrInvalidTransition = errors.New("pack: invalid request status transition")
)

type ID string

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Pack bundles several accommodations into an offer (wedding, weekend, ...).
type Pack struct {
	ID               ID
	Name             string
	Slug             string
	PackType         string
	ShortDescription string
	Description      string
	AccommodationIDs []accommodation.ID
	Featured         bool
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p *Pack) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

type RequestID string

type RequestStatus string

const (
	RequestNew       RequestStatus = "new"
	RequestProcessed RequestStatus = "processed"
	RequestCancelled RequestStatus = "cancelled"
)

// Request is an inquiry about a pack. PromoCode is kept as typed by the guest
// and never redeemed.
type Request struct {
	ID        RequestID
	PackName  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	EventDate *time.Time
	Guests    *int
	Message   string
	PromoCode string
	Status    RequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	Save(ctx context.Context, p *Pack) error
	ListActive(ctx context.Context) ([]*Pack, error)
	SaveRequest(ctx context.Context, r *Request) error
	RequestByID(ctx context.Context, id RequestID) (*Request, error)
	ListRequests(ctx context.Context, status RequestStatus) ([]*Request, error)
}

type RequestParams struct {
	ID        RequestID
	PackName  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	EventDate *time.Time
	Guests    *int
	Message   string
	PromoCode string
	CreatedAt time.Time
}

func NewRequest(params RequestParams) (*Request, error) {
	if strings.TrimSpace(params.PackName) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.FirstName) == "" || strings.TrimSpace(params.LastName) == "" || strings.TrimSpace(params.Phone) == "" {
		return nil, ErrInvalidContact
	}
	if _, err := mail.ParseAddress(params.Email); err != nil {
		return nil, ErrInvalidContact
	}
	if params.Guests != nil && *params.Guests <= 0 {
		params.Guests = nil
	}
	now := params.CreatedAt.UTC()
	r := &Request{
		ID:        params.ID,
		PackName:  strings.TrimSpace(params.PackName),
		FirstName: strings.TrimSpace(params.FirstName),
		LastName:  strings.TrimSpace(params.LastName),
		Email:     strings.TrimSpace(params.Email),
		Phone:     strings.TrimSpace(params.Phone),
		EventDate: params.EventDate,
		Guests:    params.Guests,
		Message:   strings.TrimSpace(params.Message),
		PromoCode: strings.TrimSpace(params.PromoCode),
		Status:    RequestNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Record(RequestReceived{RequestID: r.ID, PackName: r.PackName, Email: r.Email, At: now})
	return r, nil
}

// Resolve moves a new request to processed or cancelled.
func (r *Request) Resolve(status RequestStatus, now time.Time) error {
	if r.Status != RequestNew {
		return ErrInvalidTransition
	}
	if status != RequestProcessed && status != RequestCancelled {
		return ErrInvalidTransition
	}
	r.Status = status
	r.UpdatedAt = now.UTC()
	return nil
}

type RequestReceived struct {
	RequestID RequestID `json:"request_id"`
	PackName  string    `json:"pack_name"`
	Email     string    `json:"email"`
	At        time.Time `json:"occurred_at"`
}

func (e RequestReceived) EventName() string     { return "pack.request_received" }
func (e RequestReceived) AggregateID() string   { return string(e.RequestID) }
func (e RequestReceived) OccurredAt() time.Time { return e.At }
