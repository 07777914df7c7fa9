package reservation

import (
	"errors"
	"testing"
	"time"

	"signature/internal/domain/pricing"
	"signature/internal/domain/shared/daterange"
	"signature/internal/domain/shared/money"
)

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newPending(t *testing.T) *Reservation {
	t.Helper()
	rng, err := daterange.Parse("2025-07-01", "2025-07-04")
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(CreateParams{
		ID:              "res-1",
		AccommodationID: "acc-1",
		Guest:           Guest{FirstName: "Awa", LastName: "Ngono", Email: "awa@example.cm", Phone: "+237600000000"},
		Guests:          2,
		Range:           rng,
		Price:           pricing.Breakdown{Nights: 3, Subtotal: money.FCFA(300000), Total: money.FCFA(300000)},
		PaymentMethod:   PaymentOrangeMoney,
		CreatedAt:       now,
	})
	if err != nil {
		t.Fatalf("new reservation: %v", err)
	}
	return r
}

func TestNewStartsPendingAndRecordsEvent(t *testing.T) {
	r := newPending(t)
	if r.Status != StatusPending || r.PaymentStatus != PaymentPending {
		t.Fatalf("unexpected statuses %s/%s", r.Status, r.PaymentStatus)
	}
	evs := r.PullEvents()
	if len(evs) != 1 || evs[0].EventName() != "reservation.requested" {
		t.Fatalf("expected reservation.requested, got %v", evs)
	}
	if len(r.PendingEvents()) != 0 {
		t.Fatalf("events must be drained")
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	rng, _ := daterange.Parse("2025-07-01", "2025-07-04")
	base := CreateParams{
		Guest:         Guest{FirstName: "A", LastName: "B", Email: "a@b.cm", Phone: "1"},
		Guests:        1,
		Range:         rng,
		PaymentMethod: PaymentCash,
	}
	cases := []struct {
		name   string
		mutate func(p *CreateParams)
		want   error
	}{
		{name: "no nights", mutate: func(p *CreateParams) { p.Range = daterange.DateRange{CheckIn: rng.CheckIn, CheckOut: rng.CheckIn} }, want: ErrInvalidDates},
		{name: "no guests", mutate: func(p *CreateParams) { p.Guests = 0 }, want: ErrInvalidGuests},
		{name: "bad email", mutate: func(p *CreateParams) { p.Guest.Email = "not-an-email" }, want: ErrInvalidContact},
		{name: "missing phone", mutate: func(p *CreateParams) { p.Guest.Phone = " " }, want: ErrInvalidContact},
		{name: "payment method", mutate: func(p *CreateParams) { p.PaymentMethod = "card" }, want: ErrInvalidPaymentMethod},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			if _, err := New(p); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	r := newPending(t)
	if err := r.Confirm("vérifié", now.Add(time.Hour)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if r.ConfirmedAt == nil || r.AdminNotes != "vérifié" {
		t.Fatalf("confirm must stamp confirmed_at and notes: %+v", r)
	}
	if err := r.Cancel("", "", now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("confirmed is terminal, got %v", err)
	}
	if err := r.Confirm("", now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double confirm must fail, got %v", err)
	}

	c := newPending(t)
	if err := c.Cancel("plans changed", "", now); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if c.CancelledAt == nil || c.CancellationReason != "plans changed" {
		t.Fatalf("cancel must stamp cancelled_at and reason")
	}
	if err := c.Confirm("", now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancelled is terminal, got %v", err)
	}
}

func TestPaymentTransitions(t *testing.T) {
	r := newPending(t)
	if err := r.MarkPaid("OM-1", now); !errors.Is(err, ErrPaymentRequiresConfirmation) {
		t.Fatalf("expected ErrPaymentRequiresConfirmation, got %v", err)
	}
	if err := r.Confirm("", now); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkPaid(" OM-1 ", now); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if r.PaidAt == nil || r.PaymentReference != "OM-1" {
		t.Fatalf("paid must stamp date and reference")
	}
	if err := r.CancelPayment(now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("paid is terminal, got %v", err)
	}

	p := newPending(t)
	if err := p.CancelPayment(now); err != nil {
		t.Fatalf("payment cancel from pending: %v", err)
	}
	if p.Status != StatusPending {
		t.Fatalf("payment cancel must not touch reservation status")
	}
}

func TestCloneDropsEvents(t *testing.T) {
	r := newPending(t)
	cp := r.Clone()
	if len(cp.PendingEvents()) != 0 {
		t.Fatalf("clone must not carry events")
	}
	_ = r.Confirm("", now)
	if cp.Status != StatusPending || cp.ConfirmedAt != nil {
		t.Fatalf("clone must be independent")
	}
}
