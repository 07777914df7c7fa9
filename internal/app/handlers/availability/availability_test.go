package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
	"signature/internal/infra/storage/memory"
)

func day(s string) time.Time {
	d, err := daterange.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newHandler(t *testing.T) *Handler {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	unit, err := store.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatal(err)
	}
	err = unit.Accommodations().Save(ctx, &domainaccommodation.Accommodation{
		ID:             "villa-1",
		Name:           "Villa",
		PricePerNight:  decimal.NewFromInt(50000),
		CommissionRate: decimal.NewFromInt(10),
		Capacity:       2,
		Status:         domainaccommodation.StatusActive,
	})
	if err == nil {
		err = unit.Reservations().Create(ctx, &domainreservation.Reservation{
			ID:              "r1",
			AccommodationID: "villa-1",
			Range:           daterange.DateRange{CheckIn: day("2025-07-10"), CheckOut: day("2025-07-12")},
			Status:          domainreservation.StatusConfirmed,
			PaymentStatus:   domainreservation.PaymentPending,
		})
	}
	if err == nil {
		err = unit.Reservations().Create(ctx, &domainreservation.Reservation{
			ID:              "r2",
			AccommodationID: "villa-1",
			Range:           daterange.DateRange{CheckIn: day("2025-07-20"), CheckOut: day("2025-07-22")},
			Status:          domainreservation.StatusPending,
			PaymentStatus:   domainreservation.PaymentPending,
		})
	}
	if err != nil {
		t.Fatal(err)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	return &Handler{UoWFactory: store, Now: func() time.Time { return day("2025-07-01").Add(15 * time.Hour) }}
}

func TestCheckHonoursConfirmedStaysAndBlocks(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()
	if _, err := h.Update(ctx, UpdateAvailabilityCommand{AccommodationID: "villa-1", Days: []DayInput{{Date: day("2025-07-05")}}}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		in, out string
		want    bool
	}{
		{"2025-07-01", "2025-07-05", true},
		{"2025-07-04", "2025-07-06", false},
		{"2025-07-08", "2025-07-10", true},
		{"2025-07-11", "2025-07-13", false},
		{"2025-07-12", "2025-07-14", true},
		{"2025-07-20", "2025-07-22", true},
	}
	for _, tc := range cases {
		got, err := h.Check(ctx, CheckAvailabilityQuery{AccommodationID: "villa-1", CheckIn: day(tc.in), CheckOut: day(tc.out)})
		if err != nil {
			t.Fatalf("%s..%s: %v", tc.in, tc.out, err)
		}
		if got.Available != tc.want {
			t.Fatalf("%s..%s available = %v, want %v", tc.in, tc.out, got.Available, tc.want)
		}
	}

	if _, err := h.Check(ctx, CheckAvailabilityQuery{AccommodationID: "villa-1", CheckIn: day("2025-07-03"), CheckOut: day("2025-07-03")}); !errors.Is(err, domainreservation.ErrInvalidDates) {
		t.Fatalf("empty range err = %v", err)
	}
	if _, err := h.Check(ctx, CheckAvailabilityQuery{AccommodationID: "nope", CheckIn: day("2025-07-03"), CheckOut: day("2025-07-04")}); !errors.Is(err, domainaccommodation.ErrNotFound) {
		t.Fatalf("unknown accommodation err = %v", err)
	}
}

func TestUnavailableDatesDefaultToToday(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()
	if _, err := h.Update(ctx, UpdateAvailabilityCommand{AccommodationID: "villa-1", Days: []DayInput{
		{Date: day("2025-06-20")},
		{Date: day("2025-07-15")},
	}}); err != nil {
		t.Fatal(err)
	}
	got, err := h.Unavailable(ctx, UnavailableDatesQuery{AccommodationID: "villa-1"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2025-07-10", "2025-07-11", "2025-07-15"}
	if len(got.Dates) != len(want) {
		t.Fatalf("dates = %v, want %v", got.Dates, want)
	}
	for i := range want {
		if got.Dates[i] != want[i] {
			t.Fatalf("dates = %v, want %v", got.Dates, want)
		}
	}

	if _, err := h.Update(ctx, UpdateAvailabilityCommand{AccommodationID: "villa-1", Days: []DayInput{{Date: day("2025-07-15"), Available: true}}}); err != nil {
		t.Fatal(err)
	}
	got, _ = h.Unavailable(ctx, UnavailableDatesQuery{AccommodationID: "villa-1", From: day("2025-07-11")})
	if len(got.Dates) != 1 || got.Dates[0] != "2025-07-11" {
		t.Fatalf("after reopening = %v", got.Dates)
	}
}

func TestUpdateRejectsDuplicateDaysAndUnknownStay(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()
	dup := UpdateAvailabilityCommand{AccommodationID: "villa-1", Days: []DayInput{{Date: day("2025-07-05")}, {Date: day("2025-07-05"), Available: true}}}
	if _, err := h.Update(ctx, dup); !errors.Is(err, ErrDuplicateDay) {
		t.Fatalf("duplicate err = %v", err)
	}
	missing := UpdateAvailabilityCommand{AccommodationID: "nope", Days: []DayInput{{Date: day("2025-07-05")}}}
	if _, err := h.Update(ctx, missing); !errors.Is(err, domainaccommodation.ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}
