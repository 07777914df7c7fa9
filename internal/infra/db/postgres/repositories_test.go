package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
)

// These tests need a live database: POSTGRES_TEST_DSN=postgres://...
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}

// inUnit runs fn in a write unit and commits when it returns nil.
func inUnit(t *testing.T, f Factory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	t.Helper()
	unit, err := f.Begin(context.Background(), uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	ctx := uow.Attach(context.Background(), unit)
	if err := fn(ctx, unit); err != nil {
		_ = unit.Rollback(ctx)
		return err
	}
	return unit.Commit(ctx)
}

func TestPromoRedeemHonoursLimit(t *testing.T) {
	f := NewFactory(testDB(t))
	one := 1
	code := &domainpromo.PromoCode{
		ID:            domainpromo.ID(uuid.NewString()),
		Code:          "PG" + uuid.NewString()[:8],
		DiscountType:  domainpromo.DiscountPercent,
		DiscountValue: decimal.NewFromInt(10),
		Active:        true,
		MaxUses:       &one,
		CreatedAt:     time.Now().UTC(),
	}
	if err := inUnit(t, f, func(ctx context.Context, u uow.UnitOfWork) error { return u.Promos().Create(ctx, code) }); err != nil {
		t.Fatal(err)
	}
	if err := inUnit(t, f, func(ctx context.Context, u uow.UnitOfWork) error { return u.Promos().Create(ctx, code) }); !errors.Is(err, domainpromo.ErrDuplicateCode) {
		t.Fatalf("duplicate err = %v", err)
	}

	redeem := func(token string) error {
		return inUnit(t, f, func(ctx context.Context, u uow.UnitOfWork) error { return u.Promos().Redeem(ctx, code.ID, token) })
	}
	if err := redeem("r1"); err != nil {
		t.Fatal(err)
	}
	if err := redeem("r1"); !errors.Is(err, domainpromo.ErrAlreadyRedeemed) {
		t.Fatalf("replay err = %v", err)
	}
	if err := redeem("r2"); !errors.Is(err, domainpromo.ErrUsageLimitReached) {
		t.Fatalf("over limit err = %v", err)
	}

	// A failed redemption must not poison the surrounding transaction.
	err := inUnit(t, f, func(ctx context.Context, u uow.UnitOfWork) error {
		if err := u.Promos().Redeem(ctx, code.ID, "r3"); !errors.Is(err, domainpromo.ErrUsageLimitReached) {
			return err
		}
		got, err := u.Promos().ByID(ctx, code.ID)
		if err != nil {
			return err
		}
		if got.UsedCount != 1 || len(got.Redemptions) != 1 {
			t.Errorf("promo = %+v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestReservationSaveDetectsStaleVersion(t *testing.T) {
	f := NewFactory(testDB(t))
	accID := domainaccommodation.ID(uuid.NewString())
	resID := domainreservation.ID(uuid.NewString())
	in, _ := daterange.ParseDate("2025-07-01")
	out, _ := daterange.ParseDate("2025-07-03")

	err := inUnit(t, f, func(ctx context.Context, u uow.UnitOfWork) error {
		if err := u.Accommodations().Save(ctx, &domainaccommodation.Accommodation{
			ID:             accID,
			Name:           "Villa PG",
			PricePerNight:  decimal.NewFromInt(50000),
			CommissionRate: decimal.NewFromInt(10),
			Capacity:       2,
			Status:         domainaccommodation.StatusActive,
		}); err != nil {
			return err
		}
		return u.Reservations().Create(ctx, &domainreservation.Reservation{
			ID:              resID,
			AccommodationID: accID,
			Guest:           domainreservation.Guest{FirstName: "A", LastName: "B", Email: "a@b.cm", Phone: "1"},
			Guests:          1,
			Range:           daterange.DateRange{CheckIn: in, CheckOut: out},
			PaymentMethod:   domainreservation.PaymentCash,
			Status:          domainreservation.StatusPending,
			PaymentStatus:   domainreservation.PaymentPending,
			CreatedAt:       time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatal(err)
	}

	var stale *domainreservation.Reservation
	if err := inUnit(t, f, func(ctx context.Context, u uow.UnitOfWork) error {
		r, err := u.Reservations().ByID(ctx, resID)
		stale = r
		return err
	}); err != nil {
		t.Fatal(err)
	}

	if err := inUnit(t, f, func(ctx context.Context, u uow.UnitOfWork) error {
		r, err := u.Reservations().ByID(ctx, resID)
		if err != nil {
			return err
		}
		if err := r.Confirm("", time.Now()); err != nil {
			return err
		}
		return u.Reservations().Save(ctx, r)
	}); err != nil {
		t.Fatal(err)
	}

	err = inUnit(t, f, func(ctx context.Context, u uow.UnitOfWork) error {
		if err := stale.Cancel("late", "", time.Now()); err != nil {
			return err
		}
		return u.Reservations().Save(ctx, stale)
	})
	if !errors.Is(err, domainreservation.ErrConcurrentUpdate) {
		t.Fatalf("stale save err = %v", err)
	}

	if err := inUnit(t, f, func(ctx context.Context, u uow.UnitOfWork) error {
		got, err := u.Reservations().ListConfirmedOverlapping(ctx, accID, daterange.DateRange{CheckIn: in, CheckOut: out})
		if err != nil {
			return err
		}
		if len(got) != 1 || got[0].ID != resID {
			t.Errorf("confirmed = %+v", got)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}
