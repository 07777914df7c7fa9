package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	appoutbox "signature/internal/app/outbox"
	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
)

func day(s string) time.Time {
	d, err := daterange.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func begin(t *testing.T, s *Store, readOnly bool) uow.UnitOfWork {
	t.Helper()
	unit, err := s.Begin(context.Background(), uow.TxOptions{ReadOnly: readOnly})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return unit
}

func reservationFixture(id string, status domainreservation.Status, in, out string) *domainreservation.Reservation {
	return &domainreservation.Reservation{
		ID:              domainreservation.ID(id),
		AccommodationID: "villa-1",
		Range:           daterange.DateRange{CheckIn: day(in), CheckOut: day(out)},
		Status:          status,
		PaymentStatus:   domainreservation.PaymentPending,
		CreatedAt:       day(in),
	}
}

func TestRollbackRevertsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	unit := begin(t, s, false)
	if err := unit.Accommodations().Save(ctx, &domainaccommodation.Accommodation{ID: "villa-1", Name: "Villa"}); err != nil {
		t.Fatal(err)
	}
	if err := unit.Reservations().Create(ctx, reservationFixture("r1", domainreservation.StatusPending, "2025-07-01", "2025-07-04")); err != nil {
		t.Fatal(err)
	}
	if err := unit.Availability().SetAvailability(ctx, "villa-1", []domainavailability.DayStatus{{Date: day("2025-07-02")}}); err != nil {
		t.Fatal(err)
	}
	if err := unit.Rollback(ctx); err != nil {
		t.Fatal(err)
	}

	read := begin(t, s, true)
	defer read.Rollback(ctx)
	if _, err := read.Accommodations().ByID(ctx, "villa-1"); !errors.Is(err, domainaccommodation.ErrNotFound) {
		t.Fatalf("accommodation err = %v", err)
	}
	if _, err := read.Reservations().ByID(ctx, "r1"); !errors.Is(err, domainreservation.ErrNotFound) {
		t.Fatalf("reservation err = %v", err)
	}
	blocked, _ := read.Availability().ListBlockedDates(ctx, "villa-1", day("2025-07-01"), time.Time{})
	if len(blocked) != 0 {
		t.Fatalf("blocked = %v", blocked)
	}
}

func TestReadOnlyUnitRejectsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	unit := begin(t, s, true)
	defer unit.Rollback(ctx)
	err := unit.Accommodations().Save(ctx, &domainaccommodation.Accommodation{ID: "a"})
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("err = %v", err)
	}
}

func TestWriteUnitsAreSerialized(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	first := begin(t, s, false)

	started := make(chan struct{})
	acquired := make(chan struct{})
	go func() {
		close(started)
		second, err := s.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return
		}
		close(acquired)
		_ = second.Commit(ctx)
	}()
	<-started
	select {
	case <-acquired:
		t.Fatal("second writer entered while first unit was open")
	case <-time.After(50 * time.Millisecond):
	}
	if err := first.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second writer never acquired the unit")
	}
}

func TestReservationSaveDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	unit := begin(t, s, false)
	r := reservationFixture("r1", domainreservation.StatusPending, "2025-07-01", "2025-07-04")
	if err := unit.Reservations().Create(ctx, r); err != nil {
		t.Fatal(err)
	}
	stale, _ := unit.Reservations().ByID(ctx, "r1")
	fresh, _ := unit.Reservations().ByID(ctx, "r1")
	if err := fresh.Confirm("", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := unit.Reservations().Save(ctx, fresh); err != nil {
		t.Fatal(err)
	}
	if fresh.Version != 2 {
		t.Fatalf("version = %d", fresh.Version)
	}
	if err := stale.Cancel("late", "", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := unit.Reservations().Save(ctx, stale); !errors.Is(err, domainreservation.ErrConcurrentUpdate) {
		t.Fatalf("err = %v", err)
	}
	_ = unit.Commit(ctx)
}

func TestConfirmedQueries(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	unit := begin(t, s, false)
	for _, r := range []*domainreservation.Reservation{
		reservationFixture("pending", domainreservation.StatusPending, "2025-07-01", "2025-07-05"),
		reservationFixture("confirmed", domainreservation.StatusConfirmed, "2025-07-03", "2025-07-06"),
		reservationFixture("past", domainreservation.StatusConfirmed, "2025-06-01", "2025-06-03"),
	} {
		if err := unit.Reservations().Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	_ = unit.Commit(ctx)

	read := begin(t, s, true)
	defer read.Rollback(ctx)
	rng := daterange.DateRange{CheckIn: day("2025-07-01"), CheckOut: day("2025-07-04")}
	overlapping, _ := read.Reservations().ListConfirmedOverlapping(ctx, "villa-1", rng)
	if len(overlapping) != 1 || overlapping[0].ID != "confirmed" {
		t.Fatalf("overlapping = %v", overlapping)
	}
	adjacent := daterange.DateRange{CheckIn: day("2025-07-06"), CheckOut: day("2025-07-08")}
	if got, _ := read.Reservations().ListConfirmedOverlapping(ctx, "villa-1", adjacent); len(got) != 0 {
		t.Fatalf("adjacent stay reported as overlapping: %v", got)
	}
	ending, _ := read.Reservations().ListConfirmedEndingAfter(ctx, "villa-1", day("2025-07-01"))
	if len(ending) != 1 || ending[0].ID != "confirmed" {
		t.Fatalf("ending after = %v", ending)
	}
	all, _ := read.Reservations().List(ctx, domainreservation.Filter{})
	if len(all) != 3 || all[0].ID != "confirmed" {
		t.Fatalf("list order = %v", all)
	}
	limited, _ := read.Reservations().List(ctx, domainreservation.Filter{Status: domainreservation.StatusConfirmed, Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("limited = %d", len(limited))
	}
}

func TestBlockedDatesHalfOpenWindow(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	unit := begin(t, s, false)
	err := unit.Availability().SetAvailability(ctx, "villa-1", []domainavailability.DayStatus{
		{Date: day("2025-07-01")},
		{Date: day("2025-07-04")},
		{Date: day("2025-07-10")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := unit.Availability().SetAvailability(ctx, "villa-1", []domainavailability.DayStatus{{Date: day("2025-07-10"), Available: true}}); err != nil {
		t.Fatal(err)
	}
	_ = unit.Commit(ctx)

	read := begin(t, s, true)
	defer read.Rollback(ctx)
	got, _ := read.Availability().ListBlockedDates(ctx, "villa-1", day("2025-07-01"), day("2025-07-04"))
	if len(got) != 1 || !got[0].Equal(day("2025-07-01")) {
		t.Fatalf("window = %v", got)
	}
	open, _ := read.Availability().ListBlockedDates(ctx, "villa-1", day("2025-07-02"), time.Time{})
	if len(open) != 1 || !open[0].Equal(day("2025-07-04")) {
		t.Fatalf("unbounded = %v", open)
	}
}

func TestPromoRedeemCeilingAndToken(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	limit := 2
	code, err := domainpromo.New(domainpromo.CreateParams{ID: "p1", Code: "ete25", DiscountType: domainpromo.DiscountPercent, DiscountValue: decimal.NewFromInt(10), MaxUses: &limit})
	if err != nil {
		t.Fatal(err)
	}
	unit := begin(t, s, false)
	if err := unit.Promos().Create(ctx, code); err != nil {
		t.Fatal(err)
	}
	dup, _ := domainpromo.New(domainpromo.CreateParams{ID: "p2", Code: " ETE25 ", DiscountType: domainpromo.DiscountFixed, DiscountValue: decimal.NewFromInt(5)})
	if err := unit.Promos().Create(ctx, dup); !errors.Is(err, domainpromo.ErrDuplicateCode) {
		t.Fatalf("duplicate err = %v", err)
	}
	if err := unit.Promos().Redeem(ctx, "p1", "r1"); err != nil {
		t.Fatal(err)
	}
	if err := unit.Promos().Redeem(ctx, "p1", "r1"); !errors.Is(err, domainpromo.ErrAlreadyRedeemed) {
		t.Fatalf("replay err = %v", err)
	}
	if err := unit.Promos().Redeem(ctx, "p1", "r2"); err != nil {
		t.Fatal(err)
	}
	if err := unit.Promos().Redeem(ctx, "p1", "r3"); !errors.Is(err, domainpromo.ErrUsageLimitReached) {
		t.Fatalf("ceiling err = %v", err)
	}
	got, _ := unit.Promos().FindByCode(ctx, "ete25")
	if got.UsedCount != 2 {
		t.Fatalf("used = %d", got.UsedCount)
	}
	_ = unit.Commit(ctx)
}

func TestConcurrentRedeemNeverExceedsLimit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	limit := 5
	code, _ := domainpromo.New(domainpromo.CreateParams{ID: "p1", Code: "RUSH", DiscountType: domainpromo.DiscountFixed, DiscountValue: decimal.NewFromInt(1000), MaxUses: &limit})
	unit := begin(t, s, false)
	_ = unit.Promos().Create(ctx, code)
	_ = unit.Commit(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := s.Begin(ctx, uow.TxOptions{})
			if err != nil {
				return
			}
			_ = u.Promos().Redeem(ctx, "p1", time.Duration(i).String())
			_ = u.Commit(ctx)
		}(i)
	}
	wg.Wait()
	read := begin(t, s, true)
	defer read.Rollback(ctx)
	got, _ := read.Promos().ByID(ctx, "p1")
	if got.UsedCount != limit {
		t.Fatalf("used = %d, want %d", got.UsedCount, limit)
	}
}

func TestOutboxRollbackAndRelay(t *testing.T) {
	s := NewStore()
	box := NewOutbox(s)
	unit := begin(t, s, false)
	ctx := uow.Attach(context.Background(), unit)
	_ = box.Add(ctx, appoutbox.EventRecord{ID: "e1", Name: "reservation.requested"})
	_ = unit.Rollback(ctx)
	if n := len(box.Records()); n != 0 {
		t.Fatalf("records after rollback = %d", n)
	}

	_ = box.Add(context.Background(), appoutbox.EventRecord{ID: "e2", Name: "reservation.requested"})
	rec, err := box.Claim(context.Background(), "w1")
	if err != nil || rec == nil || rec.ID != "e2" {
		t.Fatalf("claim = %+v, %v", rec, err)
	}
	if again, _ := box.Claim(context.Background(), "w2"); again != nil {
		t.Fatalf("claimed twice: %+v", again)
	}
	_ = box.MarkFailed(context.Background(), "e2", time.Now().Add(-time.Second), "broker down")
	retry, _ := box.Claim(context.Background(), "w1")
	if retry == nil || retry.Attempts != 1 {
		t.Fatalf("retry = %+v", retry)
	}
	_ = box.MarkSent(context.Background(), "e2")
	if st := box.Records()[0].State; st != stateSent {
		t.Fatalf("state = %s", st)
	}
}
