package reservations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signature/internal/app/outbox"
	"signature/internal/app/policies"
	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
	"signature/internal/infra/storage/memory"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	reservations chan policies.ReservationNotice
}

func (n recordingNotifier) ReservationRequested(_ context.Context, notice policies.ReservationNotice) error {
	n.reservations <- notice
	return nil
}

func (recordingNotifier) PackRequested(context.Context, policies.PackRequestNotice) error { return nil }

type fixture struct {
	store    *memory.Store
	box      *memory.Outbox
	create   *CreateReservationHandler
	status   *StatusHandler
	notifier recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	box := memory.NewOutbox(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := recordingNotifier{reservations: make(chan policies.ReservationNotice, 4)}
	now := func() time.Time { return fixedNow }

	ctx := context.Background()
	unit, err := store.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatal(err)
	}
	one := 1
	seed := []error{
		unit.Accommodations().Save(ctx, &domainaccommodation.Accommodation{
			ID:             "villa-1",
			Name:           "Villa Kribi",
			Slug:           "villa-kribi",
			PricePerNight:  decimal.NewFromInt(100000),
			CommissionRate: decimal.NewFromInt(10),
			Capacity:       4,
			Status:         domainaccommodation.StatusActive,
		}),
		unit.Promos().Create(ctx, &domainpromo.PromoCode{ID: "p-ten", Code: "TEN", DiscountType: domainpromo.DiscountPercent, DiscountValue: decimal.NewFromInt(10), Active: true}),
		unit.Promos().Create(ctx, &domainpromo.PromoCode{ID: "p-used", Code: "USED", DiscountType: domainpromo.DiscountFixed, DiscountValue: decimal.NewFromInt(5000), Active: true, MaxUses: &one, UsedCount: 1}),
	}
	for _, err := range seed {
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	return &fixture{
		store:    store,
		box:      box,
		notifier: notifier,
		create: &CreateReservationHandler{
			UoWFactory: store,
			Outbox:     box,
			Encoder:    outbox.JSONEventEncoder{},
			Notifier:   notifier,
			Logger:     logger,
			Now:        now,
			Currency:   "XAF",
		},
		status: &StatusHandler{UoWFactory: store, Outbox: box, Encoder: outbox.JSONEventEncoder{}, Logger: logger, Now: now},
	}
}

func day(s string) time.Time {
	d, err := daterange.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func command(in, out string) CreateReservationCommand {
	return CreateReservationCommand{
		AccommodationID: "villa-1",
		FirstName:       "Awa",
		LastName:        "Ngono",
		Email:           "awa@example.com",
		Phone:           "+237600000000",
		CheckIn:         day(in),
		CheckOut:        day(out),
		Guests:          2,
		PaymentMethod:   string(domainreservation.PaymentCash),
	}
}

func (f *fixture) promo(t *testing.T, code string) *domainpromo.PromoCode {
	t.Helper()
	ctx := context.Background()
	unit, err := f.store.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	defer unit.Rollback(ctx)
	p, err := unit.Promos().FindByCode(ctx, code)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCreateRecordsEventAndNotifies(t *testing.T) {
	f := newFixture(t)
	res, err := f.create.Handle(context.Background(), command("2025-07-01", "2025-07-04"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Reservation.TotalPrice != 300000 || res.Reservation.CommissionAmount != 30000 {
		t.Fatalf("price = %+v", res.Reservation)
	}

	records := f.box.Records()
	if len(records) != 1 || records[0].Name != "reservation.requested" || records[0].Aggregate != res.ReservationID {
		t.Fatalf("outbox = %+v", records)
	}

	select {
	case notice := <-f.notifier.reservations:
		if notice.ReservationID != res.ReservationID || notice.AccommodationName != "Villa Kribi" || notice.Nights != 3 {
			t.Fatalf("notice = %+v", notice)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification not sent")
	}
}

func TestCreateIgnoresExhaustedPromo(t *testing.T) {
	f := newFixture(t)
	cmd := command("2025-07-01", "2025-07-03")
	cmd.PromoCode = "used"
	res, err := f.create.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reservation.PromoCode != nil || res.Reservation.DiscountAmount != nil || res.Reservation.TotalPrice != 200000 {
		t.Fatalf("reservation = %+v", res.Reservation)
	}
	if res.PromoRejected != string(domainpromo.ReasonLimitReached) {
		t.Fatalf("rejected = %q", res.PromoRejected)
	}
	if p := f.promo(t, "USED"); p.UsedCount != 1 {
		t.Fatalf("used count = %d", p.UsedCount)
	}
}

func TestCreateRedeemsPromoOnce(t *testing.T) {
	f := newFixture(t)
	cmd := command("2025-07-01", "2025-07-03")
	cmd.PromoCode = "ten"
	res, err := f.create.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	if d := res.Reservation.DiscountAmount; d == nil || *d != 20000 || res.Reservation.TotalPrice != 180000 {
		t.Fatalf("discount %v total %d", d, res.Reservation.TotalPrice)
	}
	p := f.promo(t, "TEN")
	if p.UsedCount != 1 || len(p.Redemptions) != 1 || p.Redemptions[0] != res.ReservationID {
		t.Fatalf("promo = %+v", p)
	}
}

// contendedUnit hands out a promo repository that loses every redemption
// to another guest taking the last use first.
type contendedUnit struct {
	uow.UnitOfWork
}

func (u contendedUnit) Promos() domainpromo.Repository {
	return contendedPromos{u.UnitOfWork.Promos()}
}

type contendedPromos struct {
	domainpromo.Repository
}

func (p contendedPromos) Redeem(ctx context.Context, id domainpromo.ID, token string) error {
	if err := p.Repository.Redeem(ctx, id, "concurrent-guest"); err != nil && !errors.Is(err, domainpromo.ErrUsageLimitReached) {
		return err
	}
	return p.Repository.Redeem(ctx, id, token)
}

type contendedFactory struct {
	store *memory.Store
}

func (f contendedFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.store.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return contendedUnit{unit}, nil
}

func TestCreateDropsDiscountWhenRedemptionIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unit, err := f.store.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatal(err)
	}
	one := 1
	if err := unit.Promos().Create(ctx, &domainpromo.PromoCode{ID: "p-last", Code: "LAST", DiscountType: domainpromo.DiscountPercent, DiscountValue: decimal.NewFromInt(10), Active: true, MaxUses: &one}); err != nil {
		t.Fatal(err)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	f.create.UoWFactory = contendedFactory{store: f.store}
	cmd := command("2025-07-01", "2025-07-04")
	cmd.PromoCode = "last"
	res, err := f.create.Handle(ctx, cmd)
	if err != nil {
		t.Fatal(err)
	}
	if res.PromoRejected != string(domainpromo.ReasonLimitReached) {
		t.Fatalf("promo rejected = %q", res.PromoRejected)
	}
	r := res.Reservation
	if r.PromoCode != nil || r.DiscountAmount != nil || r.TotalPrice != 300000 {
		t.Fatalf("reservation kept the discount: promo %v discount %v total %d", r.PromoCode, r.DiscountAmount, r.TotalPrice)
	}
	p := f.promo(t, "LAST")
	if p.UsedCount != 1 || len(p.Redemptions) != 1 || p.Redemptions[0] != "concurrent-guest" {
		t.Fatalf("promo = %+v", p)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	cases := map[string]struct {
		mutate func(*CreateReservationCommand)
		want   error
	}{
		"reversed dates":  {func(c *CreateReservationCommand) { c.CheckIn, c.CheckOut = c.CheckOut, c.CheckIn }, domainreservation.ErrInvalidDates},
		"too many guests": {func(c *CreateReservationCommand) { c.Guests = 9 }, domainreservation.ErrCapacityExceeded},
		"unknown stay":    {func(c *CreateReservationCommand) { c.AccommodationID = "nope" }, domainaccommodation.ErrNotFound},
		"bad email":       {func(c *CreateReservationCommand) { c.Email = "awa" }, domainreservation.ErrInvalidContact},
		"bad payment":     {func(c *CreateReservationCommand) { c.PaymentMethod = "card" }, domainreservation.ErrInvalidPaymentMethod},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cmd := command("2025-07-01", "2025-07-03")
			tc.mutate(&cmd)
			if _, err := f.create.Handle(context.Background(), cmd); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestConcurrentConfirmationsAdmitOneStay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.create.Handle(ctx, command("2025-07-01", "2025-07-04"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.create.Handle(ctx, command("2025-07-02", "2025-07-05"))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{a.ReservationID, b.ReservationID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.status.Confirm(ctx, ConfirmReservationCommand{ReservationID: id})
		}(i, id)
	}
	wg.Wait()

	ok, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domainavailability.ErrDatesUnavailable):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("ok=%d conflicts=%d", ok, conflicts)
	}
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.create.Handle(ctx, command("2025-08-01", "2025-08-03"))
	if err != nil {
		t.Fatal(err)
	}
	id := res.ReservationID

	out, err := f.status.Cancel(ctx, CancelReservationCommand{ReservationID: id, Reason: "guest request"})
	if err != nil {
		t.Fatal(err)
	}
	if out.ReservationStatus != string(domainreservation.StatusCancelled) || out.CancellationReason != "guest request" {
		t.Fatalf("cancelled = %+v", out)
	}
	if _, err := f.status.Confirm(ctx, ConfirmReservationCommand{ReservationID: id}); !errors.Is(err, domainreservation.ErrInvalidTransition) {
		t.Fatalf("confirm after cancel err = %v", err)
	}
	if _, err := f.status.UpdatePayment(ctx, UpdatePaymentStatusCommand{ReservationID: id, Status: "paid"}); !errors.Is(err, domainreservation.ErrPaymentRequiresConfirmation) {
		t.Fatalf("pay cancelled err = %v", err)
	}
	if _, err := f.status.Confirm(ctx, ConfirmReservationCommand{ReservationID: "missing"}); !errors.Is(err, domainreservation.ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}

	names := []string{}
	for _, rec := range f.box.Records() {
		names = append(names, rec.Name)
	}
	if len(names) != 2 || names[1] != "reservation.cancelled" {
		t.Fatalf("events = %v", names)
	}
}
