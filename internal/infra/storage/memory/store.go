package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainpack "signature/internal/domain/pack"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
)

var (
	ErrReadOnly     = errors.New("memory: write in read-only unit")
	ErrUnitFinished = errors.New("memory: unit already finished")
)

// Store keeps every aggregate in process memory. Write units are serialized
// by writeMu and undo their changes on rollback.
type Store struct {
	mu      sync.RWMutex
	writeMu sync.Mutex

	accommodations map[domainaccommodation.ID]*domainaccommodation.Accommodation
	blocked        map[domainaccommodation.ID]map[time.Time]struct{}
	reservations   map[domainreservation.ID]*domainreservation.Reservation
	promos         map[domainpromo.ID]*domainpromo.PromoCode
	packs          map[domainpack.ID]*domainpack.Pack
	requests       map[domainpack.RequestID]*domainpack.Request
	outbox         []*outboxEntry
}

func NewStore() *Store {
	return &Store{
		accommodations: make(map[domainaccommodation.ID]*domainaccommodation.Accommodation),
		blocked:        make(map[domainaccommodation.ID]map[time.Time]struct{}),
		reservations:   make(map[domainreservation.ID]*domainreservation.Reservation),
		promos:         make(map[domainpromo.ID]*domainpromo.PromoCode),
		packs:          make(map[domainpack.ID]*domainpack.Pack),
		requests:       make(map[domainpack.RequestID]*domainpack.Request),
	}
}

// Begin implements uow.UoWFactory.
func (s *Store) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u := &Unit{store: s, readOnly: opts.ReadOnly}
	if !opts.ReadOnly {
		s.writeMu.Lock()
	}
	return u, nil
}

type Unit struct {
	store    *Store
	readOnly bool

	mu       sync.Mutex
	undo     []func()
	finished bool
}

func (u *Unit) Accommodations() domainaccommodation.Repository {
	return &AccommodationRepository{store: u.store, unit: u}
}

func (u *Unit) Availability() domainavailability.Repository {
	return &AvailabilityRepository{store: u.store, unit: u}
}

func (u *Unit) Reservations() domainreservation.Repository {
	return &ReservationRepository{store: u.store, unit: u}
}

func (u *Unit) Promos() domainpromo.Repository {
	return &PromoRepository{store: u.store, unit: u}
}

func (u *Unit) Packs() domainpack.Repository {
	return &PackRepository{store: u.store, unit: u}
}

func (u *Unit) Commit(context.Context) error {
	return u.finish(false)
}

func (u *Unit) Rollback(context.Context) error {
	return u.finish(true)
}

func (u *Unit) finish(revert bool) error {
	u.mu.Lock()
	if u.finished {
		u.mu.Unlock()
		if revert {
			return nil
		}
		return ErrUnitFinished
	}
	u.finished = true
	undo := u.undo
	u.undo = nil
	u.mu.Unlock()

	if revert && len(undo) > 0 {
		u.store.mu.Lock()
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		u.store.mu.Unlock()
	}
	if !u.readOnly {
		u.store.writeMu.Unlock()
	}
	return nil
}

// writable checks the unit accepts writes. Callers hold store.mu.
func (u *Unit) writable() error {
	if u == nil {
		return nil
	}
	if u.readOnly {
		return ErrReadOnly
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.finished {
		return ErrUnitFinished
	}
	return nil
}

// onRollback registers fn to run under store.mu if the unit rolls back.
func (u *Unit) onRollback(fn func()) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.undo = append(u.undo, fn)
	u.mu.Unlock()
}

// unitFrom returns the memory unit bound to ctx, if any.
func unitFrom(ctx context.Context) *Unit {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil
	}
	u, _ := unit.(*Unit)
	return u
}

var _ uow.UoWFactory = (*Store)(nil)
