package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainpack "signature/internal/domain/pack"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
	"signature/internal/domain/shared/events"
)

type AccommodationRepository struct {
	store *Store
	unit  *Unit
}

func (r *AccommodationRepository) ByID(_ context.Context, id domainaccommodation.ID) (*domainaccommodation.Accommodation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	acc, ok := r.store.accommodations[id]
	if !ok {
		return nil, domainaccommodation.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (r *AccommodationRepository) BySlug(_ context.Context, slug string) (*domainaccommodation.Accommodation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, acc := range r.store.accommodations {
		if acc.Slug == slug {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, domainaccommodation.ErrNotFound
}

func (r *AccommodationRepository) List(_ context.Context, f domainaccommodation.Filter) ([]*domainaccommodation.Accommodation, error) {
	r.store.mu.RLock()
	out := make([]*domainaccommodation.Accommodation, 0, len(r.store.accommodations))
	for _, acc := range r.store.accommodations {
		if f.Status != "" && acc.Status != f.Status {
			continue
		}
		cp := *acc
		out = append(out, &cp)
	}
	r.store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Featured != out[j].Featured {
			return out[i].Featured
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *AccommodationRepository) Save(_ context.Context, acc *domainaccommodation.Accommodation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.unit.writable(); err != nil {
		return err
	}
	prev, existed := r.store.accommodations[acc.ID]
	cp := *acc
	r.store.accommodations[acc.ID] = &cp
	r.unit.onRollback(func() {
		if existed {
			r.store.accommodations[acc.ID] = prev
			return
		}
		delete(r.store.accommodations, acc.ID)
	})
	return nil
}

// Lock only checks existence: write units are already serialized.
func (r *AccommodationRepository) Lock(_ context.Context, id domainaccommodation.ID) error {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if _, ok := r.store.accommodations[id]; !ok {
		return domainaccommodation.ErrNotFound
	}
	return nil
}

type AvailabilityRepository struct {
	store *Store
	unit  *Unit
}

func (r *AvailabilityRepository) ListBlockedDates(_ context.Context, id domainaccommodation.ID, from, to time.Time) ([]time.Time, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	from = daterange.Day(from)
	if !to.IsZero() {
		to = daterange.Day(to)
	}
	out := make([]time.Time, 0)
	for day := range r.store.blocked[id] {
		if day.Before(from) || (!to.IsZero() && !day.Before(to)) {
			continue
		}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (r *AvailabilityRepository) SetAvailability(_ context.Context, id domainaccommodation.ID, days []domainavailability.DayStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.unit.writable(); err != nil {
		return err
	}
	set, ok := r.store.blocked[id]
	if !ok {
		set = make(map[time.Time]struct{})
		r.store.blocked[id] = set
	}
	for _, d := range days {
		day := daterange.Day(d.Date)
		_, wasBlocked := set[day]
		if d.Available {
			delete(set, day)
		} else {
			set[day] = struct{}{}
		}
		r.unit.onRollback(func() {
			if wasBlocked {
				set[day] = struct{}{}
				return
			}
			delete(set, day)
		})
	}
	return nil
}

type ReservationRepository struct {
	store *Store
	unit  *Unit
}

func (r *ReservationRepository) ByID(_ context.Context, id domainreservation.ID) (*domainreservation.Reservation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	res, ok := r.store.reservations[id]
	if !ok {
		return nil, domainreservation.ErrNotFound
	}
	return res.Clone(), nil
}

func (r *ReservationRepository) Create(_ context.Context, res *domainreservation.Reservation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.unit.writable(); err != nil {
		return err
	}
	if _, exists := r.store.reservations[res.ID]; exists {
		return fmt.Errorf("memory: reservation %s already exists", res.ID)
	}
	res.Version = 1
	r.store.reservations[res.ID] = res.Clone()
	r.unit.onRollback(func() { delete(r.store.reservations, res.ID) })
	return nil
}

func (r *ReservationRepository) Save(_ context.Context, res *domainreservation.Reservation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.unit.writable(); err != nil {
		return err
	}
	prev, ok := r.store.reservations[res.ID]
	if !ok {
		return domainreservation.ErrNotFound
	}
	if prev.Version != res.Version {
		return domainreservation.ErrConcurrentUpdate
	}
	res.Version++
	r.store.reservations[res.ID] = res.Clone()
	r.unit.onRollback(func() { r.store.reservations[res.ID] = prev })
	return nil
}

func (r *ReservationRepository) ListConfirmedOverlapping(_ context.Context, id domainaccommodation.ID, rng daterange.DateRange) ([]*domainreservation.Reservation, error) {
	return r.collect(func(res *domainreservation.Reservation) bool {
		return res.AccommodationID == id && res.Status == domainreservation.StatusConfirmed && res.Range.Overlaps(rng)
	}, 0), nil
}

func (r *ReservationRepository) ListConfirmedEndingAfter(_ context.Context, id domainaccommodation.ID, from time.Time) ([]*domainreservation.Reservation, error) {
	from = daterange.Day(from)
	return r.collect(func(res *domainreservation.Reservation) bool {
		return res.AccommodationID == id && res.Status == domainreservation.StatusConfirmed && !res.Range.CheckOut.Before(from)
	}, 0), nil
}

func (r *ReservationRepository) List(_ context.Context, f domainreservation.Filter) ([]*domainreservation.Reservation, error) {
	return r.collect(func(res *domainreservation.Reservation) bool {
		if f.Status != "" && res.Status != f.Status {
			return false
		}
		if f.PaymentStatus != "" && res.PaymentStatus != f.PaymentStatus {
			return false
		}
		if f.AccommodationID != "" && res.AccommodationID != f.AccommodationID {
			return false
		}
		return true
	}, f.Limit), nil
}

// collect returns matching clones, newest first.
func (r *ReservationRepository) collect(match func(*domainreservation.Reservation) bool, limit int) []*domainreservation.Reservation {
	r.store.mu.RLock()
	out := make([]*domainreservation.Reservation, 0)
	for _, res := range r.store.reservations {
		if match(res) {
			out = append(out, res.Clone())
		}
	}
	r.store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type PromoRepository struct {
	store *Store
	unit  *Unit
}

func (r *PromoRepository) FindByCode(_ context.Context, code string) (*domainpromo.PromoCode, error) {
	code = domainpromo.Normalize(code)
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, p := range r.store.promos {
		if p.Code == code {
			return p.Clone(), nil
		}
	}
	return nil, domainpromo.ErrNotFound
}

func (r *PromoRepository) ByID(_ context.Context, id domainpromo.ID) (*domainpromo.PromoCode, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.promos[id]
	if !ok {
		return nil, domainpromo.ErrNotFound
	}
	return p.Clone(), nil
}

// Redeem applies the redemption under the store lock, which makes the
// check-and-increment atomic.
func (r *PromoRepository) Redeem(_ context.Context, id domainpromo.ID, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.unit.writable(); err != nil {
		return err
	}
	p, ok := r.store.promos[id]
	if !ok {
		return domainpromo.ErrNotFound
	}
	next := p.Clone()
	if err := next.ApplyRedemption(token); err != nil {
		return err
	}
	r.store.promos[id] = next
	r.unit.onRollback(func() { r.store.promos[id] = p })
	return nil
}

func (r *PromoRepository) Create(_ context.Context, code *domainpromo.PromoCode) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.unit.writable(); err != nil {
		return err
	}
	for _, p := range r.store.promos {
		if p.Code == code.Code {
			return domainpromo.ErrDuplicateCode
		}
	}
	r.store.promos[code.ID] = code.Clone()
	r.unit.onRollback(func() { delete(r.store.promos, code.ID) })
	return nil
}

func (r *PromoRepository) SetActive(_ context.Context, id domainpromo.ID, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.unit.writable(); err != nil {
		return err
	}
	p, ok := r.store.promos[id]
	if !ok {
		return domainpromo.ErrNotFound
	}
	next := p.Clone()
	next.Active = active
	r.store.promos[id] = next
	r.unit.onRollback(func() { r.store.promos[id] = p })
	return nil
}

func (r *PromoRepository) Delete(_ context.Context, id domainpromo.ID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.unit.writable(); err != nil {
		return err
	}
	p, ok := r.store.promos[id]
	if !ok {
		return domainpromo.ErrNotFound
	}
	delete(r.store.promos, id)
	r.unit.onRollback(func() { r.store.promos[id] = p })
	return nil
}

func (r *PromoRepository) List(context.Context) ([]*domainpromo.PromoCode, error) {
	r.store.mu.RLock()
	out := make([]*domainpromo.PromoCode, 0, len(r.store.promos))
	for _, p := range r.store.promos {
		out = append(out, p.Clone())
	}
	r.store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type PackRepository struct {
	store *Store
	unit  *Unit
}

func (r *PackRepository) Save(_ context.Context, p *domainpack.Pack) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.unit.writable(); err != nil {
		return err
	}
	prev, existed := r.store.packs[p.ID]
	cp := *p
	cp.AccommodationIDs = append([]domainaccommodation.ID(nil), p.AccommodationIDs...)
	if existed {
		cp.CreatedAt = prev.CreatedAt
	}
	r.store.packs[p.ID] = &cp
	r.unit.onRollback(func() {
		if existed {
			r.store.packs[p.ID] = prev
			return
		}
		delete(r.store.packs, p.ID)
	})
	return nil
}

// ListActive returns active packs, featured ones first.
func (r *PackRepository) ListActive(context.Context) ([]*domainpack.Pack, error) {
	r.store.mu.RLock()
	out := make([]*domainpack.Pack, 0)
	for _, p := range r.store.packs {
		if p.Status == domainpack.StatusActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	r.store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Featured != out[j].Featured {
			return out[i].Featured
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *PackRepository) SaveRequest(_ context.Context, req *domainpack.Request) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.unit.writable(); err != nil {
		return err
	}
	prev, existed := r.store.requests[req.ID]
	r.store.requests[req.ID] = cloneRequest(req)
	r.unit.onRollback(func() {
		if existed {
			r.store.requests[req.ID] = prev
			return
		}
		delete(r.store.requests, req.ID)
	})
	return nil
}

func (r *PackRepository) RequestByID(_ context.Context, id domainpack.RequestID) (*domainpack.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	req, ok := r.store.requests[id]
	if !ok {
		return nil, domainpack.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (r *PackRepository) ListRequests(_ context.Context, status domainpack.RequestStatus) ([]*domainpack.Request, error) {
	r.store.mu.RLock()
	out := make([]*domainpack.Request, 0)
	for _, req := range r.store.requests {
		if status == "" || req.Status == status {
			out = append(out, cloneRequest(req))
		}
	}
	r.store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func cloneRequest(req *domainpack.Request) *domainpack.Request {
	cp := *req
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}

var (
	_ domainaccommodation.Repository = (*AccommodationRepository)(nil)
	_ domainavailability.Repository  = (*AvailabilityRepository)(nil)
	_ domainreservation.Repository   = (*ReservationRepository)(nil)
	_ domainpromo.Repository         = (*PromoRepository)(nil)
	_ domainpack.Repository          = (*PackRepository)(nil)
)
