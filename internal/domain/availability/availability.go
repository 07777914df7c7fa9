package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"signature/internal/domain/accommodation"
	"signature/internal/domain/shared/daterange"
)

var ErrDatesUnavailable = errors.New("availability: requested dates are not available")

// DayStatus is one entry of an admin availability update. Available=false
// blocks the day, Available=true lifts an existing block.
type DayStatus struct {
	Date      time.Time
	Available bool
}

type Repository interface {
	// ListBlockedDates returns the manually blocked days within [from, to).
	// A zero to means no upper bound.
	ListBlockedDates(ctx context.Context, id accommodation.ID, from, to time.Time) ([]time.Time, error)
	SetAvailability(ctx context.Context, id accommodation.ID, days []DayStatus) error
}

// Conflict describes why a range cannot be booked.
type Conflict struct {
	BlockedDate  *time.Time
	Reservations []daterange.DateRange
}

type Result struct {
	Available bool
	Conflict  Conflict
}

// Check reports whether requested is free given the manual blocks and the
// confirmed stays of the same accommodation. Pending stays are never passed in.
func Check(requested daterange.DateRange, blocked []time.Time, confirmed []daterange.DateRange) Result {
	blockedSet := make(map[time.Time]struct{}, len(blocked))
	for _, d := range blocked {
		blockedSet[daterange.Day(d)] = struct{}{}
	}
	var res Result
	for _, d := range requested.Dates() {
		if _, ok := blockedSet[d]; ok {
			day := d
			res.Conflict.BlockedDate = &day
			break
		}
	}
	for _, r := range confirmed {
		if requested.Overlaps(r) {
			res.Conflict.Reservations = append(res.Conflict.Reservations, r)
		}
	}
	res.Available = res.Conflict.BlockedDate == nil && len(res.Conflict.Reservations) == 0
	return res
}

// UnavailableDates merges blocked days and nights held by confirmed stays into a
// sorted, de-duplicated list starting at from.
func UnavailableDates(from time.Time, blocked []time.Time, confirmed []daterange.DateRange) []time.Time {
	from = daterange.Day(from)
	seen := make(map[time.Time]struct{})
	add := func(d time.Time) {
		d = daterange.Day(d)
		if d.Before(from) {
			return
		}
		seen[d] = struct{}{}
	}
	for _, d := range blocked {
		add(d)
	}
	for _, r := range confirmed {
		if r.CheckOut.Before(from) {
			continue
		}
		for _, d := range r.Dates() {
			add(d)
		}
	}
	out := make([]time.Time, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
