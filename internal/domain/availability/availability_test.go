package availability

import (
	"testing"
	"time"

	"signature/internal/domain/shared/daterange"
)

func rng(t *testing.T, in, out string) daterange.DateRange {
	t.Helper()
	r, err := daterange.Parse(in, out)
	if err != nil {
		t.Fatalf("range %s..%s: %v", in, out, err)
	}
	return r
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := daterange.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestCheckAdjacencyAndOverlap(t *testing.T) {
	confirmed := []daterange.DateRange{rng(t, "2025-06-01", "2025-06-05")}

	if res := Check(rng(t, "2025-06-05", "2025-06-08"), nil, confirmed); !res.Available {
		t.Fatalf("stay starting on another's checkout day must be available: %+v", res)
	}
	res := Check(rng(t, "2025-06-04", "2025-06-06"), nil, confirmed)
	if res.Available {
		t.Fatalf("overlapping stay must be unavailable")
	}
	if len(res.Conflict.Reservations) != 1 {
		t.Fatalf("expected one conflicting reservation, got %d", len(res.Conflict.Reservations))
	}
}

func TestCheckBlockedDates(t *testing.T) {
	blocked := []time.Time{date(t, "2025-06-10")}

	res := Check(rng(t, "2025-06-09", "2025-06-12"), blocked, nil)
	if res.Available || res.Conflict.BlockedDate == nil || !res.Conflict.BlockedDate.Equal(blocked[0]) {
		t.Fatalf("expected blocked conflict on 06-10, got %+v", res)
	}
	// A block on the checkout day does not prevent the stay.
	if res := Check(rng(t, "2025-06-08", "2025-06-10"), blocked, nil); !res.Available {
		t.Fatalf("checkout on a blocked day must be available")
	}
}

func TestUnavailableDatesUnion(t *testing.T) {
	from := date(t, "2025-06-03")
	blocked := []time.Time{date(t, "2025-06-01"), date(t, "2025-06-04"), date(t, "2025-06-10")}
	confirmed := []daterange.DateRange{
		rng(t, "2025-06-02", "2025-06-05"),
		rng(t, "2025-05-01", "2025-05-03"),
	}
	got := UnavailableDates(from, blocked, confirmed)
	want := []string{"2025-06-03", "2025-06-04", "2025-06-10"}
	if len(got) != len(want) {
		t.Fatalf("got %d dates, want %d: %v", len(got), len(want), got)
	}
	for i, d := range got {
		if daterange.FormatDate(d) != want[i] {
			t.Fatalf("date[%d] = %s, want %s", i, daterange.FormatDate(d), want[i])
		}
	}
}
