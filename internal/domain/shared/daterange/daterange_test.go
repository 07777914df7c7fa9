package daterange

import (
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestCountNightsAndEnumerate(t *testing.T) {
	cases := []struct {
		name     string
		in, out  string
		nights   int
		expected []string
	}{
		{name: "three nights", in: "2025-07-01", out: "2025-07-04", nights: 3, expected: []string{"2025-07-01", "2025-07-02", "2025-07-03"}},
		{name: "month boundary", in: "2025-01-30", out: "2025-02-02", nights: 3, expected: []string{"2025-01-30", "2025-01-31", "2025-02-01"}},
		{name: "same day", in: "2025-07-01", out: "2025-07-01", nights: 0},
		{name: "reversed", in: "2025-07-04", out: "2025-07-01", nights: -3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, out := mustDate(t, tc.in), mustDate(t, tc.out)
			if got := CountNights(in, out); got != tc.nights {
				t.Fatalf("nights = %d, want %d", got, tc.nights)
			}
			dates := EnumerateDates(in, out)
			if len(dates) != len(tc.expected) {
				t.Fatalf("enumerated %d dates, want %d", len(dates), len(tc.expected))
			}
			for i, d := range dates {
				if FormatDate(d) != tc.expected[i] {
					t.Fatalf("date[%d] = %s, want %s", i, FormatDate(d), tc.expected[i])
				}
				if d.Equal(out) {
					t.Fatalf("checkout date must be excluded")
				}
			}
		})
	}
}

func TestCountNightsIgnoresTimeOfDay(t *testing.T) {
	in := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	out := time.Date(2025, 6, 2, 0, 15, 0, 0, time.UTC)
	if got := CountNights(in, out); got != 1 {
		t.Fatalf("nights = %d, want 1", got)
	}
}

func TestNewRejectsRangesWithoutNights(t *testing.T) {
	day := mustDate(t, "2025-06-01")
	if _, err := New(day, day); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := New(day.AddDate(0, 0, 2), day); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for reversed range, got %v", err)
	}
	if _, err := Parse("2025-13-01", "2025-06-02"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	existing, err := Parse("2025-06-01", "2025-06-05")
	if err != nil {
		t.Fatal(err)
	}
	adjacent, _ := Parse("2025-06-05", "2025-06-08")
	overlapping, _ := Parse("2025-06-04", "2025-06-06")
	before, _ := Parse("2025-05-28", "2025-06-01")

	if existing.Overlaps(adjacent) || adjacent.Overlaps(existing) {
		t.Fatalf("adjacent ranges must not overlap")
	}
	if !existing.Overlaps(overlapping) || !overlapping.Overlaps(existing) {
		t.Fatalf("ranges sharing 06-04 must overlap")
	}
	if existing.Overlaps(before) {
		t.Fatalf("range ending on check-in day must not overlap")
	}
	if !existing.Adjacent(adjacent) {
		t.Fatalf("expected adjacency")
	}
	if !existing.ContainsDate(mustDate(t, "2025-06-04")) || existing.ContainsDate(mustDate(t, "2025-06-05")) {
		t.Fatalf("ContainsDate must follow half-open semantics")
	}
}
