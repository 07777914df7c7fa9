package daterange

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDate  = errors.New("daterange: invalid calendar date")
)

// DateRange represents a half-open interval [checkIn, checkOut) of calendar days.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New truncates both bounds to calendar days and rejects ranges without a night.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Parse builds a range from two "YYYY-MM-DD" strings.
func Parse(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return New(in, out)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if dr.Nights() <= 0 {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return CountNights(dr.CheckIn, dr.CheckOut)
}

// Dates lists every occupied night of the range.
func (dr DateRange) Dates() []time.Time {
	return EnumerateDates(dr.CheckIn, dr.CheckOut)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && dr.CheckOut.After(other.CheckIn)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

func (dr DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", FormatDate(dr.CheckIn), FormatDate(dr.CheckOut))
}

// CountNights returns the whole-day difference between two calendar dates.
// The result may be zero or negative; callers decide what that means.
func CountNights(checkIn, checkOut time.Time) int {
	return int(Day(checkOut).Sub(Day(checkIn)).Hours() / 24)
}

// EnumerateDates yields [checkIn, checkOut) day by day. The checkout day is
// excluded so a stay may start on the day another one ends.
func EnumerateDates(checkIn, checkOut time.Time) []time.Time {
	nights := CountNights(checkIn, checkOut)
	if nights <= 0 {
		return nil
	}
	start := Day(checkIn)
	out := make([]time.Time, 0, nights)
	for i := 0; i < nights; i++ {
		out = append(out, start.AddDate(0, 0, i))
	}
	return out
}

// Day drops the time-of-day component, keeping the calendar date as UTC midnight.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
