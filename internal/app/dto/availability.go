package dto

import (
	"time"

	domainavailability "signature/internal/domain/availability"
	"signature/internal/domain/shared/daterange"
)

type AvailabilityConflict struct {
	BlockedDate  string      `json:"blocked_date,omitempty"`
	Reservations []DateRange `json:"reservations,omitempty"`
}

type DateRange struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type Availability struct {
	AccommodationID string                `json:"accommodation_id"`
	CheckIn         string                `json:"check_in"`
	CheckOut        string                `json:"check_out"`
	Nights          int                   `json:"nights"`
	Available       bool                  `json:"available"`
	Conflict        *AvailabilityConflict `json:"conflict,omitempty"`
}

type UnavailableDates struct {
	AccommodationID string   `json:"accommodation_id"`
	Dates           []string `json:"dates"`
}

func MapAvailability(accommodationID string, rng daterange.DateRange, res domainavailability.Result) Availability {
	out := Availability{
		AccommodationID: accommodationID,
		CheckIn:         daterange.FormatDate(rng.CheckIn),
		CheckOut:        daterange.FormatDate(rng.CheckOut),
		Nights:          rng.Nights(),
		Available:       res.Available,
	}
	if res.Available {
		return out
	}
	conflict := &AvailabilityConflict{}
	if res.Conflict.BlockedDate != nil {
		conflict.BlockedDate = daterange.FormatDate(*res.Conflict.BlockedDate)
	}
	for _, r := range res.Conflict.Reservations {
		conflict.Reservations = append(conflict.Reservations, DateRange{CheckIn: daterange.FormatDate(r.CheckIn), CheckOut: daterange.FormatDate(r.CheckOut)})
	}
	out.Conflict = conflict
	return out
}

func MapDates(accommodationID string, dates []time.Time) UnavailableDates {
	out := UnavailableDates{AccommodationID: accommodationID, Dates: make([]string, 0, len(dates))}
	for _, d := range dates {
		out.Dates = append(out.Dates, daterange.FormatDate(d))
	}
	return out
}
