package dto

import (
	"time"

	domainaccommodation "signature/internal/domain/accommodation"
)

type Accommodation struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Type          string `json:"type"`
	Location      string `json:"location"`
	PricePerNight int64  `json:"price_per_night"`
	Capacity      int    `json:"capacity"`
	Featured      bool   `json:"featured"`
	Status        string `json:"status"`
	// CommissionRate is only filled for the back office.
	CommissionRate *string    `json:"commission_rate,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

type AccommodationCollection struct {
	Items []Accommodation `json:"items"`
}

func MapAccommodation(a *domainaccommodation.Accommodation, admin bool) Accommodation {
	out := Accommodation{
		ID:            string(a.ID),
		Name:          a.Name,
		Slug:          a.Slug,
		Type:          string(a.Type),
		Location:      a.Location,
		PricePerNight: a.PricePerNight.Round(0).IntPart(),
		Capacity:      a.Capacity,
		Featured:      a.Featured,
		Status:        string(a.Status),
	}
	if admin {
		rate := a.CommissionRate.String()
		created, updated := a.CreatedAt, a.UpdatedAt
		out.CommissionRate = &rate
		out.CreatedAt = &created
		out.UpdatedAt = &updated
	}
	return out
}

func MapAccommodations(items []*domainaccommodation.Accommodation, admin bool) AccommodationCollection {
	out := AccommodationCollection{Items: make([]Accommodation, 0, len(items))}
	for _, a := range items {
		out.Items = append(out.Items, MapAccommodation(a, admin))
	}
	return out
}
