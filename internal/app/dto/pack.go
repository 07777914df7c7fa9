package dto

import (
	"time"

	domainpack "signature/internal/domain/pack"
)

type Pack struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	PackType         string   `json:"pack_type"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description,omitempty"`
	AccommodationIDs []string `json:"accommodation_ids"`
	Featured         bool     `json:"featured"`
	Status           string   `json:"status"`
}

type PackCollection struct {
	Items []Pack `json:"items"`
}

type PackRequest struct {
	ID        string     `json:"id"`
	PackName  string     `json:"pack_name"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	EventDate *time.Time `json:"event_date"`
	Guests    *int       `json:"guests"`
	Message   string     `json:"message,omitempty"`
	PromoCode string     `json:"promo_code,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

type PackRequestCollection struct {
	Items []PackRequest `json:"items"`
}

func MapPack(p *domainpack.Pack) Pack {
	ids := make([]string, 0, len(p.AccommodationIDs))
	for _, id := range p.AccommodationIDs {
		ids = append(ids, string(id))
	}
	return Pack{
		ID:               string(p.ID),
		Name:             p.Name,
		Slug:             p.Slug,
		PackType:         p.PackType,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		AccommodationIDs: ids,
		Featured:         p.Featured,
		Status:           string(p.Status),
	}
}

func MapPacks(items []*domainpack.Pack) PackCollection {
	out := PackCollection{Items: make([]Pack, 0, len(items))}
	for _, p := range items {
		out.Items = append(out.Items, MapPack(p))
	}
	return out
}

func MapPackRequest(r *domainpack.Request) PackRequest {
	return PackRequest{
		ID:        string(r.ID),
		PackName:  r.PackName,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		EventDate: r.EventDate,
		Guests:    r.Guests,
		Message:   r.Message,
		PromoCode: r.PromoCode,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

func MapPackRequests(items []*domainpack.Request) PackRequestCollection {
	out := PackRequestCollection{Items: make([]PackRequest, 0, len(items))}
	for _, r := range items {
		out.Items = append(out.Items, MapPackRequest(r))
	}
	return out
}
