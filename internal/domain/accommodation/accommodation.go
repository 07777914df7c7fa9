package accommodation

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("accommodation: not found")
	ErrInvalidPrice    = errors.New("accommodation: price per night must be positive")
	ErrInvalidRate     = errors.New("accommodation: commission rate must be within 0..100")
	ErrInvalidCapacity = errors.New("accommodation: capacity must be positive")
)

type ID string

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Type string

const (
	TypeVilla     Type = "villa"
	TypeApartment Type = "appartement"
	TypeRoom      Type = "chambre"
)

type Accommodation struct {
	ID             ID
	Name           string
	Slug           string
	Type           Type
	Location       string
	PricePerNight  decimal.Decimal
	CommissionRate decimal.Decimal
	Capacity       int
	Status         Status
	Featured       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Filter narrows List. A zero Status lists every accommodation.
type Filter struct {
	Status Status
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Accommodation, error)
	BySlug(ctx context.Context, slug string) (*Accommodation, error)
	// List returns featured accommodations first, then by name.
	List(ctx context.Context, f Filter) ([]*Accommodation, error)
	Save(ctx context.Context, a *Accommodation) error
	// Lock serializes writers on one accommodation until the surrounding unit
	// of work ends. Used before confirming a stay.
	Lock(ctx context.Context, id ID) error
}

func (a *Accommodation) Bookable() bool {
	return a != nil && a.Status == StatusActive
}

func (a *Accommodation) Validate() error {
	if !a.PricePerNight.IsPositive() {
		return ErrInvalidPrice
	}
	if a.CommissionRate.IsNegative() || a.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidRate
	}
	if a.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

var accents = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a", "é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i", "ô", "o", "ö", "o", "ù", "u", "û", "u", "ü", "u", "ç", "c",
)

// Slugify lower-cases a name, folds common French accents and joins words with dashes.
func Slugify(name string) string {
	s := accents.Replace(strings.ToLower(strings.TrimSpace(name)))
	return strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
}
