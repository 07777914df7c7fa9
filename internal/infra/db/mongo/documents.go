package mongo

import (
	"time"

	"github.com/shopspring/decimal"

	domainaccommodation "signature/internal/domain/accommodation"
	domainpack "signature/internal/domain/pack"
	"signature/internal/domain/pricing"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
	"signature/internal/domain/shared/money"
)

// Decimals are stored as strings so no precision is lost.

type accommodationDocument struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Slug           string    `bson:"slug"`
	Type           string    `bson:"type"`
	Location       string    `bson:"location"`
	PricePerNight  string    `bson:"price_per_night"`
	CommissionRate string    `bson:"commission_rate"`
	Capacity       int       `bson:"capacity"`
	Status         string    `bson:"status"`
	Featured       bool      `bson:"featured"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func newAccommodationDocument(a *domainaccommodation.Accommodation) accommodationDocument {
	return accommodationDocument{
		ID:             string(a.ID),
		Name:           a.Name,
		Slug:           a.Slug,
		Type:           string(a.Type),
		Location:       a.Location,
		PricePerNight:  a.PricePerNight.String(),
		CommissionRate: a.CommissionRate.String(),
		Capacity:       a.Capacity,
		Status:         string(a.Status),
		Featured:       a.Featured,
		CreatedAt:      a.CreatedAt.UTC(),
		UpdatedAt:      a.UpdatedAt.UTC(),
	}
}

func (d accommodationDocument) toAggregate() (*domainaccommodation.Accommodation, error) {
	price, err := decimal.NewFromString(d.PricePerNight)
	if err != nil {
		return nil, err
	}
	rate, err := decimal.NewFromString(d.CommissionRate)
	if err != nil {
		return nil, err
	}
	return &domainaccommodation.Accommodation{
		ID:             domainaccommodation.ID(d.ID),
		Name:           d.Name,
		Slug:           d.Slug,
		Type:           domainaccommodation.Type(d.Type),
		Location:       d.Location,
		PricePerNight:  price,
		CommissionRate: rate,
		Capacity:       d.Capacity,
		Status:         domainaccommodation.Status(d.Status),
		Featured:       d.Featured,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}, nil
}

type reservationDocument struct {
	ID                 string     `bson:"_id"`
	AccommodationID    string     `bson:"accommodation_id"`
	UserID             string     `bson:"user_id,omitempty"`
	GuestFirstName     string     `bson:"guest_first_name"`
	GuestLastName      string     `bson:"guest_last_name"`
	GuestEmail         string     `bson:"guest_email"`
	GuestPhone         string     `bson:"guest_phone"`
	Guests             int        `bson:"guests"`
	CheckIn            time.Time  `bson:"check_in"`
	CheckOut           time.Time  `bson:"check_out"`
	Nights             int        `bson:"nights"`
	Currency           string     `bson:"currency"`
	PricePerNight      int64      `bson:"price_per_night"`
	Subtotal           int64      `bson:"subtotal"`
	CommissionRate     string     `bson:"commission_rate"`
	CommissionAmount   int64      `bson:"commission_amount"`
	DiscountAmount     int64      `bson:"discount_amount"`
	TotalPrice         int64      `bson:"total_price"`
	PromoCode          string     `bson:"promo_code,omitempty"`
	PaymentMethod      string     `bson:"payment_method"`
	Status             string     `bson:"status"`
	PaymentStatus      string     `bson:"payment_status"`
	PaymentReference   string     `bson:"payment_reference,omitempty"`
	ConfirmedAt        *time.Time `bson:"confirmed_at,omitempty"`
	CancelledAt        *time.Time `bson:"cancelled_at,omitempty"`
	PaidAt             *time.Time `bson:"paid_at,omitempty"`
	CancellationReason string     `bson:"cancellation_reason,omitempty"`
	Notes              string     `bson:"notes,omitempty"`
	AdminNotes         string     `bson:"admin_notes,omitempty"`
	CreatedAt          time.Time  `bson:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at"`
	Version            int64      `bson:"version"`
}

func newReservationDocument(r *domainreservation.Reservation) reservationDocument {
	return reservationDocument{
		ID:                 string(r.ID),
		AccommodationID:    string(r.AccommodationID),
		UserID:             r.UserID,
		GuestFirstName:     r.Guest.FirstName,
		GuestLastName:      r.Guest.LastName,
		GuestEmail:         r.Guest.Email,
		GuestPhone:         r.Guest.Phone,
		Guests:             r.Guests,
		CheckIn:            r.Range.CheckIn,
		CheckOut:           r.Range.CheckOut,
		Nights:             r.Price.Nights,
		Currency:           r.Price.Total.Currency,
		PricePerNight:      r.Price.PricePerNight.Amount,
		Subtotal:           r.Price.Subtotal.Amount,
		CommissionRate:     r.Price.CommissionRate.String(),
		CommissionAmount:   r.Price.CommissionAmount.Amount,
		DiscountAmount:     r.Price.Discount.Amount,
		TotalPrice:         r.Price.Total.Amount,
		PromoCode:          r.PromoCode,
		PaymentMethod:      string(r.PaymentMethod),
		Status:             string(r.Status),
		PaymentStatus:      string(r.PaymentStatus),
		PaymentReference:   r.PaymentReference,
		ConfirmedAt:        r.ConfirmedAt,
		CancelledAt:        r.CancelledAt,
		PaidAt:             r.PaidAt,
		CancellationReason: r.CancellationReason,
		Notes:              r.Notes,
		AdminNotes:         r.AdminNotes,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Version:            r.Version,
	}
}

func (d reservationDocument) toAggregate() (*domainreservation.Reservation, error) {
	rate, err := decimal.NewFromString(d.CommissionRate)
	if err != nil {
		return nil, err
	}
	cur := d.Currency
	amount := func(v int64) money.Money { return money.Money{Amount: v, Currency: cur} }
	return &domainreservation.Reservation{
		ID:              domainreservation.ID(d.ID),
		AccommodationID: domainaccommodation.ID(d.AccommodationID),
		UserID:          d.UserID,
		Guest: domainreservation.Guest{
			FirstName: d.GuestFirstName,
			LastName:  d.GuestLastName,
			Email:     d.GuestEmail,
			Phone:     d.GuestPhone,
		},
		Guests: d.Guests,
		Range:  daterange.DateRange{CheckIn: daterange.Day(d.CheckIn), CheckOut: daterange.Day(d.CheckOut)},
		Price: pricing.Breakdown{
			Nights:           d.Nights,
			PricePerNight:    amount(d.PricePerNight),
			CommissionRate:   rate,
			Subtotal:         amount(d.Subtotal),
			CommissionAmount: amount(d.CommissionAmount),
			Discount:         amount(d.DiscountAmount),
			Total:            amount(d.TotalPrice),
		},
		PromoCode:          d.PromoCode,
		PaymentMethod:      domainreservation.PaymentMethod(d.PaymentMethod),
		Status:             domainreservation.Status(d.Status),
		PaymentStatus:      domainreservation.PaymentStatus(d.PaymentStatus),
		PaymentReference:   d.PaymentReference,
		ConfirmedAt:        utcPtr(d.ConfirmedAt),
		CancelledAt:        utcPtr(d.CancelledAt),
		PaidAt:             utcPtr(d.PaidAt),
		CancellationReason: d.CancellationReason,
		Notes:              d.Notes,
		AdminNotes:         d.AdminNotes,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
		Version:            d.Version,
	}, nil
}

type promoDocument struct {
	ID            string     `bson:"_id"`
	Code          string     `bson:"code"`
	DiscountType  string     `bson:"discount_type"`
	DiscountValue string     `bson:"discount_value"`
	Active        bool       `bson:"active"`
	ExpiresAt     *time.Time `bson:"expires_at"`
	MaxUses       *int       `bson:"max_uses"`
	UsedCount     int        `bson:"used_count"`
	Redemptions   []string   `bson:"redemptions"`
	CreatedAt     time.Time  `bson:"created_at"`
}

func newPromoDocument(p *domainpromo.PromoCode) promoDocument {
	redemptions := p.Redemptions
	if redemptions == nil {
		redemptions = []string{}
	}
	return promoDocument{
		ID:            string(p.ID),
		Code:          p.Code,
		DiscountType:  string(p.DiscountType),
		DiscountValue: p.DiscountValue.String(),
		Active:        p.Active,
		ExpiresAt:     p.ExpiresAt,
		MaxUses:       p.MaxUses,
		UsedCount:     p.UsedCount,
		Redemptions:   redemptions,
		CreatedAt:     p.CreatedAt,
	}
}

func (d promoDocument) toAggregate() (*domainpromo.PromoCode, error) {
	value, err := decimal.NewFromString(d.DiscountValue)
	if err != nil {
		return nil, err
	}
	return &domainpromo.PromoCode{
		ID:            domainpromo.ID(d.ID),
		Code:          d.Code,
		DiscountType:  domainpromo.DiscountType(d.DiscountType),
		DiscountValue: value,
		Active:        d.Active,
		ExpiresAt:     utcPtr(d.ExpiresAt),
		MaxUses:       d.MaxUses,
		UsedCount:     d.UsedCount,
		Redemptions:   d.Redemptions,
		CreatedAt:     d.CreatedAt.UTC(),
	}, nil
}

type packDocument struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	Slug             string    `bson:"slug"`
	PackType         string    `bson:"pack_type"`
	ShortDescription string    `bson:"short_description"`
	Description      string    `bson:"description"`
	AccommodationIDs []string  `bson:"accommodation_ids"`
	Featured         bool      `bson:"featured"`
	Status           string    `bson:"status"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func newPackDocument(p *domainpack.Pack) packDocument {
	ids := make([]string, 0, len(p.AccommodationIDs))
	for _, id := range p.AccommodationIDs {
		ids = append(ids, string(id))
	}
	return packDocument{
		ID:               string(p.ID),
		Name:             p.Name,
		Slug:             p.Slug,
		PackType:         p.PackType,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		AccommodationIDs: ids,
		Featured:         p.Featured,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (d packDocument) toAggregate() *domainpack.Pack {
	ids := make([]domainaccommodation.ID, 0, len(d.AccommodationIDs))
	for _, id := range d.AccommodationIDs {
		ids = append(ids, domainaccommodation.ID(id))
	}
	return &domainpack.Pack{
		ID:               domainpack.ID(d.ID),
		Name:             d.Name,
		Slug:             d.Slug,
		PackType:         d.PackType,
		ShortDescription: d.ShortDescription,
		Description:      d.Description,
		AccommodationIDs: ids,
		Featured:         d.Featured,
		Status:           domainpack.Status(d.Status),
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}

type packRequestDocument struct {
	ID        string     `bson:"_id"`
	PackName  string     `bson:"pack_name"`
	FirstName string     `bson:"first_name"`
	LastName  string     `bson:"last_name"`
	Email     string     `bson:"email"`
	Phone     string     `bson:"phone"`
	EventDate *time.Time `bson:"event_date,omitempty"`
	Guests    *int       `bson:"guests,omitempty"`
	Message   string     `bson:"message,omitempty"`
	PromoCode string     `bson:"promo_code,omitempty"`
	Status    string     `bson:"status"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func newPackRequestDocument(r *domainpack.Request) packRequestDocument {
	return packRequestDocument{
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
		UpdatedAt: r.UpdatedAt,
	}
}

func (d packRequestDocument) toAggregate() *domainpack.Request {
	return &domainpack.Request{
		ID:        domainpack.RequestID(d.ID),
		PackName:  d.PackName,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
		EventDate: utcPtr(d.EventDate),
		Guests:    d.Guests,
		Message:   d.Message,
		PromoCode: d.PromoCode,
		Status:    domainpack.RequestStatus(d.Status),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
