package postgres

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

type accommodationModel struct {
	ID             string `gorm:"primaryKey;type:text"`
	Name           string `gorm:"not null"`
	Slug           string `gorm:"index"`
	Type           string `gorm:"not null"`
	Location       string
	PricePerNight  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CommissionRate decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Capacity       int
	Status         string `gorm:"not null"`
	Featured       bool
	LockSeq        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (accommodationModel) TableName() string { return "accommodations" }

func newAccommodationModel(a *domainaccommodation.Accommodation) accommodationModel {
	return accommodationModel{
		ID:             string(a.ID),
		Name:           a.Name,
		Slug:           a.Slug,
		Type:           string(a.Type),
		Location:       a.Location,
		PricePerNight:  a.PricePerNight,
		CommissionRate: a.CommissionRate,
		Capacity:       a.Capacity,
		Status:         string(a.Status),
		Featured:       a.Featured,
		CreatedAt:      a.CreatedAt.UTC(),
		UpdatedAt:      a.UpdatedAt.UTC(),
	}
}

func (m accommodationModel) toAggregate() *domainaccommodation.Accommodation {
	return &domainaccommodation.Accommodation{
		ID:             domainaccommodation.ID(m.ID),
		Name:           m.Name,
		Slug:           m.Slug,
		Type:           domainaccommodation.Type(m.Type),
		Location:       m.Location,
		PricePerNight:  m.PricePerNight,
		CommissionRate: m.CommissionRate,
		Capacity:       m.Capacity,
		Status:         domainaccommodation.Status(m.Status),
		Featured:       m.Featured,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type blockedDateModel struct {
	AccommodationID string    `gorm:"primaryKey;type:text"`
	Date            time.Time `gorm:"primaryKey;type:date"`
}

func (blockedDateModel) TableName() string { return "availability_blocks" }

type reservationModel struct {
	ID                 string `gorm:"primaryKey;type:text"`
	AccommodationID    string `gorm:"index:idx_reservations_stay,priority:1;not null"`
	UserID             string
	GuestFirstName     string
	GuestLastName      string
	GuestEmail         string
	GuestPhone         string
	Guests             int
	CheckIn            time.Time `gorm:"type:date;index:idx_reservations_stay,priority:3"`
	CheckOut           time.Time `gorm:"type:date"`
	Nights             int
	Currency           string
	PricePerNight      int64
	Subtotal           int64
	CommissionRate     decimal.Decimal `gorm:"type:numeric(5,2)"`
	CommissionAmount   int64
	DiscountAmount     int64
	TotalPrice         int64
	PromoCode          string
	PaymentMethod      string
	Status             string `gorm:"index:idx_reservations_stay,priority:2"`
	PaymentStatus      string
	PaymentReference   string
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	PaidAt             *time.Time
	CancellationReason string
	Notes              string
	AdminNotes         string
	CreatedAt          time.Time `gorm:"index"`
	UpdatedAt          time.Time
	Version            int64
}

func (reservationModel) TableName() string { return "reservations" }

func newReservationModel(r *domainreservation.Reservation) reservationModel {
	return reservationModel{
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
		CommissionRate:     r.Price.CommissionRate,
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

func (m reservationModel) toAggregate() *domainreservation.Reservation {
	amount := func(v int64) money.Money { return money.Money{Amount: v, Currency: m.Currency} }
	return &domainreservation.Reservation{
		ID:              domainreservation.ID(m.ID),
		AccommodationID: domainaccommodation.ID(m.AccommodationID),
		UserID:          m.UserID,
		Guest: domainreservation.Guest{
			FirstName: m.GuestFirstName,
			LastName:  m.GuestLastName,
			Email:     m.GuestEmail,
			Phone:     m.GuestPhone,
		},
		Guests: m.Guests,
		Range:  daterange.DateRange{CheckIn: daterange.Day(m.CheckIn), CheckOut: daterange.Day(m.CheckOut)},
		Price: pricing.Breakdown{
			Nights:           m.Nights,
			PricePerNight:    amount(m.PricePerNight),
			CommissionRate:   m.CommissionRate,
			Subtotal:         amount(m.Subtotal),
			CommissionAmount: amount(m.CommissionAmount),
			Discount:         amount(m.DiscountAmount),
			Total:            amount(m.TotalPrice),
		},
		PromoCode:          m.PromoCode,
		PaymentMethod:      domainreservation.PaymentMethod(m.PaymentMethod),
		Status:             domainreservation.Status(m.Status),
		PaymentStatus:      domainreservation.PaymentStatus(m.PaymentStatus),
		PaymentReference:   m.PaymentReference,
		ConfirmedAt:        utcPtr(m.ConfirmedAt),
		CancelledAt:        utcPtr(m.CancelledAt),
		PaidAt:             utcPtr(m.PaidAt),
		CancellationReason: m.CancellationReason,
		Notes:              m.Notes,
		AdminNotes:         m.AdminNotes,
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
		Version:            m.Version,
	}
}

type promoModel struct {
	ID            string          `gorm:"primaryKey;type:text"`
	Code          string          `gorm:"uniqueIndex;not null"`
	DiscountType  string          `gorm:"not null"`
	DiscountValue decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Active        bool
	ExpiresAt     *time.Time
	MaxUses       *int
	UsedCount     int
	CreatedAt     time.Time
}

func (promoModel) TableName() string { return "promo_codes" }

// promoRedemptionModel makes a redemption token count once per code.
type promoRedemptionModel struct {
	PromoID   string `gorm:"primaryKey;type:text"`
	Token     string `gorm:"primaryKey;type:text"`
	CreatedAt time.Time
}

func (promoRedemptionModel) TableName() string { return "promo_redemptions" }

func newPromoModel(p *domainpromo.PromoCode) promoModel {
	return promoModel{
		ID:            string(p.ID),
		Code:          p.Code,
		DiscountType:  string(p.DiscountType),
		DiscountValue: p.DiscountValue,
		Active:        p.Active,
		ExpiresAt:     p.ExpiresAt,
		MaxUses:       p.MaxUses,
		UsedCount:     p.UsedCount,
		CreatedAt:     p.CreatedAt,
	}
}

func (m promoModel) toAggregate(tokens []string) *domainpromo.PromoCode {
	return &domainpromo.PromoCode{
		ID:            domainpromo.ID(m.ID),
		Code:          m.Code,
		DiscountType:  domainpromo.DiscountType(m.DiscountType),
		DiscountValue: m.DiscountValue,
		Active:        m.Active,
		ExpiresAt:     utcPtr(m.ExpiresAt),
		MaxUses:       m.MaxUses,
		UsedCount:     m.UsedCount,
		Redemptions:   tokens,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

type packModel struct {
	ID               string `gorm:"primaryKey;type:text"`
	Name             string `gorm:"not null"`
	Slug             string `gorm:"index"`
	PackType         string
	ShortDescription string
	Description      string
	AccommodationIDs []string `gorm:"serializer:json;type:jsonb"`
	Featured         bool
	Status           string `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (packModel) TableName() string { return "packs" }

func newPackModel(p *domainpack.Pack) packModel {
	ids := make([]string, 0, len(p.AccommodationIDs))
	for _, id := range p.AccommodationIDs {
		ids = append(ids, string(id))
	}
	return packModel{
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

func (m packModel) toAggregate() *domainpack.Pack {
	ids := make([]domainaccommodation.ID, 0, len(m.AccommodationIDs))
	for _, id := range m.AccommodationIDs {
		ids = append(ids, domainaccommodation.ID(id))
	}
	return &domainpack.Pack{
		ID:               domainpack.ID(m.ID),
		Name:             m.Name,
		Slug:             m.Slug,
		PackType:         m.PackType,
		ShortDescription: m.ShortDescription,
		Description:      m.Description,
		AccommodationIDs: ids,
		Featured:         m.Featured,
		Status:           domainpack.Status(m.Status),
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

type packRequestModel struct {
	ID        string `gorm:"primaryKey;type:text"`
	PackName  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	EventDate *time.Time `gorm:"type:date"`
	Guests    *int
	Message   string
	PromoCode string
	Status    string    `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (packRequestModel) TableName() string { return "pack_requests" }

func newPackRequestModel(r *domainpack.Request) packRequestModel {
	return packRequestModel{
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

func (m packRequestModel) toAggregate() *domainpack.Request {
	return &domainpack.Request{
		ID:        domainpack.RequestID(m.ID),
		PackName:  m.PackName,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Phone:     m.Phone,
		EventDate: utcPtr(m.EventDate),
		Guests:    m.Guests,
		Message:   m.Message,
		PromoCode: m.PromoCode,
		Status:    domainpack.RequestStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type outboxModel struct {
	ID          string `gorm:"primaryKey;type:text"`
	Name        string `gorm:"not null"`
	Payload     []byte `gorm:"type:bytea"`
	OccurredAt  time.Time
	Aggregate   string
	Headers     map[string]string `gorm:"serializer:json;type:jsonb"`
	State       string            `gorm:"index:idx_outbox_due,priority:1"`
	Attempts    int
	NextAttempt time.Time `gorm:"column:next_attempt_at;index:idx_outbox_due,priority:2"`
	ClaimedBy   string
	ClaimedAt   *time.Time
	SentAt      *time.Time
	LastError   string
	CreatedAt   time.Time
}

func (outboxModel) TableName() string { return "app_outbox" }

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
