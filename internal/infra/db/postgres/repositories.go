package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainpack "signature/internal/domain/pack"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
)

type AccommodationRepository struct {
	db *gorm.DB
}

func (r *AccommodationRepository) ByID(ctx context.Context, id domainaccommodation.ID) (*domainaccommodation.Accommodation, error) {
	var m accommodationModel
	if err := r.db.WithContext(ctx).Take(&m, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainaccommodation.ErrNotFound
		}
		return nil, err
	}
	return m.toAggregate(), nil
}

func (r *AccommodationRepository) BySlug(ctx context.Context, slug string) (*domainaccommodation.Accommodation, error) {
	var m accommodationModel
	if err := r.db.WithContext(ctx).Take(&m, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainaccommodation.ErrNotFound
		}
		return nil, err
	}
	return m.toAggregate(), nil
}

func (r *AccommodationRepository) List(ctx context.Context, f domainaccommodation.Filter) ([]*domainaccommodation.Accommodation, error) {
	q := r.db.WithContext(ctx).Order("featured DESC, name, id")
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	var rows []accommodationModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domainaccommodation.Accommodation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate())
	}
	return out, nil
}

func (r *AccommodationRepository) Save(ctx context.Context, a *domainaccommodation.Accommodation) error {
	m := newAccommodationModel(a)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "slug", "type", "location", "price_per_night", "commission_rate", "capacity", "status", "featured", "updated_at"}),
	}).Create(&m).Error
}

// Lock takes a row lock held until the transaction ends.
func (r *AccommodationRepository) Lock(ctx context.Context, id domainaccommodation.ID) error {
	var m accommodationModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Take(&m, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainaccommodation.ErrNotFound
	}
	return err
}

type AvailabilityRepository struct {
	db *gorm.DB
}

func (r *AvailabilityRepository) ListBlockedDates(ctx context.Context, id domainaccommodation.ID, from, to time.Time) ([]time.Time, error) {
	q := r.db.WithContext(ctx).Where("accommodation_id = ? AND date >= ?", string(id), daterange.Day(from))
	if !to.IsZero() {
		q = q.Where("date < ?", daterange.Day(to))
	}
	var rows []blockedDateModel
	if err := q.Order("date").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		out = append(out, daterange.Day(row.Date))
	}
	return out, nil
}

func (r *AvailabilityRepository) SetAvailability(ctx context.Context, id domainaccommodation.ID, days []domainavailability.DayStatus) error {
	db := r.db.WithContext(ctx)
	for _, d := range days {
		row := blockedDateModel{AccommodationID: string(id), Date: daterange.Day(d.Date)}
		if d.Available {
			if err := db.Where("accommodation_id = ? AND date = ?", row.AccommodationID, row.Date).Delete(&blockedDateModel{}).Error; err != nil {
				return err
			}
			continue
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

type ReservationRepository struct {
	db *gorm.DB
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ID) (*domainreservation.Reservation, error) {
	var m reservationModel
	if err := r.db.WithContext(ctx).Take(&m, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainreservation.ErrNotFound
		}
		return nil, err
	}
	return m.toAggregate(), nil
}

func (r *ReservationRepository) Create(ctx context.Context, res *domainreservation.Reservation) error {
	m := newReservationModel(res)
	m.Version = 1
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	res.Version = 1
	return nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	m := newReservationModel(res)
	m.Version = res.Version + 1
	out := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ? AND version = ?", m.ID, res.Version).
		Select("*").
		Omit("id", "created_at").
		Updates(&m)
	if out.Error != nil {
		return out.Error
	}
	if out.RowsAffected == 0 {
		return domainreservation.ErrConcurrentUpdate
	}
	res.Version = m.Version
	return nil
}

func (r *ReservationRepository) ListConfirmedOverlapping(ctx context.Context, id domainaccommodation.ID, rng daterange.DateRange) ([]*domainreservation.Reservation, error) {
	return r.find(r.db.WithContext(ctx).
		Where("accommodation_id = ? AND status = ?", string(id), string(domainreservation.StatusConfirmed)).
		Where("check_in < ? AND check_out > ?", rng.CheckOut, rng.CheckIn), 0)
}

func (r *ReservationRepository) ListConfirmedEndingAfter(ctx context.Context, id domainaccommodation.ID, from time.Time) ([]*domainreservation.Reservation, error) {
	return r.find(r.db.WithContext(ctx).
		Where("accommodation_id = ? AND status = ?", string(id), string(domainreservation.StatusConfirmed)).
		Where("check_out >= ?", daterange.Day(from)), 0)
}

func (r *ReservationRepository) List(ctx context.Context, f domainreservation.Filter) ([]*domainreservation.Reservation, error) {
	q := r.db.WithContext(ctx)
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", string(f.PaymentStatus))
	}
	if f.AccommodationID != "" {
		q = q.Where("accommodation_id = ?", string(f.AccommodationID))
	}
	return r.find(q, f.Limit)
}

func (r *ReservationRepository) find(q *gorm.DB, limit int) ([]*domainreservation.Reservation, error) {
	q = q.Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []reservationModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domainreservation.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate())
	}
	return out, nil
}

type PromoRepository struct {
	db *gorm.DB
}

func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*domainpromo.PromoCode, error) {
	return r.take(ctx, "code = ?", domainpromo.Normalize(code))
}

func (r *PromoRepository) ByID(ctx context.Context, id domainpromo.ID) (*domainpromo.PromoCode, error) {
	return r.take(ctx, "id = ?", string(id))
}

func (r *PromoRepository) take(ctx context.Context, query string, arg any) (*domainpromo.PromoCode, error) {
	db := r.db.WithContext(ctx)
	var m promoModel
	if err := db.Take(&m, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainpromo.ErrNotFound
		}
		return nil, err
	}
	var tokens []string
	if err := db.Model(&promoRedemptionModel{}).Where("promo_id = ?", m.ID).Order("created_at").Pluck("token", &tokens).Error; err != nil {
		return nil, err
	}
	return m.toAggregate(tokens), nil
}

// Redeem inserts the token first (the primary key rejects a replay) and then
// increments the counter only while it is below the ceiling. It runs under a
// savepoint so a refused redemption leaves nothing behind even when the
// caller goes on to commit.
func (r *PromoRepository) Redeem(ctx context.Context, id domainpromo.ID, token string) (err error) {
	db := r.db.WithContext(ctx)
	if err := db.SavePoint("promo_redeem").Error; err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := db.RollbackTo("promo_redeem").Error; rbErr != nil {
				err = errors.Join(err, rbErr)
			}
		}
	}()
	if token != "" {
		ins := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&promoRedemptionModel{PromoID: string(id), Token: token})
		if ins.Error != nil {
			return ins.Error
		}
		if ins.RowsAffected == 0 {
			return domainpromo.ErrAlreadyRedeemed
		}
	}
	upd := db.Model(&promoModel{}).
		Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", string(id)).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if upd.Error != nil {
		return upd.Error
	}
	if upd.RowsAffected == 1 {
		return nil
	}
	var count int64
	if err := db.Model(&promoModel{}).Where("id = ?", string(id)).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainpromo.ErrNotFound
	}
	return domainpromo.ErrUsageLimitReached
}

func (r *PromoRepository) Create(ctx context.Context, code *domainpromo.PromoCode) error {
	m := newPromoModel(code)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainpromo.ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *PromoRepository) SetActive(ctx context.Context, id domainpromo.ID, active bool) error {
	out := r.db.WithContext(ctx).Model(&promoModel{}).Where("id = ?", string(id)).UpdateColumn("active", active)
	if out.Error != nil {
		return out.Error
	}
	if out.RowsAffected == 0 {
		return domainpromo.ErrNotFound
	}
	return nil
}

func (r *PromoRepository) Delete(ctx context.Context, id domainpromo.ID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("promo_id = ?", string(id)).Delete(&promoRedemptionModel{}).Error; err != nil {
		return err
	}
	out := db.Where("id = ?", string(id)).Delete(&promoModel{})
	if out.Error != nil {
		return out.Error
	}
	if out.RowsAffected == 0 {
		return domainpromo.ErrNotFound
	}
	return nil
}

func (r *PromoRepository) List(ctx context.Context) ([]*domainpromo.PromoCode, error) {
	db := r.db.WithContext(ctx)
	var rows []promoModel
	if err := db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	var redemptions []promoRedemptionModel
	if err := db.Order("created_at").Find(&redemptions).Error; err != nil {
		return nil, err
	}
	tokens := make(map[string][]string)
	for _, red := range redemptions {
		tokens[red.PromoID] = append(tokens[red.PromoID], red.Token)
	}
	out := make([]*domainpromo.PromoCode, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate(tokens[row.ID]))
	}
	return out, nil
}

type PackRepository struct {
	db *gorm.DB
}

func (r *PackRepository) Save(ctx context.Context, p *domainpack.Pack) error {
	m := newPackModel(p)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "slug", "pack_type", "short_description", "description", "accommodation_ids", "featured", "status", "updated_at"}),
	}).Create(&m).Error
}

func (r *PackRepository) ListActive(ctx context.Context) ([]*domainpack.Pack, error) {
	var rows []packModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domainpack.StatusActive)).
		Order("featured DESC, name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domainpack.Pack, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate())
	}
	return out, nil
}

func (r *PackRepository) SaveRequest(ctx context.Context, req *domainpack.Request) error {
	m := newPackRequestModel(req)
	return r.db.WithContext(ctx).Save(&m).Error
}

func (r *PackRepository) RequestByID(ctx context.Context, id domainpack.RequestID) (*domainpack.Request, error) {
	var m packRequestModel
	if err := r.db.WithContext(ctx).Take(&m, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainpack.ErrRequestNotFound
		}
		return nil, err
	}
	return m.toAggregate(), nil
}

func (r *PackRepository) ListRequests(ctx context.Context, status domainpack.RequestStatus) ([]*domainpack.Request, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var rows []packRequestModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domainpack.Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate())
	}
	return out, nil
}

var (
	_ domainaccommodation.Repository = (*AccommodationRepository)(nil)
	_ domainavailability.Repository  = (*AvailabilityRepository)(nil)
	_ domainreservation.Repository   = (*ReservationRepository)(nil)
	_ domainpromo.Repository         = (*PromoRepository)(nil)
	_ domainpack.Repository          = (*PackRepository)(nil)
)
