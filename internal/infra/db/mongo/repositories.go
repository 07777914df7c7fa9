package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainpack "signature/internal/domain/pack"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
)

// Repositories take the session from ctx (see Unit.InjectContext), so every
// call joins the surrounding transaction.

type AccommodationRepository struct {
	col *mongo.Collection
}

func NewAccommodationRepository(db *mongo.Database) *AccommodationRepository {
	return &AccommodationRepository{col: db.Collection(colAccommodations)}
}

func (r *AccommodationRepository) ByID(ctx context.Context, id domainaccommodation.ID) (*domainaccommodation.Accommodation, error) {
	var doc accommodationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainaccommodation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *AccommodationRepository) BySlug(ctx context.Context, slug string) (*domainaccommodation.Accommodation, error) {
	var doc accommodationDocument
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainaccommodation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *AccommodationRepository) List(ctx context.Context, f domainaccommodation.Filter) ([]*domainaccommodation.Accommodation, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "featured", Value: -1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []accommodationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainaccommodation.Accommodation, 0, len(docs))
	for _, d := range docs {
		acc, err := d.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, nil
}

func (r *AccommodationRepository) Save(ctx context.Context, a *domainaccommodation.Accommodation) error {
	doc := newAccommodationDocument(a)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

// Lock bumps a counter on the accommodation so two transactions confirming
// stays of the same property conflict on the server.
func (r *AccommodationRepository) Lock(ctx context.Context, id domainaccommodation.ID) error {
	res, err := r.col.UpdateByID(ctx, string(id), bson.M{"$inc": bson.M{"lock_seq": 1}})
	if err != nil {
		if isWriteConflict(err) {
			return domainreservation.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return domainaccommodation.ErrNotFound
	}
	return nil
}

type AvailabilityRepository struct {
	col *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{col: db.Collection(colBlockedDates)}
}

type blockedDateDocument struct {
	ID              string    `bson:"_id"`
	AccommodationID string    `bson:"accommodation_id"`
	Date            time.Time `bson:"date"`
}

func blockID(id domainaccommodation.ID, day time.Time) string {
	return string(id) + ":" + daterange.FormatDate(day)
}

func (r *AvailabilityRepository) ListBlockedDates(ctx context.Context, id domainaccommodation.ID, from, to time.Time) ([]time.Time, error) {
	dateFilter := bson.M{"$gte": daterange.Day(from)}
	if !to.IsZero() {
		dateFilter["$lt"] = daterange.Day(to)
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"accommodation_id": string(id), "date": dateFilter}, opts)
	if err != nil {
		return nil, err
	}
	var docs []blockedDateDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(docs))
	for _, d := range docs {
		out = append(out, daterange.Day(d.Date))
	}
	return out, nil
}

func (r *AvailabilityRepository) SetAvailability(ctx context.Context, id domainaccommodation.ID, days []domainavailability.DayStatus) error {
	if len(days) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(days))
	for _, d := range days {
		day := daterange.Day(d.Date)
		key := blockID(id, day)
		if d.Available {
			models = append(models, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": key}))
			continue
		}
		doc := blockedDateDocument{ID: key, AccommodationID: string(id), Date: day}
		models = append(models, mongo.NewReplaceOneModel().SetFilter(bson.M{"_id": key}).SetReplacement(doc).SetUpsert(true))
	}
	_, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	return err
}

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection(colReservations)}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ID) (*domainreservation.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreservation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ReservationRepository) Create(ctx context.Context, res *domainreservation.Reservation) error {
	doc := newReservationDocument(res)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return err
	}
	res.Version = 1
	return nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	doc := newReservationDocument(res)
	doc.Version = res.Version + 1
	out, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": res.Version}, doc)
	if err != nil {
		if isWriteConflict(err) {
			return domainreservation.ErrConcurrentUpdate
		}
		return err
	}
	if out.MatchedCount == 0 {
		return domainreservation.ErrConcurrentUpdate
	}
	res.Version = doc.Version
	return nil
}

func (r *ReservationRepository) ListConfirmedOverlapping(ctx context.Context, id domainaccommodation.ID, rng daterange.DateRange) ([]*domainreservation.Reservation, error) {
	return r.find(ctx, bson.M{
		"accommodation_id": string(id),
		"status":           string(domainreservation.StatusConfirmed),
		"check_in":         bson.M{"$lt": rng.CheckOut},
		"check_out":        bson.M{"$gt": rng.CheckIn},
	}, 0)
}

func (r *ReservationRepository) ListConfirmedEndingAfter(ctx context.Context, id domainaccommodation.ID, from time.Time) ([]*domainreservation.Reservation, error) {
	return r.find(ctx, bson.M{
		"accommodation_id": string(id),
		"status":           string(domainreservation.StatusConfirmed),
		"check_out":        bson.M{"$gte": daterange.Day(from)},
	}, 0)
}

func (r *ReservationRepository) List(ctx context.Context, f domainreservation.Filter) ([]*domainreservation.Reservation, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.PaymentStatus != "" {
		filter["payment_status"] = string(f.PaymentStatus)
	}
	if f.AccommodationID != "" {
		filter["accommodation_id"] = string(f.AccommodationID)
	}
	return r.find(ctx, filter, f.Limit)
}

func (r *ReservationRepository) find(ctx context.Context, filter bson.M, limit int) ([]*domainreservation.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []reservationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainreservation.Reservation, 0, len(docs))
	for _, d := range docs {
		agg, err := d.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}

type PromoRepository struct {
	col *mongo.Collection
}

func NewPromoRepository(db *mongo.Database) *PromoRepository {
	return &PromoRepository{col: db.Collection(colPromoCodes)}
}

func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*domainpromo.PromoCode, error) {
	return r.findOne(ctx, bson.M{"code": domainpromo.Normalize(code)})
}

func (r *PromoRepository) ByID(ctx context.Context, id domainpromo.ID) (*domainpromo.PromoCode, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *PromoRepository) findOne(ctx context.Context, filter bson.M) (*domainpromo.PromoCode, error) {
	var doc promoDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpromo.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

// Redeem is a single conditional update: the token must be new and the
// ceiling not reached. A miss is then classified by reading the code back.
func (r *PromoRepository) Redeem(ctx context.Context, id domainpromo.ID, token string) error {
	filter := bson.M{
		"_id": string(id),
		"$or": bson.A{
			bson.M{"max_uses": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}}},
		},
	}
	update := bson.M{"$inc": bson.M{"used_count": 1}}
	if token != "" {
		filter["redemptions"] = bson.M{"$ne": token}
		update["$push"] = bson.M{"redemptions": token}
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 1 {
		return nil
	}
	current, err := r.ByID(ctx, id)
	if err != nil {
		return err
	}
	if token != "" && current.Redeemed(token) {
		return domainpromo.ErrAlreadyRedeemed
	}
	return domainpromo.ErrUsageLimitReached
}

func (r *PromoRepository) Create(ctx context.Context, code *domainpromo.PromoCode) error {
	if _, err := r.col.InsertOne(ctx, newPromoDocument(code)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainpromo.ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *PromoRepository) SetActive(ctx context.Context, id domainpromo.ID, active bool) error {
	res, err := r.col.UpdateByID(ctx, string(id), bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainpromo.ErrNotFound
	}
	return nil
}

func (r *PromoRepository) Delete(ctx context.Context, id domainpromo.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainpromo.ErrNotFound
	}
	return nil
}

func (r *PromoRepository) List(ctx context.Context) ([]*domainpromo.PromoCode, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []promoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainpromo.PromoCode, 0, len(docs))
	for _, d := range docs {
		p, err := d.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type PackRepository struct {
	packs    *mongo.Collection
	requests *mongo.Collection
}

func NewPackRepository(db *mongo.Database) *PackRepository {
	return &PackRepository{packs: db.Collection(colPacks), requests: db.Collection(colPackRequests)}
}

func (r *PackRepository) Save(ctx context.Context, p *domainpack.Pack) error {
	doc := newPackDocument(p)
	update := bson.M{
		"$set": bson.M{
			"name":              doc.Name,
			"slug":              doc.Slug,
			"pack_type":         doc.PackType,
			"short_description": doc.ShortDescription,
			"description":       doc.Description,
			"accommodation_ids": doc.AccommodationIDs,
			"featured":          doc.Featured,
			"status":            doc.Status,
			"updated_at":        doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": doc.CreatedAt},
	}
	_, err := r.packs.UpdateByID(ctx, doc.ID, update, options.Update().SetUpsert(true))
	return err
}

func (r *PackRepository) ListActive(ctx context.Context) ([]*domainpack.Pack, error) {
	opts := options.Find().SetSort(bson.D{{Key: "featured", Value: -1}, {Key: "name", Value: 1}})
	cur, err := r.packs.Find(ctx, bson.M{"status": string(domainpack.StatusActive)}, opts)
	if err != nil {
		return nil, err
	}
	var docs []packDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainpack.Pack, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

func (r *PackRepository) SaveRequest(ctx context.Context, req *domainpack.Request) error {
	doc := newPackRequestDocument(req)
	_, err := r.requests.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *PackRepository) RequestByID(ctx context.Context, id domainpack.RequestID) (*domainpack.Request, error) {
	var doc packRequestDocument
	if err := r.requests.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpack.ErrRequestNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PackRepository) ListRequests(ctx context.Context, status domainpack.RequestStatus) ([]*domainpack.Request, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	cur, err := r.requests.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []packRequestDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainpack.Request, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
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
