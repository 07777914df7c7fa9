package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colAccommodations = "accommodations"
	colBlockedDates   = "availability_blocks"
	colReservations   = "reservations"
	colPromoCodes     = "promo_codes"
	colPacks          = "packs"
	colPackRequests   = "pack_requests"
	colOutbox         = "app_outbox"
	colIdempotency    = "app_idempotency"
)

type Client struct {
	DB *mongo.Database
}

func New(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on, including the
// unique promo code index that backs ErrDuplicateCode.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		colAccommodations: {
			{Keys: bson.D{{Key: "slug", Value: 1}}},
		},
		colBlockedDates: {
			{Keys: bson.D{{Key: "accommodation_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colReservations: {
			{Keys: bson.D{{Key: "accommodation_id", Value: 1}, {Key: "status", Value: 1}, {Key: "check_in", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		colPromoCodes: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colPackRequests: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colOutbox: {
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}}},
		},
	}
	for name, models := range specs {
		if _, err := c.DB.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
