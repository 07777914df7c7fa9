package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"signature/internal/app/middleware"
)

const idempotencyPrefix = "signature:idem:"

// IdempotencyStore keeps command results in Redis with a TTL.
type IdempotencyStore struct {
	Client goredis.Cmdable
	TTL    time.Duration
}

type idempotencyValue struct {
	Payload    []byte    `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	raw, err := s.Client.Get(ctx, idempotencyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	var v idempotencyValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	return middleware.IdempotencyRecord{Key: key, Payload: v.Payload, OccurredAt: v.OccurredAt}, true, nil
}

// Save keeps the first record written for a key.
func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	raw, err := json.Marshal(idempotencyValue{Payload: rec.Payload, OccurredAt: rec.OccurredAt})
	if err != nil {
		return err
	}
	return s.Client.SetNX(ctx, idempotencyPrefix+rec.Key, raw, s.TTL).Err()
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
