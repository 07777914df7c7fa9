package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainauth "signature/internal/domain/auth"
)

const sessionPrefix = "signature:session:"

// SessionStore keeps admin sessions until they expire.
type SessionStore struct {
	Client goredis.Cmdable
	Now    func() time.Time
}

type sessionValue struct {
	Subject   string          `json:"subject"`
	Role      domainauth.Role `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return domainauth.ErrTTLInvalid
	}
	raw, err := json.Marshal(sessionValue{
		Subject:   session.Subject,
		Role:      session.Role,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, sessionPrefix+string(session.Token), raw, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	raw, err := s.Client.Get(ctx, sessionPrefix+string(token)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domainauth.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var v sessionValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &domainauth.Session{Token: token, Subject: v.Subject, Role: v.Role, CreatedAt: v.CreatedAt, ExpiresAt: v.ExpiresAt}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	return s.Client.Del(ctx, sessionPrefix+string(token)).Err()
}

func (s *SessionStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
