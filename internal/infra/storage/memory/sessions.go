package memory

import (
	"context"
	"sync"
	"time"

	domainauth "signature/internal/domain/auth"
)

type SessionStore struct {
	mu    sync.RWMutex
	items map[domainauth.Token]domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[domainauth.Token]domainauth.Session)}
}

func (s *SessionStore) Save(_ context.Context, session *domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.Token] = *session
	return nil
}

func (s *SessionStore) Get(_ context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	session, ok := s.items[token]
	s.mu.RUnlock()
	if !ok || session.Expired(time.Now()) {
		return nil, domainauth.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
