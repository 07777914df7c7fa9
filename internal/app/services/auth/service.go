package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainauth "signature/internal/domain/auth"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUnauthenticated    = errors.New("auth: authentication required")
	ErrForbidden          = errors.New("auth: insufficient permissions")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// TokenChecker is optionally implemented by a TokenGenerator to reject
// tokens it could never have issued before the session store is queried.
type TokenChecker interface {
	Check(token string) error
}

// Admin is the single back-office account, configured at start-up.
type Admin struct {
	Email        string
	PasswordHash string
}

type Service struct {
	Admin      Admin
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || s.Admin.PasswordHash == "" || email != strings.ToLower(s.Admin.Email) {
		return nil, ErrInvalidCredentials
	}
	if err := s.Passwords.Compare(s.Admin.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:   domainauth.Token(token),
		Subject: email,
		Role:    domainauth.RoleAdmin,
		TTL:     s.sessionTTL(),
		Now:     s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("admin authenticated", "subject", session.Subject)
	}
	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, domainauth.Token(token))
}

// ResolveToken returns the live session for token, dropping it when expired.
func (s *Service) ResolveToken(ctx context.Context, token string) (*domainauth.Session, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	if checker, ok := s.Tokens.(TokenChecker); ok && checker.Check(token) != nil {
		return nil, domainauth.ErrSessionNotFound
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 12 * time.Hour
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token generator required")
	default:
		return nil
	}
}
