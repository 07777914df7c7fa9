package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domainauth "signature/internal/domain/auth"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }

func (plainHasher) Compare(hash, p string) error {
	if hash != "plain:"+p {
		return errors.New("mismatch")
	}
	return nil
}

type counterTokens struct{ n *int }

func (c counterTokens) NewToken() (string, error) {
	*c.n++
	return fmt.Sprintf("tok-%d", *c.n), nil
}

type mapSessions map[domainauth.Token]*domainauth.Session

func (m mapSessions) Save(_ context.Context, s *domainauth.Session) error {
	m[s.Token] = s
	return nil
}

func (m mapSessions) Get(_ context.Context, t domainauth.Token) (*domainauth.Session, error) {
	s, ok := m[t]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	return s, nil
}

func (m mapSessions) Delete(_ context.Context, t domainauth.Token) error {
	delete(m, t)
	return nil
}

func newService(now *time.Time) (*Service, mapSessions) {
	sessions := mapSessions{}
	n := 0
	return &Service{
		Admin:      Admin{Email: "Admin@Signature.test", PasswordHash: "plain:secret"},
		Sessions:   sessions,
		Passwords:  plainHasher{},
		Tokens:     counterTokens{n: &n},
		SessionTTL: time.Hour,
		Now:        func() time.Time { return *now },
	}, sessions
}

func TestLoginIssuesSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc, sessions := newService(&now)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginParams{Email: " admin@signature.TEST ", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Token != "tok-1" || !res.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("login = %+v", res)
	}
	s, err := svc.ResolveToken(ctx, res.Token)
	if err != nil {
		t.Fatal(err)
	}
	if s.Subject != "admin@signature.test" || s.Role != domainauth.RoleAdmin {
		t.Fatalf("session = %+v", s)
	}

	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Fatalf("sessions left: %d", len(sessions))
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	now := time.Now()
	svc, _ := newService(&now)
	for _, p := range []LoginParams{
		{Email: "admin@signature.test", Password: "wrong"},
		{Email: "other@signature.test", Password: "secret"},
		{Email: "", Password: "secret"},
	} {
		if _, err := svc.Login(context.Background(), p); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("login(%+v) err = %v", p, err)
		}
	}

	svc.Admin.PasswordHash = ""
	if _, err := svc.Login(context.Background(), LoginParams{Email: "admin@signature.test", Password: ""}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("disabled login err = %v", err)
	}
}

func TestExpiredSessionIsDropped(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc, sessions := newService(&now)
	ctx := context.Background()
	res, err := svc.Login(ctx, LoginParams{Email: "admin@signature.test", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Hour)
	if _, err := svc.ResolveToken(ctx, res.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("resolve err = %v", err)
	}
	if len(sessions) != 0 {
		t.Fatal("expired session kept")
	}
}

type adminQuery struct{}

func (adminQuery) RequiresAdmin() bool { return true }

func TestAuthorizer(t *testing.T) {
	a := Authorizer{}
	ctx := context.Background()
	if err := a.Authorize(ctx, struct{}{}); err != nil {
		t.Fatalf("public message err = %v", err)
	}
	if err := a.Authorize(ctx, adminQuery{}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous err = %v", err)
	}
	guest := WithPrincipal(ctx, Principal{Subject: "x", Role: "guest"})
	if err := a.Authorize(guest, adminQuery{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("guest err = %v", err)
	}
	admin := WithPrincipal(ctx, Principal{Subject: "admin", Role: domainauth.RoleAdmin})
	if err := a.Authorize(admin, adminQuery{}); err != nil {
		t.Fatalf("admin err = %v", err)
	}
}
