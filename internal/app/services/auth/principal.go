package auth

import (
	"context"

	domainauth "signature/internal/domain/auth"
)

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	Subject string
	Role    domainauth.Role
	Token   string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// AdminOnly is implemented by commands and queries reserved to the back office.
type AdminOnly interface {
	RequiresAdmin() bool
}

// Authorizer enforces AdminOnly on bus messages.
type Authorizer struct{}

func (Authorizer) Authorize(ctx context.Context, message any) error {
	guarded, ok := message.(AdminOnly)
	if !ok || !guarded.RequiresAdmin() {
		return nil
	}
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if p.Role != domainauth.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
