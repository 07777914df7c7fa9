package uow

import (
	"context"

	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainpack "signature/internal/domain/pack"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
)

// UnitOfWork groups repositories behind one transaction boundary.
type UnitOfWork interface {
	Accommodations() domainaccommodation.Repository
	Availability() domainavailability.Repository
	Reservations() domainreservation.Repository
	Promos() domainpromo.Repository
	Packs() domainpack.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units whose driver state (a session or a
// transaction handle) must travel in the context to reach the stores.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}
