package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainpack "signature/internal/domain/pack"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Transactions need a replica set.
type Factory struct {
	DB *mongo.Database
}

func NewFactory(db *mongo.Database) Factory {
	return Factory{DB: db}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if opts.ReadOnly {
		txnOpts = options.Transaction().SetReadConcern(readconcern.Majority())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:        session,
		accommodations: NewAccommodationRepository(f.DB),
		availability:   NewAvailabilityRepository(f.DB),
		reservations:   NewReservationRepository(f.DB),
		promos:         NewPromoRepository(f.DB),
		packs:          NewPackRepository(f.DB),
	}, nil
}

type Unit struct {
	session mongo.Session

	accommodations *AccommodationRepository
	availability   *AvailabilityRepository
	reservations   *ReservationRepository
	promos         *PromoRepository
	packs          *PackRepository
}

func (u *Unit) Accommodations() domainaccommodation.Repository { return u.accommodations }
func (u *Unit) Availability() domainavailability.Repository    { return u.availability }
func (u *Unit) Reservations() domainreservation.Repository     { return u.reservations }
func (u *Unit) Promos() domainpromo.Repository                 { return u.promos }
func (u *Unit) Packs() domainpack.Repository                   { return u.packs }

// Commit reports a lost write race as reservation.ErrConcurrentUpdate so the
// caller sees the same error as with an optimistic version miss.
func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		if isWriteConflict(err) {
			return errors.Join(domainreservation.ErrConcurrentUpdate, err)
		}
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext puts the session in ctx for the repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

func isWriteConflict(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError") || se.HasErrorCode(112)
	}
	return false
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
