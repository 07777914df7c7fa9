package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainpack "signature/internal/domain/pack"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing database")

type Factory struct {
	DB *gorm.DB
}

func NewFactory(db *gorm.DB) Factory {
	return Factory{DB: db}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	tx := f.DB.WithContext(ctx).Begin(&sql.TxOptions{ReadOnly: opts.ReadOnly})
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Unit{tx: tx}, nil
}

// Unit binds every repository to one database transaction.
type Unit struct {
	tx *gorm.DB
}

func (u *Unit) Accommodations() domainaccommodation.Repository {
	return &AccommodationRepository{db: u.tx}
}

func (u *Unit) Availability() domainavailability.Repository {
	return &AvailabilityRepository{db: u.tx}
}

func (u *Unit) Reservations() domainreservation.Repository {
	return &ReservationRepository{db: u.tx}
}

func (u *Unit) Promos() domainpromo.Repository {
	return &PromoRepository{db: u.tx}
}

func (u *Unit) Packs() domainpack.Repository {
	return &PackRepository{db: u.tx}
}

func (u *Unit) Commit(context.Context) error {
	return u.tx.Commit().Error
}

func (u *Unit) Rollback(context.Context) error {
	err := u.tx.Rollback().Error
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

type txKey struct{}

// InjectContext lets the outbox store write through the unit's transaction.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, u.tx)
}

// conn returns the transaction bound to ctx or db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
