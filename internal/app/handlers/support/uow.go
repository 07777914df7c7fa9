package support

import (
	"context"

	"signature/internal/app/uow"
)

// BeginUnit returns the unit already bound to ctx or starts a new one. When a
// new unit is started, finish must be called with the handler's final error:
// it commits on nil and rolls back otherwise.
func BeginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (uow.UnitOfWork, context.Context, func(error) error, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, func(err error) error { return err }, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Attach(ctx, unit)
	finish := func(err error) error {
		if err != nil || opts.ReadOnly {
			_ = unit.Rollback(execCtx)
			return err
		}
		if err := unit.Commit(execCtx); err != nil {
			return err
		}
		uow.RunCommitHooks(execCtx)
		return nil
	}
	return unit, execCtx, finish, nil
}

// BeginReadOnlyUnit is BeginUnit for queries; cleanup releases the unit.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, execCtx, finish, err := BeginUnit(ctx, factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	return unit, execCtx, func() { _ = finish(nil) }, nil
}
