package uow

import (
	"context"
	"errors"
	"sync"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

type ctxKey struct{}

type hooksKey struct{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(ctxKey{}).(UnitOfWork)
	return unit, ok
}

// Attach injects driver state of unit (if any), stores the unit in ctx and
// opens a fresh after-commit hook list.
func Attach(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	ctx = context.WithValue(ctx, hooksKey{}, &commitHooks{})
	return ContextWithUnitOfWork(ctx, unit)
}

// AfterCommit defers fn until the unit bound to ctx commits. Without a unit
// fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	hooks, ok := ctx.Value(hooksKey{}).(*commitHooks)
	if !ok {
		fn()
		return
	}
	hooks.mu.Lock()
	hooks.fns = append(hooks.fns, fn)
	hooks.mu.Unlock()
}

// RunCommitHooks runs and clears the hooks registered on ctx.
func RunCommitHooks(ctx context.Context) {
	hooks, ok := ctx.Value(hooksKey{}).(*commitHooks)
	if !ok {
		return
	}
	hooks.mu.Lock()
	fns := hooks.fns
	hooks.fns = nil
	hooks.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
