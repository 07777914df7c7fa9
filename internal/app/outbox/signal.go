package outbox

import (
	"context"
	"sync/atomic"
)

// Signal wakes a relay as soon as committed records are waiting instead of
// leaving them for the next poll. Use NewSignal.
type Signal struct {
	ch chan struct{}
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Notify never blocks; wake-ups coalesce while one is pending.
func (s *Signal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *Signal) C() <-chan struct{} {
	return s.ch
}

type trackerKey struct{}

// Track returns a context that counts the records added through
// RecordDomainEvents and a func reporting whether any were.
func Track(ctx context.Context) (context.Context, func() bool) {
	n := new(atomic.Int64)
	return context.WithValue(ctx, trackerKey{}, n), func() bool { return n.Load() > 0 }
}

func markRecorded(ctx context.Context, n int) {
	if c, ok := ctx.Value(trackerKey{}).(*atomic.Int64); ok {
		c.Add(int64(n))
	}
}
