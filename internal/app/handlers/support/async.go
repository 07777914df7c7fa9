package support

import (
	"context"
	"log/slog"
	"time"
)

const defaultAsyncTimeout = 10 * time.Second

// Go runs fn in the background with a context detached from the request but
// bounded by timeout. Errors are logged and otherwise ignored.
func Go(ctx context.Context, logger *slog.Logger, name string, timeout time.Duration, fn func(context.Context) error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultAsyncTimeout
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("background task panicked", "task", name, "panic", r)
			}
		}()
		if err := fn(bg); err != nil {
			logger.Warn("background task failed", "task", name, "error", err)
		}
	}()
}

// Clock returns now or time.Now when nil, always in UTC.
func Clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
