package middleware

import (
	"context"

	"signature/internal/app/commands"
	"signature/internal/app/outbox"
	"signature/internal/app/uow"
)

// OutboxNotify wakes the relay once a command that recorded events has
// committed, so they leave without waiting for the next poll.
func OutboxNotify(signal *outbox.Signal) CommandMiddleware {
	if signal == nil {
		panic("middleware: outbox signal required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx, recorded := outbox.Track(ctx)
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if recorded() {
				uow.AfterCommit(ctx, signal.Notify)
			}
			return res, nil
		})
	}
}
