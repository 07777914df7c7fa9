// Package bootstrap assembles the command and query buses over a chosen
// storage backend.
package bootstrap

import (
	"log/slog"
	"time"

	"signature/internal/app/commands"
	accommodationapp "signature/internal/app/handlers/accommodations"
	availabilityapp "signature/internal/app/handlers/availability"
	packapp "signature/internal/app/handlers/packs"
	promoapp "signature/internal/app/handlers/promos"
	reservationapp "signature/internal/app/handlers/reservations"
	"signature/internal/app/middleware"
	"signature/internal/app/outbox"
	"signature/internal/app/policies"
	"signature/internal/app/queries"
	"signature/internal/app/services/auth"
	"signature/internal/app/uow"
	"signature/internal/app/validation"
)

type Deps struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Relay       *outbox.Signal
	Idempotency middleware.IdempotencyStore
	Notifier    policies.Notifier
	Logger      *slog.Logger
	Currency    string
	Now         func() time.Time
	NewID       func() string
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// Build registers every use case and wraps the registries in the middleware
// chain: logging, validation, authorization, idempotency, transaction and
// relay wake-up for commands; logging, validation and authorization for queries.
func Build(d Deps) Buses {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	encoder := outbox.JSONEventEncoder{}

	cmds := commands.NewRegistry()
	qs := queries.NewRegistry()

	reservationapp.Register(cmds, qs,
		&reservationapp.CreateReservationHandler{
			UoWFactory: d.UoWFactory,
			Outbox:     d.Outbox,
			Encoder:    encoder,
			Notifier:   d.Notifier,
			Logger:     logger,
			Now:        d.Now,
			NewID:      d.NewID,
			Currency:   d.Currency,
		},
		&reservationapp.StatusHandler{
			UoWFactory: d.UoWFactory,
			Outbox:     d.Outbox,
			Encoder:    encoder,
			Logger:     logger,
			Now:        d.Now,
		},
		&reservationapp.QueryHandler{UoWFactory: d.UoWFactory},
	)
	availabilityapp.Register(cmds, qs, &availabilityapp.Handler{UoWFactory: d.UoWFactory, Now: d.Now})
	promoapp.Register(cmds, qs, &promoapp.Handler{UoWFactory: d.UoWFactory, Logger: logger, Now: d.Now, NewID: d.NewID})
	packapp.Register(cmds, qs, &packapp.Handler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    encoder,
		Notifier:   d.Notifier,
		Logger:     logger,
		Now:        d.Now,
		NewID:      d.NewID,
	})
	accommodationapp.Register(cmds, qs,
		&accommodationapp.Handler{UoWFactory: d.UoWFactory, Now: d.Now, NewID: d.NewID},
		&accommodationapp.QueryHandler{UoWFactory: d.UoWFactory},
	)

	validator := validation.New()
	authorizer := auth.Authorizer{}

	commandMWs := []middleware.CommandMiddleware{
		middleware.CommandLogging(logger),
		middleware.Validation(validator),
		middleware.Authorization(authorizer),
	}
	if d.Idempotency != nil {
		commandMWs = append(commandMWs, middleware.Idempotency(d.Idempotency, nil))
	}
	commandMWs = append(commandMWs, middleware.Transaction(d.UoWFactory, nil))
	if d.Relay != nil {
		commandMWs = append(commandMWs, middleware.OutboxNotify(d.Relay))
	}

	return Buses{
		Commands: middleware.ChainCommands(cmds, commandMWs...),
		Queries: middleware.ChainQueries(qs,
			middleware.QueryLogging(logger),
			middleware.QueryValidation(validator),
			middleware.QueryAuthorization(authorizer),
		),
	}
}
