package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"signature/internal/app/bootstrap"
	"signature/internal/app/middleware"
	appoutbox "signature/internal/app/outbox"
	"signature/internal/app/policies"
	"signature/internal/app/services/auth"
	"signature/internal/app/uow"
	domainauth "signature/internal/domain/auth"
	"signature/internal/infra/broker/kafka"
	rediscache "signature/internal/infra/cache/redis"
	"signature/internal/infra/config"
	mongostore "signature/internal/infra/db/mongo"
	pgstore "signature/internal/infra/db/postgres"
	ginserver "signature/internal/infra/http/gin"
	"signature/internal/infra/jobs"
	"signature/internal/infra/notify"
	"signature/internal/infra/notify/rabbitmq"
	"signature/internal/infra/obs"
	outboxrelay "signature/internal/infra/outbox"
	"signature/internal/infra/security"
	"signature/internal/infra/storage/memory"
)

const serviceName = "signature"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	if cfg.SeedFile != "" {
		if err := loadSeed(ctx, cfg.SeedFile, app.buses, logger); err != nil {
			logger.Warn("seed load failed", "error", err, "path", cfg.SeedFile)
		}
	}

	go func() {
		if err := app.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox relay exited", "error", err)
		}
	}()
	app.scheduler.Start()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.checks}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		app.scheduler.Stop(shutdownCtx)
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreBackend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	buses     bootstrap.Buses
	handlers  ginserver.Handlers
	relay     *outboxrelay.Worker
	scheduler *jobs.Scheduler
	checks    map[string]obs.Check
	closers   []func(context.Context) error
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

// store is the persistence side chosen by STORE_BACKEND.
type store struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	relay       appoutbox.RelayStore
	idempotency middleware.IdempotencyStore
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{checks: map[string]obs.Check{}}

	st, err := openStore(ctx, cfg, app)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	var sessions domainauth.SessionStore = memory.NewSessionStore()
	if cfg.RedisAddr != "" {
		client, err := rediscache.NewClient(ctx, rediscache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("redis: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return client.Close() })
		app.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		st.idempotency = &rediscache.IdempotencyStore{Client: client, TTL: cfg.IdempotencyTTL}
		sessions = &rediscache.SessionStore{Client: client}
	}

	var notifier policies.Notifier = notify.LogNotifier{Logger: logger}
	if cfg.RabbitURL != "" {
		pub := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.NotifyQueue)
		pub.Timeout = cfg.NotifyTimeout
		app.closers = append(app.closers, func(context.Context) error { return pub.Close() })
		notifier = pub
	}

	var producer outboxrelay.Producer = outboxrelay.LogProducer{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, serviceName)
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("kafka: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return p.Close() })
		app.checks["kafka"] = p.Ready
		producer = p
	}
	wake := appoutbox.NewSignal()
	app.relay = &outboxrelay.Worker{
		Store:       st.relay,
		Producer:    producer,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      serviceName,
		Backoff:     cfg.RetryBackoff,
		Wake:        wake.C(),
	}

	app.buses = bootstrap.Build(bootstrap.Deps{
		UoWFactory:  st.factory,
		Outbox:      st.outbox,
		Relay:       wake,
		Idempotency: st.idempotency,
		Notifier:    notifier,
		Logger:      logger,
		Currency:    cfg.Currency,
		NewID:       uuid.NewString,
	})

	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH is empty, admin login disabled")
	}
	authSvc := &auth.Service{
		Admin:      auth.Admin{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.SessionTokens{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	cmds, qs := app.buses.Commands, app.buses.Queries
	app.handlers = ginserver.Handlers{
		Accommodations: &ginserver.AccommodationHandler{Queries: qs, Logger: logger},
		Reservations:   &ginserver.ReservationHandler{Commands: cmds, Queries: qs, Logger: logger},
		Availability:   &ginserver.AvailabilityHandler{Commands: cmds, Queries: qs, Logger: logger},
		Promos:         &ginserver.PromoHandler{Commands: cmds, Queries: qs, Logger: logger},
		Packs:          &ginserver.PackHandler{Commands: cmds, Queries: qs, Logger: logger},
		Admin:          &ginserver.AdminHandler{Auth: authSvc, Commands: cmds, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authSvc, Logger: logger}.Handle,
	}

	app.scheduler = jobs.NewScheduler(logger, time.Minute)
	if err := app.scheduler.Add(cfg.ReconcileSchedule, jobs.ReconcileJob{UoWFactory: st.factory, Logger: logger}); err != nil {
		app.close(logger)
		return nil, fmt.Errorf("reconcile schedule: %w", err)
	}
	if err := app.scheduler.Add(cfg.PromoReportSchedule, jobs.PromoReportJob{UoWFactory: st.factory, Logger: logger}); err != nil {
		app.close(logger)
		return nil, fmt.Errorf("promo report schedule: %w", err)
	}
	return app, nil
}

func openStore(ctx context.Context, cfg config.Config, app *application) (*store, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		idem := mongostore.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		if err := idem.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo idempotency index: %w", err)
		}
		box := mongostore.NewOutboxStore(client.DB)
		app.checks["mongo"] = client.Ping
		return &store{factory: mongostore.NewFactory(client.DB), outbox: box, relay: box, idempotency: idem}, nil

	case config.BackendPostgres:
		db, err := pgstore.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return pgstore.Close(db) })
		if err := pgstore.Migrate(db); err != nil {
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		box := pgstore.NewOutboxStore(db)
		app.checks["postgres"] = func(ctx context.Context) error { return pgstore.Ping(ctx, db) }
		return &store{
			factory:     pgstore.NewFactory(db),
			outbox:      box,
			relay:       box,
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		}, nil

	default:
		mem := memory.NewStore()
		box := memory.NewOutbox(mem)
		return &store{
			factory:     mem,
			outbox:      box,
			relay:       box,
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		}, nil
	}
}

// hashPassword prints the bcrypt hash to put in ADMIN_PASSWORD_HASH.
func hashPassword(args []string) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("usage: signature hash-password <password>")
	}
	hash, err := security.BcryptHasher{}.Hash(args[0])
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
