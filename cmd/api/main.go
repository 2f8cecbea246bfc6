package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dialer_backend/internal/callcontrol"
	"dialer_backend/internal/dialer"
	"dialer_backend/internal/dialer/engine"
	"dialer_backend/internal/dnc"
	"dialer_backend/internal/events"
	apphttp "dialer_backend/internal/http"
	"dialer_backend/internal/http/router"
	"dialer_backend/internal/leads"
	"dialer_backend/internal/scheduler"
	"dialer_backend/platform/config"
	"dialer_backend/platform/db"
	"dialer_backend/platform/logger"
	"dialer_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	recorder, closeRecorder := initOutcomeRecorder(cfg, log)
	if closeRecorder != nil {
		defer closeRecorder()
	}

	// External collaborators
	callController := callcontrol.NewController(cfg, log)
	registryChecker := dnc.NewChecker(cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(pool, cfg.GetPhoneRegion(), log)
	dialerModule := dialer.NewModule(cfg, callController, registryChecker, recorder, eventBus, val, log)
	webhookModule := callcontrol.NewModule(cfg, dialerModule.Engine(), val, log)

	// Seed the dial queues from the lead store.
	dialSet, err := leadsModule.Service().ListForDialing(ctx)
	if err != nil {
		log.Error("failed to load dial set", "error", err)
		panic("failed to load dial set: " + err.Error())
	}
	dialerModule.Engine().Seed(dialSet)
	log.Info("dial queues seeded", "leads", len(dialSet))

	// Periodic compliance recheck (calling-window re-evaluation).
	go dialerModule.Gate().Watch(ctx, cfg.GetComplianceRecheckInterval())

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			dialerModule,
			webhookModule,
		},
	}

	ginEngine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- ginEngine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		dialerModule.Engine().Close()
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initOutcomeRecorder(cfg config.SchedulerConfig, log *logger.Logger) (engine.OutcomeRecorder, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; call outcomes will not be persisted")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
