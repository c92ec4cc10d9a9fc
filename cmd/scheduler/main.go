package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heatsurvey_backend/internal/events"
	"heatsurvey_backend/internal/heatloss"
	"heatsurvey_backend/internal/scheduler"
	"heatsurvey_backend/platform/config"
	"heatsurvey_backend/platform/db"
	"heatsurvey_backend/platform/logger"
	"heatsurvey_backend/platform/metrics"
	"heatsurvey_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	appMetrics := metrics.New()

	// Worker-side heat-loss wiring (no HTTP handlers required).
	heatLossModule, err := heatloss.NewModule(pool, eventBus, val, cfg, appMetrics, log)
	if err != nil {
		log.Error("failed to initialize heat-loss module", "error", err)
		panic("failed to initialize heat-loss module: " + err.Error())
	}
	defer func() { _ = heatLossModule.Close() }()
	heatLossModule.RegisterHandlers(eventBus)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()
	heatLossModule.SetEnqueuer(client)

	dispatcher := scheduler.NewStaleSurveyDispatcher(heatLossModule.Repository(), client, log, cfg.GetStaleScanInterval())
	go dispatcher.Run(ctx)

	cleanup := scheduler.NewSnapshotCleanup(heatLossModule.Repository(), log, cfg.GetSnapshotCleanupInterval(), cfg.GetSnapshotRetention())
	go cleanup.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, heatLossModule.Service(), appMetrics, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
