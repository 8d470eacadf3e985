package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendexa_backend/internal/closing"
	"vendexa_backend/internal/email"
	"vendexa_backend/internal/events"
	"vendexa_backend/internal/leads"
	"vendexa_backend/internal/notification"
	"vendexa_backend/internal/scheduler"
	"vendexa_backend/platform/config"
	"vendexa_backend/platform/db"
	"vendexa_backend/platform/logger"
	"vendexa_backend/platform/validator"

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

	sender := email.NewSender(cfg)

	// Worker-side closing wiring (no HTTP handlers required). Deal events
	// raised by the batch still reach the notification emails.
	notificationModule := notification.New(sender, log)
	notificationModule.RegisterHandlers(eventBus)

	val := validator.New()
	leadsModule := leads.NewModule(pool, eventBus, val, log)
	closingModule := closing.NewModule(leadsModule.Repository(), eventBus, cfg, val, log)

	worker, err := scheduler.NewWorker(cfg, pool, closingModule.Service(), sender, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	go runCloseBatchTicker(ctx, client, cfg.GetCloseBatchInterval(), log)

	worker.Run(ctx)
}

// runCloseBatchTicker enqueues one automated closing pass per interval.
func runCloseBatchTicker(ctx context.Context, client *scheduler.Client, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.EnqueueCloseBatch(ctx); err != nil {
				log.Error("failed to enqueue close batch", "error", err)
			}
		}
	}
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
