package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendexa_backend/internal/ai"
	"vendexa_backend/internal/billing"
	"vendexa_backend/internal/closing"
	"vendexa_backend/internal/conversation"
	"vendexa_backend/internal/conversation/session"
	"vendexa_backend/internal/email"
	"vendexa_backend/internal/events"
	apphttp "vendexa_backend/internal/http"
	"vendexa_backend/internal/http/router"
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

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, cfg.MigrationsDir)
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

	sender := email.NewSender(cfg)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Gemini collaborator. Without an API key the conversation flow runs on
	// its deterministic fallbacks.
	var engine ai.Engine
	if cfg.IsAIEnabled() {
		geminiEngine, err := ai.NewGeminiEngine(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize gemini engine", "error", err)
			panic("failed to initialize gemini engine: " + err.Error())
		}
		engine = geminiEngine
		log.Info("gemini engine initialized", "model", cfg.GeminiModel)
	} else {
		engine = ai.DisabledEngine{}
		log.Warn("GEMINI_API_KEY not configured; conversation replies use fallbacks")
	}

	// Conversation session store: Redis when configured, in-process otherwise.
	var sessions session.Store
	if cfg.UseRedisSessions() {
		redisSessions, err := session.NewRedisStore(ctx, cfg.GetRedisURL(), cfg.GetSessionTTL())
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		defer func() { _ = redisSessions.Close() }()
		sessions = redisSessions
		log.Info("redis session store initialized")
	} else {
		sessions = session.NewMemoryStore(cfg.GetSessionTTL())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(sender, log)
	notificationModule.RegisterHandlers(eventBus)

	leadsModule := leads.NewModule(pool, eventBus, val, log)
	conversationModule := conversation.NewModule(leadsModule.Repository(), engine, sessions, eventBus, val, log)
	closingModule := closing.NewModule(leadsModule.Repository(), eventBus, cfg, val, log)
	billingModule := billing.NewModule(closingModule.Service(), leadsModule.Repository(), cfg, val, log)

	followUpScheduler, closeScheduler := initFollowUpScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}
	if followUpScheduler != nil {
		scheduler.NewLeadCreatedHandler(followUpScheduler, log).RegisterHandlers(eventBus)
	}

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
			conversationModule,
			closingModule,
			billingModule,
		},
	}

	engineHTTP := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engineHTTP.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initFollowUpScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.FollowUpScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; lead follow-ups disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize follow-up scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
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
