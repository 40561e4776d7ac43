package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"resort_crm_backend/internal/adapters"
	bookingsrepo "resort_crm_backend/internal/bookings/repository"
	"resort_crm_backend/internal/email"
	"resort_crm_backend/internal/events"
	guestsrepo "resort_crm_backend/internal/guests/repository"
	leadsrepo "resort_crm_backend/internal/leads/repository"
	"resort_crm_backend/internal/notification"
	"resort_crm_backend/internal/scheduler"
	unitsrepo "resort_crm_backend/internal/units/repository"
	"resort_crm_backend/platform/config"
	"resort_crm_backend/platform/db"
	"resort_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

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

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	guestRepo := guestsrepo.New(pool)

	// Notification module handles outbox-due events republished by the worker.
	notificationModule := notification.New(
		pool,
		sender,
		bookingsrepo.New(pool),
		guestRepo,
		unitsrepo.New(pool),
		leadsrepo.New(pool),
		cfg,
		log,
	)
	notificationModule.RegisterHandlers(eventBus)

	dispatcher, err := scheduler.NewNotificationOutboxDispatcher(cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize outbox dispatcher", "error", err)
		panic("failed to initialize outbox dispatcher: " + err.Error())
	}
	defer func() { _ = dispatcher.Close() }()
	go dispatcher.Run(ctx)

	cleanupInterval := getDurationEnv("OUTBOX_CLEANUP_INTERVAL", time.Hour)
	succeededRetention := time.Duration(getPositiveIntEnv("OUTBOX_SUCCEEDED_RETENTION_DAYS", 14)) * 24 * time.Hour
	failedRetention := time.Duration(getPositiveIntEnv("OUTBOX_FAILED_RETENTION_DAYS", 30)) * 24 * time.Hour
	outboxCleanup := scheduler.NewOutboxCleanup(pool, log, cleanupInterval, succeededRetention, failedRetention)
	go outboxCleanup.Run(ctx)

	worker, err := scheduler.NewWorker(
		cfg,
		pool,
		eventBus,
		adapters.GuestMailingListPort{Guests: guestRepo},
		sender,
		log,
	)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
