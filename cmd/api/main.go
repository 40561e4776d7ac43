package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resort_crm_backend/internal/adapters"
	"resort_crm_backend/internal/adapters/storage"
	"resort_crm_backend/internal/auth"
	"resort_crm_backend/internal/bookings"
	"resort_crm_backend/internal/campaigns"
	"resort_crm_backend/internal/content"
	contentsvc "resort_crm_backend/internal/content/service"
	"resort_crm_backend/internal/dashboard"
	"resort_crm_backend/internal/email"
	"resort_crm_backend/internal/events"
	"resort_crm_backend/internal/guests"
	guestsrepo "resort_crm_backend/internal/guests/repository"
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/internal/http/router"
	"resort_crm_backend/internal/leads"
	"resort_crm_backend/internal/notification"
	"resort_crm_backend/internal/pricing"
	"resort_crm_backend/internal/reviews"
	"resort_crm_backend/internal/scheduler"
	"resort_crm_backend/internal/units"
	"resort_crm_backend/internal/webhook"
	"resort_crm_backend/internal/workflows"
	"resort_crm_backend/platform/clock"
	"resort_crm_backend/platform/config"
	"resort_crm_backend/platform/db"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

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

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()
	clk := clock.System()

	// Storage service for site media uploads (MinIO)
	var store contentsvc.ObjectStore
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure site media bucket", 5, 2*time.Second, func() error {
			return storageSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketSiteMedia())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketSiteMedia())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		store = storageSvc
		log.Info("storage service initialized", "siteMediaBucket", cfg.GetMinioBucketSiteMedia())
	} else {
		log.Info("minio disabled; media uploads unavailable")
	}

	// Scheduler client for delayed campaign sends
	var campaignScheduler campaigns.SendScheduler
	if cfg.GetRedisURL() != "" {
		schedClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer func() { _ = schedClient.Close() }()
		campaignScheduler = schedClient
	} else {
		log.Info("REDIS_URL not configured; scheduled campaign sends disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	unitsModule := units.NewModule(pool, val)
	pricingModule := pricing.NewModule(unitsModule.Repository(), val)
	guestsModule := guests.NewModule(pool)
	bookingsModule := bookings.NewModule(pool, unitsModule.Repository(), guestsModule.Service(), pricingModule.Service(), eventBus, val, log)
	leadsModule := leads.NewModule(pool, eventBus, val, clk, log)
	authModule := auth.NewModule(pool, cfg, val, log)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(pool, sender, bookingsModule.Repository(), guestsrepo.New(pool), unitsModule.Repository(), leadsModule.Repository(), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// Conversion orchestrator: availability, guest resolution, booking
	// creation and the confirmation email
	leadsModule.WireConverter(
		adapters.BookingPort{Bookings: bookingsModule.Service()},
		adapters.GuestPort{Guests: guestsModule.Service()},
		notificationModule,
		eventBus,
		log,
	)

	webhookModule := webhook.NewModule(pool, leadsModule.Service(), eventBus, val, log)
	dashboardModule := dashboard.NewModule(pool, clk)
	contentModule := content.NewModule(pool, store, cfg.GetMinioBucketSiteMedia(), val, log)
	reviewsModule := reviews.NewModule(pool, eventBus, val)
	campaignsModule := campaigns.NewModule(
		pool,
		adapters.GuestMailingListPort{Guests: guestsrepo.New(pool)},
		sender,
		campaignScheduler,
		val,
		log,
	)

	workflowsModule := workflows.NewModule(
		pool,
		leadsModule.Repository(),
		bookingsModule.Repository(),
		adapters.LeadActionPort{Leads: leadsModule.Service()},
		notificationModule,
		val,
		clk,
		log,
	)
	workflowsModule.RegisterHandlers(eventBus)

	if err := workflowsModule.Service().SeedDefaults(ctx); err != nil {
		log.Error("failed to seed default workflows", "error", err)
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
			authModule,
			unitsModule,
			pricingModule,
			guestsModule,
			bookingsModule,
			leadsModule,
			webhookModule,
			dashboardModule,
			contentModule,
			reviewsModule,
			campaignsModule,
			workflowsModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
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
