package scheduler

import (
	"context"
	"fmt"

	"resort_crm_backend/internal/campaigns"
	"resort_crm_backend/internal/events"
	"resort_crm_backend/platform/config"
	"resort_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes queued tasks. Outbox deliveries are republished on the
// event bus so the notification module handles them; campaign sends run
// through the campaigns service.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	campaigns *campaigns.Service
	repo      *campaigns.Repository
	bus       events.Bus
	log       *logger.Logger
}

func NewWorker(
	cfg config.SchedulerConfig,
	pool *pgxpool.Pool,
	bus events.Bus,
	recipients campaigns.RecipientLister,
	sender campaigns.CampaignSender,
	log *logger.Logger,
) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	repo := campaigns.NewRepository(pool)
	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		campaigns: campaigns.NewService(repo, recipients, sender, log),
		repo:      repo,
		bus:       bus,
		log:       log,
	}

	mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)
	mux.HandleFunc(TaskCampaignSend, w.handleCampaignSend)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, events.NotificationOutboxDue{
		BaseEvent: events.NewBaseEvent(),
		OutboxID:  outboxID,
	})
}

func (w *Worker) handleCampaignSend(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCampaignSendPayload(task)
	if err != nil {
		return err
	}

	campaignID, err := uuid.Parse(payload.CampaignID)
	if err != nil {
		return err
	}

	campaign, err := w.repo.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}

	// Sent or manually sent in the meantime; nothing to do.
	if campaign.Status != campaigns.StatusDraft {
		w.log.Info("scheduled campaign no longer a draft; skipping",
			"campaign_id", campaign.ID.String(),
			"status", campaign.Status)
		return nil
	}

	_, _, err = w.campaigns.SendNow(ctx, campaign)
	return err
}
