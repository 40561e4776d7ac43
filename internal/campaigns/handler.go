package campaigns

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"resort_crm_backend/platform/httpkit"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Recipient is an addressable guest on the mailing list.
type Recipient struct {
	Email string
	Name  string
}

// RecipientLister supplies the guests a campaign goes out to.
type RecipientLister interface {
	ListRecipients(ctx context.Context) ([]Recipient, error)
}

// CampaignSender delivers a single campaign email.
type CampaignSender interface {
	SendCampaignEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// SendScheduler queues a campaign for delivery at a future time.
type SendScheduler interface {
	ScheduleCampaignSend(ctx context.Context, campaignID uuid.UUID, runAt time.Time) error
}

type upsertCampaignRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=200"`
	Subject     string     `json:"subject" validate:"required,min=2,max=300"`
	Body        string     `json:"body" validate:"required"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

type campaignResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	SentCount   int        `json:"sent_count"`
	CreatedAt   string     `json:"created_at"`
}

// Handler handles HTTP requests for campaigns.
type Handler struct {
	repo      *Repository
	svc       *Service
	scheduler SendScheduler
	val       *validator.Validator
	log       *logger.Logger
}

// NewHandler creates a campaigns handler. scheduler may be nil when the
// scheduler backend is not configured; scheduled sends are then rejected.
func NewHandler(repo *Repository, svc *Service, scheduler SendScheduler, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{repo: repo, svc: svc, scheduler: scheduler, val: val, log: log}
}

// Create registers a new draft campaign.
// POST /api/v1/admin/campaigns
func (h *Handler) Create(c *gin.Context) {
	var req upsertCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	if req.ScheduledAt != nil && h.scheduler == nil {
		httpkit.Error(c, http.StatusBadRequest, "scheduled sends are not available", nil)
		return
	}

	campaign, err := h.repo.Create(c.Request.Context(), Campaign{
		ID:          uuid.New(),
		Name:        req.Name,
		Subject:     req.Subject,
		Body:        req.Body,
		ScheduledAt: req.ScheduledAt,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	if campaign.ScheduledAt != nil {
		if err := h.scheduler.ScheduleCampaignSend(c.Request.Context(), campaign.ID, *campaign.ScheduledAt); err != nil {
			h.log.Error("schedule campaign send", "campaign_id", campaign.ID.String(), "error", err)
		}
	}
	httpkit.Created(c, toResponse(campaign))
}

// List serves campaigns newest first.
// GET /api/v1/admin/campaigns
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, err := h.repo.List(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]campaignResponse, 0, len(items))
	for _, campaign := range items {
		out = append(out, toResponse(campaign))
	}
	httpkit.OK(c, gin.H{"campaigns": out})
}

// Get serves a single campaign.
// GET /api/v1/admin/campaigns/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid campaign ID", nil)
		return
	}
	campaign, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(campaign))
}

// Update edits a draft campaign.
// PUT /api/v1/admin/campaigns/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid campaign ID", nil)
		return
	}
	var req upsertCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	campaign, err := h.repo.Update(c.Request.Context(), Campaign{
		ID:          id,
		Name:        req.Name,
		Subject:     req.Subject,
		Body:        req.Body,
		ScheduledAt: req.ScheduledAt,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(campaign))
}

// Delete removes a draft campaign.
// DELETE /api/v1/admin/campaigns/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid campaign ID", nil)
		return
	}
	if httpkit.HandleError(c, h.repo.Delete(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

// Send delivers a draft campaign immediately.
// POST /api/v1/admin/campaigns/:id/send
func (h *Handler) Send(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid campaign ID", nil)
		return
	}
	ctx := c.Request.Context()

	campaign, err := h.repo.GetByID(ctx, id)
	if httpkit.HandleError(c, err) {
		return
	}
	sent, failed, err := h.svc.SendNow(ctx, campaign)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"sent": sent, "failed": failed})
}

func toResponse(campaign Campaign) campaignResponse {
	return campaignResponse{
		ID:          campaign.ID,
		Name:        campaign.Name,
		Subject:     campaign.Subject,
		Body:        campaign.Body,
		Status:      campaign.Status,
		ScheduledAt: campaign.ScheduledAt,
		SentCount:   campaign.SentCount,
		CreatedAt:   campaign.CreatedAt.Format(time.RFC3339),
	}
}
