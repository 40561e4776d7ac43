package webhook

import (
	"context"
	"net/http"

	"resort_crm_backend/internal/events"
	leadsrepo "resort_crm_backend/internal/leads/repository"
	leadstransport "resort_crm_backend/internal/leads/transport"
	"resort_crm_backend/platform/httpkit"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadIntake is the slice of the leads module the webhook needs.
type LeadIntake interface {
	Create(ctx context.Context, req leadstransport.CreateLeadRequest) (leadsrepo.Lead, error)
}

// Handler processes inbound webhook submissions and manages API keys.
type Handler struct {
	leads LeadIntake
	repo  *Repository
	bus   events.Bus
	val   *validator.Validator
	log   *logger.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(leads LeadIntake, repo *Repository, bus events.Bus, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{leads: leads, repo: repo, bus: bus, val: val, log: log}
}

// leadSubmission is the inbound payload. Ad platforms and site forms POST
// this shape with their API key.
type leadSubmission struct {
	Name    string  `json:"name" validate:"required,min=2,max=120"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty"`
	Message *string `json:"message,omitempty" validate:"omitempty,max=4000"`
	Source  string  `json:"source,omitempty" validate:"omitempty,oneof=meta_ads website email phone other"`
}

type createKeyRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

// SubmitLead captures a lead from an authenticated external caller.
// POST /api/v1/webhooks/leads
func (h *Handler) SubmitLead(c *gin.Context) {
	var req leadSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	source := req.Source
	if source == "" {
		source = leadsrepo.SourceMetaAds
	}

	lead, err := h.leads.Create(c.Request.Context(), leadstransport.CreateLeadRequest{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
		Source:  source,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	keyName := c.GetString("webhookKeyName")
	h.bus.Publish(c.Request.Context(), events.WebhookLeadCreated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		SourceDomain: keyName,
	})
	h.log.Info("webhook lead captured", "lead_id", lead.ID.String(), "key", keyName)

	httpkit.Created(c, gin.H{"id": lead.ID})
}

// CreateKey issues a new API key. The plaintext key appears in this response
// only.
// POST /api/v1/admin/webhook-keys
func (h *Handler) CreateKey(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	plaintext, hash, err := GenerateAPIKey()
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not generate key", nil)
		return
	}
	key, err := h.repo.Create(c.Request.Context(), req.Name, hash)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, gin.H{
		"id":      key.ID,
		"name":    key.Name,
		"api_key": plaintext,
	})
}

// ListKeys lists API keys without their hashes.
// GET /api/v1/admin/webhook-keys
func (h *Handler) ListKeys(c *gin.Context) {
	keys, err := h.repo.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]gin.H, 0, len(keys))
	for _, key := range keys {
		item := gin.H{
			"id":         key.ID,
			"name":       key.Name,
			"is_active":  key.IsActive,
			"created_at": key.CreatedAt,
		}
		if key.LastUsedAt != nil {
			item["last_used_at"] = key.LastUsedAt
		}
		out = append(out, item)
	}
	httpkit.OK(c, gin.H{"keys": out})
}

// DeactivateKey disables an API key.
// DELETE /api/v1/admin/webhook-keys/:id
func (h *Handler) DeactivateKey(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid key ID", nil)
		return
	}
	if httpkit.HandleError(c, h.repo.Deactivate(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}
