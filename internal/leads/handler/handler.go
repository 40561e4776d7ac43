// Package handler exposes the leads module over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resort_crm_backend/internal/leads/repository"
	"resort_crm_backend/internal/leads/service"
	"resort_crm_backend/internal/leads/transport"
	"resort_crm_backend/platform/httpkit"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid lead ID"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc *service.Service
}

// New creates a new leads handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// CreatePublic captures a lead from the public website form.
// POST /api/v1/public/leads
func (h *Handler) CreatePublic(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if req.Source == "" {
		req.Source = repository.SourceWebsite
	}
	lead, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	// Public callers only learn that the enquiry was received.
	httpkit.Created(c, gin.H{"id": lead.ID})
}

// Create captures a lead entered by staff.
// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if req.Source == "" {
		req.Source = repository.SourceManual
	}
	lead, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toResponse(lead))
}

// List retrieves leads with optional filters.
// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	filters := repository.ListFilters{}
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if source := c.Query("source"); source != "" {
		filters.Source = &source
	}
	if priority := c.Query("priority"); priority != "" {
		filters.Priority = &priority
	}
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid assigned_to", nil)
			return
		}
		filters.AssignedTo = &id
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	leads, err := h.svc.List(c.Request.Context(), filters)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, toResponse(lead))
	}
	httpkit.OK(c, gin.H{"leads": out})
}

// Get retrieves a lead by ID.
// GET /api/v1/leads/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	lead, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(lead))
}

// Update applies a partial update to a lead.
// PATCH /api/v1/leads/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	lead, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(lead))
}

// UpdateStatus moves a lead between pipeline statuses.
// POST /api/v1/leads/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	lead, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(lead))
}

// Rescore recomputes the quality score and returns the breakdown.
// POST /api/v1/leads/:id/rescore
func (h *Handler) Rescore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	lead, breakdown, err := h.svc.Rescore(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{
		"lead": toResponse(lead),
		"breakdown": transport.ScoreBreakdownResponse{
			Source:       breakdown.Source,
			Completeness: breakdown.Completeness,
			Engagement:   breakdown.Engagement,
			Recency:      breakdown.Recency,
			Historical:   breakdown.Historical,
			Total:        breakdown.Total,
		},
	})
}

// AddCommunication appends a message to the lead's history.
// POST /api/v1/leads/:id/communications
func (h *Handler) AddCommunication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.AddCommunicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	comm, err := h.svc.AddCommunication(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toCommResponse(comm))
}

// ListCommunications retrieves the lead's message history.
// GET /api/v1/leads/:id/communications
func (h *Handler) ListCommunications(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	comms, err := h.svc.ListCommunications(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.CommunicationResponse, 0, len(comms))
	for _, comm := range comms {
		out = append(out, toCommResponse(comm))
	}
	httpkit.OK(c, gin.H{"communications": out})
}

// MarkCommunicationRead flags a message as read.
// POST /api/v1/leads/:id/communications/:comm_id/read
func (h *Handler) MarkCommunicationRead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	commID, err := uuid.Parse(c.Param("comm_id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid communication ID", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.MarkCommunicationRead(c.Request.Context(), leadID, commID)) {
		return
	}
	httpkit.NoContent(c)
}

// Convert converts a lead into a guest with a booking.
// POST /api/v1/leads/:id/convert
func (h *Handler) Convert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.ConvertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	resp, err := h.svc.Convert(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

func toResponse(l repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:                   l.ID,
		Name:                 l.Name,
		Email:                l.Email,
		Phone:                l.Phone,
		Source:               l.Source,
		Status:               l.Status,
		Priority:             l.Priority,
		QualityScore:         l.QualityScore,
		Message:              l.Message,
		Notes:                l.Notes,
		AssignedTo:           l.AssignedTo,
		ConvertedToBookingID: l.ConvertedToBookingID,
		CreatedAt:            l.CreatedAt.Format(time.RFC3339),
	}
	if l.ContactedAt != nil {
		contacted := l.ContactedAt.Format(time.RFC3339)
		resp.ContactedAt = &contacted
	}
	return resp
}

func toCommResponse(comm repository.Communication) transport.CommunicationResponse {
	return transport.CommunicationResponse{
		ID:        comm.ID,
		LeadID:    comm.LeadID,
		Direction: comm.Direction,
		Channel:   comm.Channel,
		Body:      comm.Body,
		IsRead:    comm.IsRead,
		CreatedAt: comm.CreatedAt.Format(time.RFC3339),
	}
}
