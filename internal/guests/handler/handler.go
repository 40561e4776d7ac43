// Package handler exposes the guests module over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resort_crm_backend/internal/guests/repository"
	"resort_crm_backend/internal/guests/service"
	"resort_crm_backend/platform/httpkit"
)

// Handler handles HTTP requests for guest profiles.
type Handler struct {
	svc *service.Service
}

// New creates a new guests handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type guestResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt string    `json:"created_at"`
}

// List retrieves guests with pagination.
// GET /api/v1/guests
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	guests, err := h.svc.List(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]guestResponse, 0, len(guests))
	for _, g := range guests {
		out = append(out, toResponse(g))
	}
	httpkit.OK(c, gin.H{"guests": out})
}

// Get retrieves a guest by ID.
// GET /api/v1/guests/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid guest ID", nil)
		return
	}
	guest, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(guest))
}

func toResponse(g repository.Guest) guestResponse {
	return guestResponse{
		ID:        g.ID,
		FirstName: g.FirstName,
		LastName:  g.LastName,
		Email:     g.Email,
		Phone:     g.Phone,
		Notes:     g.Notes,
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
	}
}
