package reviews

import (
	"net/http"
	"strconv"
	"time"

	"resort_crm_backend/internal/events"
	"resort_crm_backend/platform/httpkit"
	"resort_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type submitReviewRequest struct {
	GuestName string  `json:"guest_name" validate:"required,min=2,max=120"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Title     *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Body      *string `json:"body,omitempty" validate:"omitempty,max=4000"`
}

type setApprovalRequest struct {
	IsApproved bool `json:"is_approved"`
}

type reviewResponse struct {
	ID         uuid.UUID `json:"id"`
	GuestName  string    `json:"guest_name"`
	Rating     int       `json:"rating"`
	Title      *string   `json:"title,omitempty"`
	Body       *string   `json:"body,omitempty"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  string    `json:"created_at"`
}

// Handler handles HTTP requests for reviews.
type Handler struct {
	repo *Repository
	bus  events.Bus
	val  *validator.Validator
}

// NewHandler creates a reviews handler.
func NewHandler(repo *Repository, bus events.Bus, val *validator.Validator) *Handler {
	return &Handler{repo: repo, bus: bus, val: val}
}

// Submit captures a guest review for moderation.
// POST /api/v1/public/reviews
func (h *Handler) Submit(c *gin.Context) {
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	review, err := h.repo.Create(c.Request.Context(), Review{
		ID:        uuid.New(),
		GuestName: req.GuestName,
		Email:     req.Email,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	h.bus.Publish(c.Request.Context(), events.ReviewSubmitted{
		BaseEvent: events.NewBaseEvent(),
		ReviewID:  review.ID,
		Rating:    review.Rating,
	})
	httpkit.Created(c, gin.H{"id": review.ID})
}

// ListApproved serves approved reviews plus the aggregate rating.
// GET /api/v1/public/reviews
func (h *Handler) ListApproved(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := h.repo.List(c.Request.Context(), true, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	count, average, err := h.repo.AverageRating(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{
		"reviews":        toResponses(items),
		"total":          count,
		"average_rating": average,
	})
}

// List serves all reviews for moderation.
// GET /api/v1/reviews
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, err := h.repo.List(c.Request.Context(), false, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"reviews": toResponses(items)})
}

// SetApproval approves or hides a review.
// PUT /api/v1/reviews/:id/approval
func (h *Handler) SetApproval(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid review ID", nil)
		return
	}
	var req setApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if httpkit.HandleError(c, h.repo.SetApproved(c.Request.Context(), id, req.IsApproved)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "review updated"})
}

// Delete removes a review.
// DELETE /api/v1/reviews/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid review ID", nil)
		return
	}
	if httpkit.HandleError(c, h.repo.Delete(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func toResponses(items []Review) []reviewResponse {
	out := make([]reviewResponse, 0, len(items))
	for _, review := range items {
		out = append(out, reviewResponse{
			ID:         review.ID,
			GuestName:  review.GuestName,
			Rating:     review.Rating,
			Title:      review.Title,
			Body:       review.Body,
			IsApproved: review.IsApproved,
			CreatedAt:  review.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
