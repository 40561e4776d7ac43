// Package handler exposes the bookings module over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resort_crm_backend/internal/bookings/repository"
	"resort_crm_backend/internal/bookings/service"
	"resort_crm_backend/internal/bookings/transport"
	"resort_crm_backend/platform/httpkit"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid booking ID"
)

// Handler handles HTTP requests for bookings and availability.
type Handler struct {
	svc *service.Service
}

// New creates a new bookings handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Availability searches units free for a date range.
// GET /api/v1/public/availability
func (h *Handler) Availability(c *gin.Context) {
	var req transport.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	resp, err := h.svc.Availability(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Create creates a booking from a staff request.
// POST /api/v1/bookings
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	booking, err := h.svc.CreateFromRequest(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, ToResponse(booking))
}

// List retrieves bookings with optional filters.
// GET /api/v1/bookings
func (h *Handler) List(c *gin.Context) {
	filters := repository.ListFilters{}
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if raw := c.Query("unit_id"); raw != "" {
		unitID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid unit_id", nil)
			return
		}
		filters.UnitID = &unitID
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "from must be YYYY-MM-DD", nil)
			return
		}
		filters.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "to must be YYYY-MM-DD", nil)
			return
		}
		filters.To = &to
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.svc.List(c.Request.Context(), filters)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ToResponse(b))
	}
	httpkit.OK(c, gin.H{"bookings": out})
}

// Get retrieves a booking by ID.
// GET /api/v1/bookings/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	booking, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ToResponse(booking))
}

// Confirm transitions a booking to confirmed.
// POST /api/v1/bookings/:id/confirm
func (h *Handler) Confirm(c *gin.Context) {
	h.transition(c, repository.StatusConfirmed)
}

// CheckIn transitions a booking to checked_in.
// POST /api/v1/bookings/:id/check-in
func (h *Handler) CheckIn(c *gin.Context) {
	h.transition(c, repository.StatusCheckedIn)
}

// CheckOut transitions a booking to checked_out.
// POST /api/v1/bookings/:id/check-out
func (h *Handler) CheckOut(c *gin.Context) {
	h.transition(c, repository.StatusCheckedOut)
}

// Cancel transitions a booking to cancelled, freeing its dates.
// POST /api/v1/bookings/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, repository.StatusCancelled)
}

// NoShow marks a confirmed booking as a no-show.
// POST /api/v1/bookings/:id/no-show
func (h *Handler) NoShow(c *gin.Context) {
	h.transition(c, repository.StatusNoShow)
}

// RecordDeposit records a deposit payment.
// POST /api/v1/bookings/:id/deposit
func (h *Handler) RecordDeposit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.RecordDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	booking, err := h.svc.RecordDeposit(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ToResponse(booking))
}

func (h *Handler) transition(c *gin.Context, next string) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	booking, err := h.svc.Transition(c.Request.Context(), id, next)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ToResponse(booking))
}

// ToResponse maps a stored booking to its response shape.
func ToResponse(b repository.Booking) transport.BookingResponse {
	nights := int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
	return transport.BookingResponse{
		ID:               b.ID,
		BookingReference: b.BookingReference,
		UnitID:           b.UnitID,
		GuestID:          b.GuestID,
		LeadID:           b.LeadID,
		CheckIn:          b.CheckIn.Format(time.DateOnly),
		CheckOut:         b.CheckOut.Format(time.DateOnly),
		Nights:           nights,
		NumberOfGuests:   b.NumberOfGuests,
		Status:           b.Status,
		TotalAmount:      float64(b.TotalCents) / 100,
		DepositAmount:    float64(b.DepositCents) / 100,
		BalanceDue:       float64(b.BalanceCents) / 100,
		PaymentStatus:    b.PaymentStatus,
		SpecialRequests:  b.SpecialRequests,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
	}
}
