// Package handler exposes the units module over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resort_crm_backend/internal/units/repository"
	"resort_crm_backend/internal/units/service"
	"resort_crm_backend/internal/units/transport"
	"resort_crm_backend/platform/httpkit"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid unit ID"
)

// Handler handles HTTP requests for units, rates and availability blocks.
type Handler struct {
	svc *service.Service
}

// New creates a new units handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateUnit creates a new unit.
// POST /api/v1/admin/units
func (h *Handler) CreateUnit(c *gin.Context) {
	var req transport.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	unit, err := h.svc.CreateUnit(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toUnitResponse(unit))
}

// ListUnits retrieves all units.
// GET /api/v1/units
func (h *Handler) ListUnits(c *gin.Context) {
	units, err := h.svc.ListUnits(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitResponse(u))
	}
	httpkit.OK(c, gin.H{"units": out})
}

// GetUnit retrieves a unit by ID.
// GET /api/v1/units/:id
func (h *Handler) GetUnit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	unit, err := h.svc.GetUnit(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toUnitResponse(unit))
}

// UpdateUnit applies a partial update to a unit.
// PATCH /api/v1/admin/units/:id
func (h *Handler) UpdateUnit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	unit, err := h.svc.UpdateUnit(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toUnitResponse(unit))
}

// CreateRate creates a seasonal pricing rate.
// POST /api/v1/admin/pricing-rates
func (h *Handler) CreateRate(c *gin.Context) {
	var req transport.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	rate, err := h.svc.CreateRate(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toRateResponse(rate))
}

// ListRates retrieves all pricing rates.
// GET /api/v1/admin/pricing-rates
func (h *Handler) ListRates(c *gin.Context) {
	rates, err := h.svc.ListRates(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.RateResponse, 0, len(rates))
	for _, r := range rates {
		out = append(out, toRateResponse(r))
	}
	httpkit.OK(c, gin.H{"pricing_rates": out})
}

// UpdateRate applies a partial update to a pricing rate.
// PATCH /api/v1/admin/pricing-rates/:id
func (h *Handler) UpdateRate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid rate ID", nil)
		return
	}
	var req transport.UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	rate, err := h.svc.UpdateRate(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toRateResponse(rate))
}

// DeleteRate removes a pricing rate.
// DELETE /api/v1/admin/pricing-rates/:id
func (h *Handler) DeleteRate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid rate ID", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteRate(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

// CreateBlocks blocks a unit over a date range.
// POST /api/v1/admin/availability-blocks
func (h *Handler) CreateBlocks(c *gin.Context) {
	var req transport.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	blocks, err := h.svc.CreateBlocks(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.BlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toBlockResponse(b))
	}
	httpkit.Created(c, gin.H{"blocks": out})
}

// DeleteBlock removes an availability block.
// DELETE /api/v1/admin/availability-blocks/:id
func (h *Handler) DeleteBlock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid block ID", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteBlock(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func toUnitResponse(u repository.Unit) transport.UnitResponse {
	return transport.UnitResponse{
		ID:          u.ID,
		Name:        u.Name,
		UnitType:    u.UnitType,
		Description: u.Description,
		MaxGuests:   u.MaxGuests,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

func toRateResponse(r repository.PricingRate) transport.RateResponse {
	return transport.RateResponse{
		ID:           r.ID,
		UnitType:     r.UnitType,
		Season:       r.Season,
		RatePerNight: float64(r.RateCents) / 100,
		StartDate:    r.StartDate.Format(time.DateOnly),
		EndDate:      r.EndDate.Format(time.DateOnly),
		IsActive:     r.IsActive,
	}
}

func toBlockResponse(b repository.AvailabilityBlock) transport.BlockResponse {
	return transport.BlockResponse{
		ID:        b.ID,
		UnitID:    b.UnitID,
		BlockDate: b.BlockDate.Format(time.DateOnly),
		Reason:    b.Reason,
	}
}
