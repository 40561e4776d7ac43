// Package handler exposes the public price quote endpoint.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resort_crm_backend/internal/pricing/service"
	"resort_crm_backend/internal/pricing/transport"
	"resort_crm_backend/platform/httpkit"
	"resort_crm_backend/platform/validator"
)

// Handler handles HTTP requests for price quotes.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new pricing handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// CalculatePrice prices a stay for a unit type.
// GET /api/v1/public/calculate-price
func (h *Handler) CalculatePrice(c *gin.Context) {
	var req transport.CalculatePriceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	checkIn, err := time.Parse(time.DateOnly, req.CheckIn)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "check_in must be YYYY-MM-DD", nil)
		return
	}
	checkOut, err := time.Parse(time.DateOnly, req.CheckOut)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "check_out must be YYYY-MM-DD", nil)
		return
	}

	quote, err := h.svc.QuoteStay(c.Request.Context(), req.UnitType, checkIn, checkOut)
	if httpkit.HandleError(c, err) {
		return
	}

	perNight := make([]transport.NightPrice, 0, len(quote.Nights))
	for _, n := range quote.Nights {
		perNight = append(perNight, transport.NightPrice{
			Date:         n.Date.Format(time.DateOnly),
			Season:       n.Season,
			RatePerNight: float64(n.RateCents) / 100,
		})
	}
	httpkit.OK(c, transport.QuoteResponse{
		UnitType: req.UnitType,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Nights:   len(quote.Nights),
		Currency: "ZAR",
		PerNight: perNight,
		Total:    float64(quote.TotalCents) / 100,
	})
}
