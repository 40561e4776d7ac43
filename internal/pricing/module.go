// Package pricing provides the stay pricing bounded context module.
package pricing

import (
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/internal/pricing/handler"
	"resort_crm_backend/internal/pricing/service"
	"resort_crm_backend/platform/validator"
)

// Module is the pricing bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the pricing module. Rates come from the
// units module's repository through the RateSource port.
func NewModule(rates service.RateSource, val *validator.Validator) *Module {
	svc := service.New(rates)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pricing"
}

// Service returns the pricing service for other modules that price stays.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts pricing routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/calculate-price", m.handler.CalculatePrice)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
