// Package guests provides the guest profile bounded context module.
package guests

import (
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/internal/guests/handler"
	"resort_crm_backend/internal/guests/repository"
	"resort_crm_backend/internal/guests/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the guests bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the guests module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "guests"
}

// Service returns the guest service for the conversion flow.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts guest routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/guests", m.handler.List)
	ctx.Protected.GET("/guests/:id", m.handler.Get)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
