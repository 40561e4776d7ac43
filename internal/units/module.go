// Package units provides the unit inventory bounded context module.
// It manages bookable units, seasonal pricing rates and manual
// availability blocks.
package units

import (
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/internal/units/handler"
	"resort_crm_backend/internal/units/repository"
	"resort_crm_backend/internal/units/service"
	"resort_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the units bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the units module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, val)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "units"
}

// Repository returns the repository for other modules that read unit data.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts unit routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/units", m.handler.ListUnits)
	ctx.Protected.GET("/units/:id", m.handler.GetUnit)

	ctx.Admin.POST("/units", m.handler.CreateUnit)
	ctx.Admin.PATCH("/units/:id", m.handler.UpdateUnit)

	ctx.Admin.GET("/pricing-rates", m.handler.ListRates)
	ctx.Admin.POST("/pricing-rates", m.handler.CreateRate)
	ctx.Admin.PATCH("/pricing-rates/:id", m.handler.UpdateRate)
	ctx.Admin.DELETE("/pricing-rates/:id", m.handler.DeleteRate)

	ctx.Admin.POST("/availability-blocks", m.handler.CreateBlocks)
	ctx.Admin.DELETE("/availability-blocks/:id", m.handler.DeleteBlock)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
