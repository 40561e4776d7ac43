package dashboard

import (
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/platform/clock"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the dashboard bounded context module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the dashboard module.
func NewModule(pool *pgxpool.Pool, clk clock.Clock) *Module {
	return &Module{handler: NewHandler(NewRepository(pool), clk)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dashboard"
}

// RegisterRoutes mounts dashboard routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/dashboard/stats", m.handler.Stats)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
