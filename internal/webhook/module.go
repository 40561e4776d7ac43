package webhook

import (
	"resort_crm_backend/internal/events"
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the webhook bounded context module.
type Module struct {
	repo    *Repository
	handler *Handler
}

// NewModule creates and initializes the webhook module.
func NewModule(pool *pgxpool.Pool, leads LeadIntake, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{
		repo:    repo,
		handler: NewHandler(leads, repo, bus, val, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the intake endpoint behind API-key auth and the key
// management endpoints behind admin auth.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	hooks := ctx.V1.Group("/webhooks")
	hooks.Use(APIKeyAuthMiddleware(m.repo))
	hooks.POST("/leads", m.handler.SubmitLead)

	keys := ctx.Admin.Group("/webhook-keys")
	keys.POST("", m.handler.CreateKey)
	keys.GET("", m.handler.ListKeys)
	keys.DELETE("/:id", m.handler.DeactivateKey)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
