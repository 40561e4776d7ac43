package campaigns

import (
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the campaigns bounded context module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the campaigns module.
func NewModule(pool *pgxpool.Pool, recipients RecipientLister, sender CampaignSender, scheduler SendScheduler, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, recipients, sender, log)
	return &Module{handler: NewHandler(repo, svc, scheduler, val, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "campaigns"
}

// RegisterRoutes mounts campaign management routes behind admin auth.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	admin := ctx.Admin.Group("/campaigns")
	admin.POST("", m.handler.Create)
	admin.GET("", m.handler.List)
	admin.GET("/:id", m.handler.Get)
	admin.PUT("/:id", m.handler.Update)
	admin.DELETE("/:id", m.handler.Delete)
	admin.POST("/:id/send", m.handler.Send)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
