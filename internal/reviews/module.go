package reviews

import (
	"resort_crm_backend/internal/events"
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the reviews bounded context module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the reviews module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	return &Module{handler: NewHandler(repo, bus, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reviews"
}

// RegisterRoutes mounts review routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.POST("/reviews", m.handler.Submit)
	ctx.Public.GET("/reviews", m.handler.ListApproved)

	staff := ctx.Protected.Group("/reviews")
	staff.GET("", m.handler.List)
	staff.PUT("/:id/approval", m.handler.SetApproval)
	staff.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
