// Package leads provides the lead pipeline bounded context module: capture,
// quality scoring, communications and conversion into bookings.
package leads

import (
	"resort_crm_backend/internal/events"
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/internal/leads/handler"
	"resort_crm_backend/internal/leads/repository"
	"resort_crm_backend/internal/leads/service"
	"resort_crm_backend/platform/clock"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the leads module. Call WireConverter once
// the bookings and guests modules exist.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, clk clock.Clock, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, val, clk, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc, repo: repo}
}

// WireConverter attaches the conversion orchestrator. The booking, guest and
// email ports come from the composition root.
func (m *Module) WireConverter(bookings service.BookingPort, guests service.GuestPort, email service.ConfirmationSender, bus events.Bus, log *logger.Logger) {
	m.service.AttachConverter(service.NewConverter(m.repo, bookings, guests, email, bus, log))
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for the webhook intake path.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for modules that read lead data.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.POST("/leads", m.handler.CreatePublic)

	group := ctx.Protected.Group("/leads")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/:id", m.handler.Get)
	group.PATCH("/:id", m.handler.Update)
	group.POST("/:id/status", m.handler.UpdateStatus)
	group.POST("/:id/rescore", m.handler.Rescore)
	group.POST("/:id/convert", m.handler.Convert)
	group.GET("/:id/communications", m.handler.ListCommunications)
	group.POST("/:id/communications", m.handler.AddCommunication)
	group.POST("/:id/communications/:comm_id/read", m.handler.MarkCommunicationRead)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
