// Package bookings provides the booking bounded context module: availability
// search, booking creation with overlap protection, and the stay lifecycle.
package bookings

import (
	"context"

	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/internal/bookings/handler"
	"resort_crm_backend/internal/bookings/repository"
	"resort_crm_backend/internal/bookings/service"
	"resort_crm_backend/internal/events"
	guestsvc "resort_crm_backend/internal/guests/service"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the bookings bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// guestAdapter narrows the guests service to the identity slice bookings need.
type guestAdapter struct {
	guests *guestsvc.Service
}

func (a guestAdapter) Get(ctx context.Context, id uuid.UUID) (service.GuestIdentity, error) {
	guest, err := a.guests.Get(ctx, id)
	if err != nil {
		return service.GuestIdentity{}, err
	}
	return service.GuestIdentity{ID: guest.ID, Email: guest.Email}, nil
}

func (a guestAdapter) FindOrCreate(ctx context.Context, firstName, lastName string, email, phone *string) (service.GuestIdentity, error) {
	guest, err := a.guests.FindOrCreate(ctx, guestsvc.FindOrCreateParams{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     phone,
	})
	if err != nil {
		return service.GuestIdentity{}, err
	}
	return service.GuestIdentity{ID: guest.ID, Email: guest.Email}, nil
}

// NewModule creates and initializes the bookings module.
func NewModule(
	pool *pgxpool.Pool,
	units service.UnitSource,
	guests *guestsvc.Service,
	pricer service.Pricer,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, units, guestAdapter{guests: guests}, pricer, bus, val, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "bookings"
}

// Service returns the booking service for the conversion flow.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for modules that read booking data.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts booking routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/availability", m.handler.Availability)

	group := ctx.Protected.Group("/bookings")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/confirm", m.handler.Confirm)
	group.POST("/:id/check-in", m.handler.CheckIn)
	group.POST("/:id/check-out", m.handler.CheckOut)
	group.POST("/:id/cancel", m.handler.Cancel)
	group.POST("/:id/no-show", m.handler.NoShow)
	group.POST("/:id/deposit", m.handler.RecordDeposit)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
