// Package workflows provides the automation bounded context module. It
// listens for lead and booking events and runs the matching stored
// workflows.
package workflows

import (
	"context"
	"time"

	bookingsrepo "resort_crm_backend/internal/bookings/repository"
	"resort_crm_backend/internal/events"
	apphttp "resort_crm_backend/internal/http"
	leadsrepo "resort_crm_backend/internal/leads/repository"
	"resort_crm_backend/internal/workflows/engine"
	"resort_crm_backend/internal/workflows/handler"
	"resort_crm_backend/internal/workflows/repository"
	"resort_crm_backend/internal/workflows/service"
	"resort_crm_backend/platform/clock"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the workflows bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
	log     *logger.Logger
}

// snapshotSource builds condition-evaluation snapshots from the lead and
// booking rows a trigger fired for, including the synthetic
// hours_since_created field.
type snapshotSource struct {
	leads    *leadsrepo.Repo
	bookings *bookingsrepo.Repo
	clock    clock.Clock
}

func (s snapshotSource) Snapshot(ctx context.Context, entityType string, entityID uuid.UUID) (map[string]interface{}, error) {
	switch entityType {
	case service.EntityLead:
		lead, err := s.leads.GetByID(ctx, entityID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"name":                lead.Name,
			"email":               strOrNil(lead.Email),
			"phone":               strOrNil(lead.Phone),
			"source":              lead.Source,
			"status":              lead.Status,
			"priority":            lead.Priority,
			"quality_score":       float64(lead.QualityScore),
			"message":             strOrNil(lead.Message),
			"notes":               strOrNil(lead.Notes),
			"assigned_to":         uuidOrNil(lead.AssignedTo),
			"hours_since_created": s.clock.Now().Sub(lead.CreatedAt).Hours(),
		}, nil
	case service.EntityBooking:
		booking, err := s.bookings.GetByID(ctx, entityID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"booking_reference":   booking.BookingReference,
			"unit_id":             booking.UnitID.String(),
			"status":              booking.Status,
			"check_in":            booking.CheckIn.Format(time.DateOnly),
			"check_out":           booking.CheckOut.Format(time.DateOnly),
			"number_of_guests":    float64(booking.NumberOfGuests),
			"total_amount":        float64(booking.TotalCents) / 100,
			"payment_status":      booking.PaymentStatus,
			"hours_since_created": s.clock.Now().Sub(booking.CreatedAt).Hours(),
		}, nil
	default:
		return map[string]interface{}{}, nil
	}
}

func strOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func uuidOrNil(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

// NewModule creates and initializes the workflows module. Lead actions and
// email delivery come from the leads and notification modules; task creation
// is backed by this module's own repository.
func NewModule(
	pool *pgxpool.Pool,
	leads *leadsrepo.Repo,
	bookings *bookingsrepo.Repo,
	leadActions service.LeadActions,
	email service.EmailEnqueuer,
	val *validator.Validator,
	clk clock.Clock,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	executor := &service.DefaultExecutor{
		Leads: leadActions,
		Email: email,
		Tasks: service.RepoTaskCreator{Repo: repo, Clock: clk},
	}
	snapshots := snapshotSource{leads: leads, bookings: bookings, clock: clk}
	svc := service.New(repo, snapshots, executor, clk, log)
	h := handler.New(svc, repo, val)

	return &Module{handler: h, service: svc, repo: repo, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "workflows"
}

// Service returns the workflow service for seeding and direct triggering.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository, which also stores workflow tasks.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts workflow routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/workflows")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/:id", m.handler.Get)
	group.PATCH("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
	group.GET("/:id/executions", m.handler.ListExecutions)

	tasks := ctx.Protected.Group("/tasks")
	tasks.GET("", m.handler.ListTasks)
	tasks.POST("/:id/complete", m.handler.CompleteTask)
}

// RegisterHandlers subscribes the engine to the domain events that can
// trigger workflows.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), m)
	bus.Subscribe(events.BookingCreated{}.EventName(), m)
	bus.Subscribe(events.BookingStatusChanged{}.EventName(), m)
}

// Handle routes events into the trigger engine. Event fields ride along as
// context data and override the stored snapshot.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return m.service.HandleTrigger(ctx, engine.TriggerLeadCreated, service.EntityLead, e.LeadID, map[string]interface{}{
			"source":        e.Source,
			"quality_score": float64(e.QualityScore),
			"priority":      e.Priority,
		})
	case events.LeadStatusChanged:
		return m.service.HandleTrigger(ctx, engine.TriggerLeadStatusChanged, service.EntityLead, e.LeadID, map[string]interface{}{
			"previous_status": e.PreviousStatus,
			"new_status":      e.NewStatus,
			"status":          e.NewStatus,
		})
	case events.BookingCreated:
		return m.service.HandleTrigger(ctx, engine.TriggerBookingCreated, service.EntityBooking, e.BookingID, map[string]interface{}{
			"booking_reference": e.BookingReference,
			"total_amount":      float64(e.TotalCents) / 100,
		})
	case events.BookingStatusChanged:
		return m.service.HandleTrigger(ctx, engine.TriggerBookingStatusChanged, service.EntityBooking, e.BookingID, map[string]interface{}{
			"previous_status": e.PreviousStatus,
			"new_status":      e.NewStatus,
			"status":          e.NewStatus,
		})
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
