// Package notification turns domain events into guest and staff email.
// Event handlers only insert outbox records; the worker delivers them, so a
// slow SMTP server never blocks a request. The one exception is the booking
// confirmation sent during lead conversion, which the caller wants a
// synchronous result for.
package notification

import (
	"context"
	"fmt"
	"time"

	bookingsrepo "resort_crm_backend/internal/bookings/repository"
	"resort_crm_backend/internal/email"
	"resort_crm_backend/internal/events"
	guestsrepo "resort_crm_backend/internal/guests/repository"
	leadsrepo "resort_crm_backend/internal/leads/repository"
	"resort_crm_backend/internal/notification/outbox"
	unitsrepo "resort_crm_backend/internal/units/repository"
	"resort_crm_backend/platform/config"
	"resort_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Outbox templates the deliverer knows how to render.
const (
	TemplateBookingConfirmation   = "booking_confirmation"
	TemplateBookingConfirmedStaff = "booking_confirmed_internal"
	TemplateLeadWelcome           = "lead_welcome"
	TemplateHighPriorityLeadAlert = "lead_high_priority_internal"
	TemplateBookingCancelledStaff = "booking_cancelled_internal"
)

// KindEmail is the only outbox kind in use.
const KindEmail = "email"

// Retry policy for failed deliveries.
const (
	maxOutboxRetryAttempts = 5
	outboxRetryBaseDelay   = time.Minute
	outboxRetryMaxDelay    = 60 * time.Minute
)

// EmailPayload is the JSON body of an email outbox record.
type EmailPayload struct {
	EntityType string                 `json:"entity_type"`
	EntityID   uuid.UUID              `json:"entity_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// BookingReader loads bookings for email rendering.
type BookingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (bookingsrepo.Booking, error)
}

// GuestReader loads guest contact details.
type GuestReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (guestsrepo.Guest, error)
}

// UnitReader loads unit names for email rendering.
type UnitReader interface {
	GetUnitByID(ctx context.Context, id uuid.UUID) (unitsrepo.Unit, error)
}

// LeadReader loads leads for welcome and alert emails.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error)
}

// Module subscribes to domain events and queues notifications.
type Module struct {
	outbox   *outbox.Repository
	sender   email.Sender
	bookings BookingReader
	guests   GuestReader
	units    UnitReader
	leads    LeadReader
	cfg      config.NotificationConfig
	log      *logger.Logger
}

// New creates the notification module.
func New(
	pool *pgxpool.Pool,
	sender email.Sender,
	bookings BookingReader,
	guests GuestReader,
	units UnitReader,
	leads LeadReader,
	cfg config.NotificationConfig,
	log *logger.Logger,
) *Module {
	return &Module{
		outbox:   outbox.New(pool),
		sender:   sender,
		bookings: bookings,
		guests:   guests,
		units:    units,
		leads:    leads,
		cfg:      cfg,
		log:      log,
	}
}

// Outbox exposes the outbox repository for the worker dispatcher.
func (m *Module) Outbox() *outbox.Repository {
	return m.outbox
}

// RegisterHandlers subscribes to the events that produce notifications.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.BookingStatusChanged{}.EventName(), m)
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), m)
}

// Handle queues outbox records for events that warrant an email.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.BookingStatusChanged:
		switch e.NewStatus {
		case bookingsrepo.StatusConfirmed:
			m.enqueue(ctx, TemplateBookingConfirmation, EmailPayload{EntityType: "booking", EntityID: e.BookingID})
			if m.cfg.GetStaffAlertEmail() != "" {
				m.enqueue(ctx, TemplateBookingConfirmedStaff, EmailPayload{EntityType: "booking", EntityID: e.BookingID})
			}
		case bookingsrepo.StatusCancelled:
			if m.cfg.GetStaffAlertEmail() != "" {
				m.enqueue(ctx, TemplateBookingCancelledStaff, EmailPayload{EntityType: "booking", EntityID: e.BookingID})
			}
		}
		return nil
	case events.LeadCreated:
		if e.Email != "" {
			m.enqueue(ctx, TemplateLeadWelcome, EmailPayload{EntityType: "lead", EntityID: e.LeadID})
		}
		if e.Priority == "high" && m.cfg.GetStaffAlertEmail() != "" {
			m.enqueue(ctx, TemplateHighPriorityLeadAlert, EmailPayload{EntityType: "lead", EntityID: e.LeadID})
		}
		return nil
	case events.NotificationOutboxDue:
		return m.handleOutboxDue(ctx, e)
	default:
		return nil
	}
}

// handleOutboxDue delivers a claimed outbox record. Failures are retried with
// exponential backoff until the attempt budget runs out, then marked failed.
func (m *Module) handleOutboxDue(ctx context.Context, e events.NotificationOutboxDue) error {
	rec, err := m.outbox.GetByID(ctx, e.OutboxID)
	if err != nil {
		return err
	}
	if rec.Status == outbox.StatusSucceeded {
		return nil
	}
	if err := m.outbox.MarkProcessing(ctx, rec.ID); err != nil {
		return err
	}

	if err := m.Deliver(ctx, rec); err != nil {
		m.handleDeliveryError(ctx, rec, err)
		return err
	}

	if err := m.outbox.MarkSucceeded(ctx, rec.ID); err != nil {
		return err
	}
	m.log.Info("notification delivered", "outbox_id", rec.ID.String(), "template", rec.Template)
	return nil
}

func (m *Module) handleDeliveryError(ctx context.Context, rec outbox.Record, deliveryErr error) {
	attempt := rec.Attempts + 1
	if attempt >= maxOutboxRetryAttempts {
		_ = m.outbox.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Error("notification delivery exhausted retries",
			"outbox_id", rec.ID.String(),
			"template", rec.Template,
			"attempt", attempt,
			"error", deliveryErr.Error())
		return
	}

	retryAt := time.Now().UTC().Add(outboxRetryDelay(attempt))
	if err := m.outbox.ScheduleRetry(ctx, rec.ID, retryAt, deliveryErr.Error()); err != nil {
		_ = m.outbox.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Error("notification retry scheduling failed",
			"outbox_id", rec.ID.String(),
			"error", err.Error())
		return
	}
	m.log.Info("notification delivery retry scheduled",
		"outbox_id", rec.ID.String(),
		"template", rec.Template,
		"attempt", attempt,
		"retry_at", retryAt.Format(time.RFC3339),
		"error", deliveryErr.Error())
}

func outboxRetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := outboxRetryBaseDelay << (attempt - 1)
	if delay > outboxRetryMaxDelay {
		return outboxRetryMaxDelay
	}
	return delay
}

// EnqueueTemplateEmail queues a workflow-triggered email. Satisfies the
// workflow executor's email port.
func (m *Module) EnqueueTemplateEmail(ctx context.Context, template, entityType string, entityID uuid.UUID, data map[string]interface{}) error {
	_, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Kind:     KindEmail,
		Template: template,
		Payload:  EmailPayload{EntityType: entityType, EntityID: entityID, Data: data},
	})
	return err
}

// SendBookingConfirmation sends the guest confirmation synchronously.
// Satisfies the lead converter's confirmation port: the conversion response
// reports whether the email went out.
func (m *Module) SendBookingConfirmation(ctx context.Context, toEmail string, bookingID uuid.UUID) error {
	data, err := m.bookingConfirmationData(ctx, bookingID)
	if err != nil {
		return err
	}
	return m.sender.SendBookingConfirmationEmail(ctx, toEmail, data)
}

func (m *Module) bookingConfirmationData(ctx context.Context, bookingID uuid.UUID) (email.BookingConfirmationData, error) {
	booking, err := m.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return email.BookingConfirmationData{}, fmt.Errorf("load booking: %w", err)
	}
	guest, err := m.guests.GetByID(ctx, booking.GuestID)
	if err != nil {
		return email.BookingConfirmationData{}, fmt.Errorf("load guest: %w", err)
	}
	unit, err := m.units.GetUnitByID(ctx, booking.UnitID)
	if err != nil {
		return email.BookingConfirmationData{}, fmt.Errorf("load unit: %w", err)
	}

	nights := int(booking.CheckOut.Sub(booking.CheckIn).Hours() / 24)
	return email.BookingConfirmationData{
		GuestName:        guest.FirstName + " " + guest.LastName,
		BookingReference: booking.BookingReference,
		UnitName:         unit.Name,
		CheckIn:          booking.CheckIn.Format("2006-01-02"),
		CheckOut:         booking.CheckOut.Format("2006-01-02"),
		Nights:           nights,
		TotalFormatted:   email.FormatCurrencyZAR(booking.TotalCents),
		DepositFormatted: email.FormatCurrencyZAR(booking.DepositCents),
		BalanceFormatted: email.FormatCurrencyZAR(booking.BalanceCents),
		ResortName:       m.cfg.GetResortName(),
	}, nil
}

func (m *Module) enqueue(ctx context.Context, template string, payload EmailPayload) {
	if _, err := m.outbox.Insert(ctx, outbox.InsertParams{Kind: KindEmail, Template: template, Payload: payload}); err != nil {
		m.log.Error("enqueue notification failed", "template", template, "error", err.Error())
	}
}
