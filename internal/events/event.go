// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"resort_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is captured (form, webhook, manual).
type LeadCreated struct {
	BaseEvent
	LeadID       uuid.UUID `json:"lead_id"`
	Source       string    `json:"source"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	QualityScore int       `json:"quality_score"`
	Priority     string    `json:"priority"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadStatusChanged is published when a lead moves between pipeline statuses,
// including the converted transition.
type LeadStatusChanged struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"lead_id"`
	PreviousStatus string     `json:"previous_status"`
	NewStatus      string     `json:"new_status"`
	BookingID      *uuid.UUID `json:"booking_id,omitempty"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status_changed" }

// LeadConverted is published when a lead becomes a guest with a booking.
type LeadConverted struct {
	BaseEvent
	LeadID           uuid.UUID `json:"lead_id"`
	GuestID          uuid.UUID `json:"guest_id"`
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
}

func (e LeadConverted) EventName() string { return "leads.converted" }

// WebhookLeadCreated is published when a lead arrives through the inbound
// webhook (ad platforms, external site forms).
type WebhookLeadCreated struct {
	BaseEvent
	LeadID       uuid.UUID `json:"lead_id"`
	SourceDomain string    `json:"source_domain"`
}

func (e WebhookLeadCreated) EventName() string { return "webhook.lead.created" }

// =============================================================================
// Bookings Domain Events
// =============================================================================

// BookingCreated is published when a booking is inserted (conversion or
// direct staff entry).
type BookingCreated struct {
	BaseEvent
	BookingID        uuid.UUID  `json:"booking_id"`
	BookingReference string     `json:"booking_reference"`
	GuestID          uuid.UUID  `json:"guest_id"`
	UnitID           uuid.UUID  `json:"unit_id"`
	LeadID           *uuid.UUID `json:"lead_id,omitempty"`
	CheckIn          string     `json:"check_in"`
	CheckOut         string     `json:"check_out"`
	TotalCents       int64      `json:"total_cents"`
}

func (e BookingCreated) EventName() string { return "bookings.created" }

// BookingStatusChanged is published on confirm, check-in, check-out,
// cancellation and no-show transitions.
type BookingStatusChanged struct {
	BaseEvent
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	PreviousStatus   string    `json:"previous_status"`
	NewStatus        string    `json:"new_status"`
}

func (e BookingStatusChanged) EventName() string { return "bookings.status_changed" }

// =============================================================================
// Reviews Domain Events
// =============================================================================

// ReviewSubmitted is published when a guest submits a review.
type ReviewSubmitted struct {
	BaseEvent
	ReviewID uuid.UUID `json:"review_id"`
	Rating   int       `json:"rating"`
}

func (e ReviewSubmitted) EventName() string { return "reviews.submitted" }

// =============================================================================
// Notification Events
// =============================================================================

// NotificationOutboxDue is published by the worker when an outbox record is
// due for delivery.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outbox_id"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
