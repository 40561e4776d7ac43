package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"resort_crm_backend/internal/notification/outbox"
)

// Deliver renders and sends one claimed outbox record. Called from the
// worker's asynq handler; a returned error marks the record for retry.
func (m *Module) Deliver(ctx context.Context, rec outbox.Record) error {
	if rec.Kind != KindEmail {
		return fmt.Errorf("unknown outbox kind %q", rec.Kind)
	}

	var payload EmailPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch rec.Template {
	case TemplateBookingConfirmation:
		return m.deliverBookingConfirmation(ctx, payload)
	case TemplateBookingConfirmedStaff:
		return m.deliverBookingStaffAlert(ctx, payload, "Booking confirmed", "confirmed")
	case TemplateBookingCancelledStaff:
		return m.deliverBookingStaffAlert(ctx, payload, "Booking cancelled", "cancelled")
	case TemplateLeadWelcome:
		return m.deliverLeadWelcome(ctx, payload)
	case TemplateHighPriorityLeadAlert:
		return m.deliverHighPriorityLeadAlert(ctx, payload)
	default:
		return fmt.Errorf("unknown email template %q", rec.Template)
	}
}

func (m *Module) deliverBookingConfirmation(ctx context.Context, payload EmailPayload) error {
	booking, err := m.bookings.GetByID(ctx, payload.EntityID)
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}
	guest, err := m.guests.GetByID(ctx, booking.GuestID)
	if err != nil {
		return fmt.Errorf("load guest: %w", err)
	}
	if guest.Email == nil {
		m.log.Info("skipping confirmation email, guest has no email address",
			"booking_id", booking.ID.String())
		return nil
	}
	return m.SendBookingConfirmation(ctx, *guest.Email, booking.ID)
}

func (m *Module) deliverBookingStaffAlert(ctx context.Context, payload EmailPayload, subject, verb string) error {
	to := m.cfg.GetStaffAlertEmail()
	if to == "" {
		return nil
	}
	booking, err := m.bookings.GetByID(ctx, payload.EntityID)
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}
	unit, err := m.units.GetUnitByID(ctx, booking.UnitID)
	if err != nil {
		return fmt.Errorf("load unit: %w", err)
	}
	body := fmt.Sprintf("Booking %s (%s) was %s for %s to %s.",
		booking.BookingReference, unit.Name, verb,
		booking.CheckIn.Format("2006-01-02"), booking.CheckOut.Format("2006-01-02"))
	return m.sender.SendStaffAlertEmail(ctx, to, subject+" - "+booking.BookingReference, subject, body)
}

func (m *Module) deliverLeadWelcome(ctx context.Context, payload EmailPayload) error {
	lead, err := m.leads.GetByID(ctx, payload.EntityID)
	if err != nil {
		return fmt.Errorf("load lead: %w", err)
	}
	if lead.Email == nil {
		return nil
	}
	return m.sender.SendLeadWelcomeEmail(ctx, *lead.Email, lead.Name, m.cfg.GetResortName())
}

func (m *Module) deliverHighPriorityLeadAlert(ctx context.Context, payload EmailPayload) error {
	to := m.cfg.GetStaffAlertEmail()
	if to == "" {
		return nil
	}
	lead, err := m.leads.GetByID(ctx, payload.EntityID)
	if err != nil {
		return fmt.Errorf("load lead: %w", err)
	}
	body := fmt.Sprintf("High priority lead %s (source %s, score %d) needs follow-up.",
		lead.Name, lead.Source, lead.QualityScore)
	return m.sender.SendStaffAlertEmail(ctx, to, "High priority lead - "+lead.Name, "High priority lead", body)
}
