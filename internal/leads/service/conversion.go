package service

import (
	"context"
	"math"
	"strings"
	"time"

	"resort_crm_backend/internal/events"
	"resort_crm_backend/internal/leads/repository"
	"resort_crm_backend/internal/leads/transport"
	"resort_crm_backend/platform/apperr"
	"resort_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// BookingPort is the slice of the bookings module the converter needs.
type BookingPort interface {
	IsUnitAvailable(ctx context.Context, unitID uuid.UUID, checkIn, checkOut time.Time) (bool, error)
	Create(ctx context.Context, params BookingParams) (CreatedBooking, error)
}

// BookingParams carries the booking create request from conversion.
type BookingParams struct {
	UnitID          uuid.UUID
	GuestID         uuid.UUID
	LeadID          uuid.UUID
	CheckIn         time.Time
	CheckOut        time.Time
	NumberOfGuests  int
	DepositCents    int64
	SpecialRequests *string
}

// CreatedBooking is the result slice conversion reports back.
type CreatedBooking struct {
	ID        uuid.UUID
	Reference string
}

// GuestPort resolves the guest a converted lead becomes.
type GuestPort interface {
	FindOrCreate(ctx context.Context, firstName, lastName string, email, phone *string) (uuid.UUID, error)
}

// ConfirmationSender sends the booking confirmation email.
type ConfirmationSender interface {
	SendBookingConfirmation(ctx context.Context, email string, bookingID uuid.UUID) error
}

// Converter orchestrates lead-to-booking conversion: availability is
// re-validated at conversion time, the guest profile is found or created from
// the lead's contact details, the booking is inserted with overlap
// protection, and the lead is marked converted exactly once. The confirmation
// email is best effort and never rolls back the conversion.
type Converter struct {
	repo     Repository
	bookings BookingPort
	guests   GuestPort
	email    ConfirmationSender
	bus      events.Bus
	log      *logger.Logger
}

// NewConverter creates a conversion orchestrator.
func NewConverter(repo Repository, bookings BookingPort, guests GuestPort, email ConfirmationSender, bus events.Bus, log *logger.Logger) *Converter {
	return &Converter{repo: repo, bookings: bookings, guests: guests, email: email, bus: bus, log: log}
}

// Convert runs the conversion flow for one lead.
func (c *Converter) Convert(ctx context.Context, leadID uuid.UUID, req transport.ConvertLeadRequest) (transport.ConvertLeadResponse, error) {
	lead, err := c.repo.GetByID(ctx, leadID)
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}
	if lead.Status == repository.StatusConverted {
		return transport.ConvertLeadResponse{}, apperr.Conflict("lead has already been converted")
	}
	if lead.Email == nil && lead.Phone == nil {
		return transport.ConvertLeadResponse{}, apperr.Validation("lead has no contact details to create a guest from")
	}

	checkIn, err := time.Parse(time.DateOnly, req.CheckIn)
	if err != nil {
		return transport.ConvertLeadResponse{}, apperr.Validation("check_in must be YYYY-MM-DD")
	}
	checkOut, err := time.Parse(time.DateOnly, req.CheckOut)
	if err != nil {
		return transport.ConvertLeadResponse{}, apperr.Validation("check_out must be YYYY-MM-DD")
	}
	if !checkOut.After(checkIn) {
		return transport.ConvertLeadResponse{}, apperr.Validation("check_out must be after check_in")
	}

	available, err := c.bookings.IsUnitAvailable(ctx, req.UnitID, checkIn, checkOut)
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}
	if !available {
		return transport.ConvertLeadResponse{}, apperr.Conflict("unit is not available for the requested dates")
	}

	firstName, lastName := splitName(lead.Name)
	guestID, err := c.guests.FindOrCreate(ctx, firstName, lastName, lead.Email, lead.Phone)
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	var depositCents int64
	if req.DepositAmount != nil {
		depositCents = int64(math.Round(*req.DepositAmount * 100))
	}
	booking, err := c.bookings.Create(ctx, BookingParams{
		UnitID:          req.UnitID,
		GuestID:         guestID,
		LeadID:          lead.ID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		NumberOfGuests:  req.NumberOfGuests,
		DepositCents:    depositCents,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	if _, err := c.repo.MarkConverted(ctx, lead.ID, booking.ID); err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	c.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:        events.NewBaseEvent(),
		LeadID:           lead.ID,
		GuestID:          guestID,
		BookingID:        booking.ID,
		BookingReference: booking.Reference,
	})
	c.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		PreviousStatus: lead.Status,
		NewStatus:      repository.StatusConverted,
		BookingID:      &booking.ID,
	})

	resp := transport.ConvertLeadResponse{
		BookingID:        booking.ID,
		BookingReference: booking.Reference,
		GuestID:          guestID,
	}
	if lead.Email != nil && c.email != nil {
		if err := c.email.SendBookingConfirmation(ctx, *lead.Email, booking.ID); err != nil {
			msg := err.Error()
			resp.EmailError = &msg
			c.log.Error("confirmation email failed", "booking_id", booking.ID.String(), "error", msg)
		} else {
			resp.EmailSent = true
		}
	}
	return resp, nil
}

// splitName separates a free-text name into first and last. A single word
// becomes the first name with an empty last name.
func splitName(name string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
