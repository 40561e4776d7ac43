// Package adapters bridges module boundaries: it implements the narrow ports
// one module declares with the services another module exposes, keeping the
// modules free of direct dependencies on each other.
package adapters

import (
	"context"
	"time"

	bookingsvc "resort_crm_backend/internal/bookings/service"
	"resort_crm_backend/internal/campaigns"
	guestsrepo "resort_crm_backend/internal/guests/repository"
	guestsvc "resort_crm_backend/internal/guests/service"
	leadsvc "resort_crm_backend/internal/leads/service"
	workflowsvc "resort_crm_backend/internal/workflows/service"

	"github.com/google/uuid"
)

// BookingPort adapts the bookings service to the lead converter's port.
type BookingPort struct {
	Bookings *bookingsvc.Service
}

func (a BookingPort) IsUnitAvailable(ctx context.Context, unitID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	return a.Bookings.IsUnitAvailable(ctx, unitID, checkIn, checkOut)
}

func (a BookingPort) Create(ctx context.Context, params leadsvc.BookingParams) (leadsvc.CreatedBooking, error) {
	leadID := params.LeadID
	booking, err := a.Bookings.Create(ctx, bookingsvc.CreateParams{
		UnitID:          params.UnitID,
		GuestID:         params.GuestID,
		LeadID:          &leadID,
		CheckIn:         params.CheckIn,
		CheckOut:        params.CheckOut,
		NumberOfGuests:  params.NumberOfGuests,
		DepositCents:    params.DepositCents,
		SpecialRequests: params.SpecialRequests,
	})
	if err != nil {
		return leadsvc.CreatedBooking{}, err
	}
	return leadsvc.CreatedBooking{ID: booking.ID, Reference: booking.BookingReference}, nil
}

// GuestPort adapts the guests service to the lead converter's port.
type GuestPort struct {
	Guests *guestsvc.Service
}

func (a GuestPort) FindOrCreate(ctx context.Context, firstName, lastName string, email, phone *string) (uuid.UUID, error) {
	guest, err := a.Guests.FindOrCreate(ctx, guestsvc.FindOrCreateParams{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     phone,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return guest.ID, nil
}

// LeadActionPort adapts the leads service to the workflow executor's
// lead actions port.
type LeadActionPort struct {
	Leads *leadsvc.Service
}

func (a LeadActionPort) Assign(ctx context.Context, leadID, userID uuid.UUID) error {
	return a.Leads.Assign(ctx, leadID, userID)
}

func (a LeadActionPort) UpdateStatus(ctx context.Context, leadID uuid.UUID, status string) error {
	return a.Leads.SetStatus(ctx, leadID, status)
}

func (a LeadActionPort) AppendNote(ctx context.Context, leadID uuid.UUID, note string) error {
	return a.Leads.AppendNote(ctx, leadID, note)
}

// GuestMailingListPort adapts the guests repository to the campaigns
// recipient lister.
type GuestMailingListPort struct {
	Guests *guestsrepo.Repo
}

func (a GuestMailingListPort) ListRecipients(ctx context.Context) ([]campaigns.Recipient, error) {
	guests, err := a.Guests.ListWithEmail(ctx)
	if err != nil {
		return nil, err
	}
	recipients := make([]campaigns.Recipient, 0, len(guests))
	for _, guest := range guests {
		if guest.Email == nil {
			continue
		}
		recipients = append(recipients, campaigns.Recipient{
			Email: *guest.Email,
			Name:  guest.FirstName + " " + guest.LastName,
		})
	}
	return recipients, nil
}

// Compile-time checks.
var (
	_ leadsvc.BookingPort       = BookingPort{}
	_ leadsvc.GuestPort         = GuestPort{}
	_ workflowsvc.LeadActions   = LeadActionPort{}
	_ campaigns.RecipientLister = GuestMailingListPort{}
)
