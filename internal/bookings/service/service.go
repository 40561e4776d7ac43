// Package service contains the booking lifecycle and availability logic.
package service

import (
	"context"
	"math"
	"time"

	"resort_crm_backend/internal/bookings/repository"
	"resort_crm_backend/internal/bookings/transport"
	"resort_crm_backend/internal/events"
	pricingsvc "resort_crm_backend/internal/pricing/service"
	unitsrepo "resort_crm_backend/internal/units/repository"
	"resort_crm_backend/platform/apperr"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/google/uuid"
)

const maxCreateAttempts = 4

// Repository defines the booking persistence operations the service needs.
type Repository interface {
	CreateChecked(ctx context.Context, booking repository.Booking) (repository.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Booking, error)
	GetByReference(ctx context.Context, reference string) (repository.Booking, error)
	List(ctx context.Context, filters repository.ListFilters) ([]repository.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (repository.Booking, error)
	UpdateDeposit(ctx context.Context, id uuid.UUID, depositCents int64) (repository.Booking, error)
	OccupiedUnitIDs(ctx context.Context, from, to time.Time) (map[uuid.UUID]struct{}, error)
	HasOverlap(ctx context.Context, unitID uuid.UUID, from, to time.Time) (bool, error)
}

// UnitSource provides unit reference data and manual availability blocks.
type UnitSource interface {
	GetUnitByID(ctx context.Context, id uuid.UUID) (unitsrepo.Unit, error)
	ListActiveUnits(ctx context.Context, unitType *string) ([]unitsrepo.Unit, error)
	BlockedUnitIDs(ctx context.Context, from, to time.Time) (map[uuid.UUID]struct{}, error)
	ListBlocksForUnit(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]unitsrepo.AvailabilityBlock, error)
}

// GuestSource resolves or creates the guest a booking belongs to.
type GuestSource interface {
	Get(ctx context.Context, id uuid.UUID) (guest GuestIdentity, err error)
	FindOrCreate(ctx context.Context, firstName, lastName string, email, phone *string) (GuestIdentity, error)
}

// GuestIdentity is the slice of a guest profile the bookings module needs.
type GuestIdentity struct {
	ID    uuid.UUID
	Email *string
}

// Pricer prices a stay for a unit type.
type Pricer interface {
	QuoteStay(ctx context.Context, unitType string, checkIn, checkOut time.Time) (pricingsvc.Quote, error)
}

// Service manages bookings and availability.
type Service struct {
	repo     Repository
	units    UnitSource
	guests   GuestSource
	pricer   Pricer
	bus      events.Bus
	validate *validator.Validator
	log      *logger.Logger
}

// New creates a new bookings service.
func New(repo Repository, units UnitSource, guests GuestSource, pricer Pricer, bus events.Bus, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		units:    units,
		guests:   guests,
		pricer:   pricer,
		bus:      bus,
		validate: val,
		log:      log,
	}
}

// Availability finds active units free for every night of [checkIn, checkOut).
// A unit is unavailable when a non-cancelled booking overlaps the window or a
// manual block falls inside it. Each available unit is priced when the unit
// type has rates configured; a unit without rates is still listed, unpriced.
func (s *Service) Availability(ctx context.Context, req transport.AvailabilityRequest) (transport.AvailabilityResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return transport.AvailabilityResponse{}, apperr.Validation(err.Error())
	}
	checkIn, checkOut, err := parseStayDates(req.CheckIn, req.CheckOut)
	if err != nil {
		return transport.AvailabilityResponse{}, err
	}

	units, err := s.units.ListActiveUnits(ctx, req.UnitType)
	if err != nil {
		return transport.AvailabilityResponse{}, err
	}
	occupied, err := s.repo.OccupiedUnitIDs(ctx, checkIn, checkOut)
	if err != nil {
		return transport.AvailabilityResponse{}, err
	}
	blocked, err := s.units.BlockedUnitIDs(ctx, checkIn, checkOut)
	if err != nil {
		return transport.AvailabilityResponse{}, err
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	resp := transport.AvailabilityResponse{
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Nights:   nights,
		Units:    make([]transport.AvailableUnit, 0),
	}

	// Quotes are per unit type, so cache them across units.
	quotes := make(map[string]*pricingsvc.Quote)
	for _, unit := range units {
		if _, taken := occupied[unit.ID]; taken {
			continue
		}
		if _, isBlocked := blocked[unit.ID]; isBlocked {
			continue
		}
		if req.Guests != nil && unit.MaxGuests < *req.Guests {
			continue
		}

		available := transport.AvailableUnit{
			UnitID:    unit.ID,
			Name:      unit.Name,
			UnitType:  unit.UnitType,
			MaxGuests: unit.MaxGuests,
		}
		quote, cached := quotes[unit.UnitType]
		if !cached {
			q, err := s.pricer.QuoteStay(ctx, unit.UnitType, checkIn, checkOut)
			if err != nil {
				// Pricing gaps must not hide availability.
				quotes[unit.UnitType] = nil
			} else {
				quotes[unit.UnitType] = &q
			}
			quote = quotes[unit.UnitType]
		}
		if quote != nil {
			total := float64(quote.TotalCents) / 100
			currency := "ZAR"
			available.TotalPrice = &total
			available.Currency = &currency
		}
		resp.Units = append(resp.Units, available)
	}
	resp.Available = len(resp.Units)
	return resp, nil
}

// IsUnitAvailable re-checks a single unit against live bookings and manual
// blocks. Conversion calls this right before creating the booking.
func (s *Service) IsUnitAvailable(ctx context.Context, unitID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	unit, err := s.units.GetUnitByID(ctx, unitID)
	if err != nil {
		return false, err
	}
	if !unit.IsActive {
		return false, nil
	}
	overlaps, err := s.repo.HasOverlap(ctx, unitID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	if overlaps {
		return false, nil
	}
	blocks, err := s.units.ListBlocksForUnit(ctx, unitID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return len(blocks) == 0, nil
}

// CreateParams carries a fully resolved booking create request.
type CreateParams struct {
	UnitID          uuid.UUID
	GuestID         uuid.UUID
	GuestEmail      *string
	LeadID          *uuid.UUID
	CheckIn         time.Time
	CheckOut        time.Time
	NumberOfGuests  int
	DepositCents    int64
	SpecialRequests *string
	InitialStatus   string
}

// Create prices the stay, generates a reference and inserts the booking with
// the transactional conflict check. Reference collisions and serialization
// conflicts retry a bounded number of times.
func (s *Service) Create(ctx context.Context, params CreateParams) (repository.Booking, error) {
	if !params.CheckOut.After(params.CheckIn) {
		return repository.Booking{}, apperr.Validation("check_out must be after check_in")
	}
	unit, err := s.units.GetUnitByID(ctx, params.UnitID)
	if err != nil {
		return repository.Booking{}, err
	}
	if !unit.IsActive {
		return repository.Booking{}, apperr.Conflict("unit is not active")
	}
	if params.NumberOfGuests > unit.MaxGuests {
		return repository.Booking{}, apperr.Validation("number_of_guests exceeds unit capacity")
	}

	quote, err := s.pricer.QuoteStay(ctx, unit.UnitType, params.CheckIn, params.CheckOut)
	if err != nil {
		return repository.Booking{}, err
	}
	if params.DepositCents > quote.TotalCents {
		return repository.Booking{}, apperr.Validation("deposit cannot exceed the total amount")
	}

	status := params.InitialStatus
	if status == "" {
		status = repository.StatusPending
	}
	paymentStatus := "unpaid"
	if params.DepositCents > 0 {
		paymentStatus = "deposit_paid"
	}

	var saved repository.Booking
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		reference, err := newBookingReference()
		if err != nil {
			return repository.Booking{}, err
		}
		saved, err = s.repo.CreateChecked(ctx, repository.Booking{
			ID:               uuid.New(),
			BookingReference: reference,
			UnitID:           params.UnitID,
			GuestID:          params.GuestID,
			LeadID:           params.LeadID,
			CheckIn:          params.CheckIn,
			CheckOut:         params.CheckOut,
			NumberOfGuests:   params.NumberOfGuests,
			Status:           status,
			TotalCents:       quote.TotalCents,
			DepositCents:     params.DepositCents,
			BalanceCents:     quote.TotalCents - params.DepositCents,
			PaymentStatus:    paymentStatus,
			SpecialRequests:  params.SpecialRequests,
		})
		if err == repository.ErrDuplicateReference || err == repository.ErrSerialization {
			continue
		}
		if err != nil {
			return repository.Booking{}, err
		}

		s.log.BookingEvent("booking_created", saved.BookingReference, saved.UnitID.String())
		s.bus.Publish(ctx, events.BookingCreated{
			BaseEvent:        events.NewBaseEvent(),
			BookingID:        saved.ID,
			BookingReference: saved.BookingReference,
			GuestID:          saved.GuestID,
			UnitID:           saved.UnitID,
			LeadID:           saved.LeadID,
			CheckIn:          saved.CheckIn.Format(time.DateOnly),
			CheckOut:         saved.CheckOut.Format(time.DateOnly),
			TotalCents:       saved.TotalCents,
		})
		return saved, nil
	}
	return repository.Booking{}, apperr.Internal("could not create booking after retries")
}

// CreateFromRequest resolves the guest (by ID or find-or-create from contact
// fields) and creates the booking. Staff entry path.
func (s *Service) CreateFromRequest(ctx context.Context, req transport.CreateBookingRequest) (repository.Booking, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.Booking{}, apperr.Validation(err.Error())
	}
	checkIn, checkOut, err := parseStayDates(req.CheckIn, req.CheckOut)
	if err != nil {
		return repository.Booking{}, err
	}

	var guest GuestIdentity
	if req.GuestID != nil {
		guest, err = s.guests.Get(ctx, *req.GuestID)
	} else {
		if req.GuestFirstName == nil || req.GuestLastName == nil {
			return repository.Booking{}, apperr.Validation("guest_id or guest name and contact details are required")
		}
		guest, err = s.guests.FindOrCreate(ctx, *req.GuestFirstName, *req.GuestLastName, req.GuestEmail, req.GuestPhone)
	}
	if err != nil {
		return repository.Booking{}, err
	}

	var depositCents int64
	if req.DepositAmount != nil {
		depositCents = int64(math.Round(*req.DepositAmount * 100))
	}
	return s.Create(ctx, CreateParams{
		UnitID:          req.UnitID,
		GuestID:         guest.ID,
		GuestEmail:      guest.Email,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		NumberOfGuests:  req.NumberOfGuests,
		DepositCents:    depositCents,
		SpecialRequests: req.SpecialRequests,
	})
}

// Get retrieves a booking by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Booking, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByReference retrieves a booking by its reference.
func (s *Service) GetByReference(ctx context.Context, reference string) (repository.Booking, error) {
	return s.repo.GetByReference(ctx, reference)
}

// List retrieves bookings with filters.
func (s *Service) List(ctx context.Context, filters repository.ListFilters) ([]repository.Booking, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return s.repo.List(ctx, filters)
}

// Transition moves a booking to a new lifecycle status, enforcing the state
// machine, and publishes the change.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, next string) (repository.Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Booking{}, err
	}
	if err := validateTransition(booking.Status, next); err != nil {
		return repository.Booking{}, err
	}
	previous := booking.Status
	saved, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		return repository.Booking{}, err
	}

	s.log.BookingEvent("booking_"+next, saved.BookingReference, saved.UnitID.String())
	s.bus.Publish(ctx, events.BookingStatusChanged{
		BaseEvent:        events.NewBaseEvent(),
		BookingID:        saved.ID,
		BookingReference: saved.BookingReference,
		PreviousStatus:   previous,
		NewStatus:        next,
	})
	return saved, nil
}

// RecordDeposit records a deposit payment against the booking.
func (s *Service) RecordDeposit(ctx context.Context, id uuid.UUID, req transport.RecordDepositRequest) (repository.Booking, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.Booking{}, apperr.Validation(err.Error())
	}
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Booking{}, err
	}
	depositCents := int64(math.Round(req.DepositAmount * 100))
	if depositCents > booking.TotalCents {
		return repository.Booking{}, apperr.Validation("deposit cannot exceed the total amount")
	}
	return s.repo.UpdateDeposit(ctx, id, depositCents)
}

func parseStayDates(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(time.DateOnly, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("check_in must be YYYY-MM-DD")
	}
	out, err := time.Parse(time.DateOnly, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("check_out must be YYYY-MM-DD")
	}
	if !out.After(in) {
		return time.Time{}, time.Time{}, apperr.Validation("check_out must be after check_in")
	}
	return in, out, nil
}
