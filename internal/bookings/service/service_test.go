package service

import (
	"context"
	"testing"
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

type fakeRepo struct {
	bookings    []repository.Booking
	failCreates int
	createErr   error
}

func (f *fakeRepo) CreateChecked(ctx context.Context, b repository.Booking) (repository.Booking, error) {
	if f.failCreates > 0 {
		f.failCreates--
		return repository.Booking{}, f.createErr
	}
	for _, existing := range f.bookings {
		if existing.UnitID == b.UnitID && existing.Status != repository.StatusCancelled &&
			existing.CheckIn.Before(b.CheckOut) && existing.CheckOut.After(b.CheckIn) {
			return repository.Booking{}, apperr.Conflict("unit is not available for the requested dates")
		}
	}
	f.bookings = append(f.bookings, b)
	return b, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Booking, error) {
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return repository.Booking{}, apperr.NotFound("booking not found")
}

func (f *fakeRepo) GetByReference(ctx context.Context, ref string) (repository.Booking, error) {
	for _, b := range f.bookings {
		if b.BookingReference == ref {
			return b, nil
		}
	}
	return repository.Booking{}, apperr.NotFound("booking not found")
}

func (f *fakeRepo) List(ctx context.Context, filters repository.ListFilters) ([]repository.Booking, error) {
	return f.bookings, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (repository.Booking, error) {
	for i, b := range f.bookings {
		if b.ID == id {
			f.bookings[i].Status = status
			return f.bookings[i], nil
		}
	}
	return repository.Booking{}, apperr.NotFound("booking not found")
}

func (f *fakeRepo) UpdateDeposit(ctx context.Context, id uuid.UUID, depositCents int64) (repository.Booking, error) {
	for i, b := range f.bookings {
		if b.ID == id {
			f.bookings[i].DepositCents = depositCents
			f.bookings[i].BalanceCents = b.TotalCents - depositCents
			return f.bookings[i], nil
		}
	}
	return repository.Booking{}, apperr.NotFound("booking not found")
}

func (f *fakeRepo) OccupiedUnitIDs(ctx context.Context, from, to time.Time) (map[uuid.UUID]struct{}, error) {
	occupied := make(map[uuid.UUID]struct{})
	for _, b := range f.bookings {
		if b.Status != repository.StatusCancelled && b.CheckIn.Before(to) && b.CheckOut.After(from) {
			occupied[b.UnitID] = struct{}{}
		}
	}
	return occupied, nil
}

func (f *fakeRepo) HasOverlap(ctx context.Context, unitID uuid.UUID, from, to time.Time) (bool, error) {
	for _, b := range f.bookings {
		if b.UnitID == unitID && b.Status != repository.StatusCancelled &&
			b.CheckIn.Before(to) && b.CheckOut.After(from) {
			return true, nil
		}
	}
	return false, nil
}

type fakeUnits struct {
	units  []unitsrepo.Unit
	blocks []unitsrepo.AvailabilityBlock
}

func (f *fakeUnits) GetUnitByID(ctx context.Context, id uuid.UUID) (unitsrepo.Unit, error) {
	for _, u := range f.units {
		if u.ID == id {
			return u, nil
		}
	}
	return unitsrepo.Unit{}, apperr.NotFound("unit not found")
}

func (f *fakeUnits) ListActiveUnits(ctx context.Context, unitType *string) ([]unitsrepo.Unit, error) {
	out := make([]unitsrepo.Unit, 0)
	for _, u := range f.units {
		if !u.IsActive {
			continue
		}
		if unitType != nil && u.UnitType != *unitType {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUnits) BlockedUnitIDs(ctx context.Context, from, to time.Time) (map[uuid.UUID]struct{}, error) {
	blocked := make(map[uuid.UUID]struct{})
	for _, b := range f.blocks {
		if !b.BlockDate.Before(from) && b.BlockDate.Before(to) {
			blocked[b.UnitID] = struct{}{}
		}
	}
	return blocked, nil
}

func (f *fakeUnits) ListBlocksForUnit(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]unitsrepo.AvailabilityBlock, error) {
	out := make([]unitsrepo.AvailabilityBlock, 0)
	for _, b := range f.blocks {
		if b.UnitID == unitID && !b.BlockDate.Before(from) && b.BlockDate.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeGuests struct{ id uuid.UUID }

func (f fakeGuests) Get(ctx context.Context, id uuid.UUID) (GuestIdentity, error) {
	return GuestIdentity{ID: id}, nil
}

func (f fakeGuests) FindOrCreate(ctx context.Context, firstName, lastName string, email, phone *string) (GuestIdentity, error) {
	return GuestIdentity{ID: f.id, Email: email}, nil
}

type fakePricer struct {
	rateCents int64
	err       error
}

func (f fakePricer) QuoteStay(ctx context.Context, unitType string, checkIn, checkOut time.Time) (pricingsvc.Quote, error) {
	if f.err != nil {
		return pricingsvc.Quote{}, f.err
	}
	var quote pricingsvc.Quote
	for night := checkIn; night.Before(checkOut); night = night.AddDate(0, 0, 1) {
		quote.Nights = append(quote.Nights, pricingsvc.Night{Date: night, RateCents: f.rateCents})
		quote.TotalCents += f.rateCents
	}
	return quote, nil
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService(repo *fakeRepo, units *fakeUnits, pricer fakePricer) *Service {
	log := logger.New("development")
	return New(repo, units, fakeGuests{id: uuid.New()}, pricer, events.NewInMemoryBus(log), validator.New(), log)
}

func TestAvailabilityExcludesOverlapAndBlocks(t *testing.T) {
	free := unitsrepo.Unit{ID: uuid.New(), Name: "River Cabin 1", UnitType: "cabin", MaxGuests: 4, IsActive: true}
	booked := unitsrepo.Unit{ID: uuid.New(), Name: "River Cabin 2", UnitType: "cabin", MaxGuests: 4, IsActive: true}
	blocked := unitsrepo.Unit{ID: uuid.New(), Name: "River Cabin 3", UnitType: "cabin", MaxGuests: 4, IsActive: true}

	repo := &fakeRepo{bookings: []repository.Booking{{
		ID: uuid.New(), UnitID: booked.ID, Status: repository.StatusConfirmed,
		CheckIn: date("2026-07-10"), CheckOut: date("2026-07-14"),
	}}}
	units := &fakeUnits{
		units:  []unitsrepo.Unit{free, booked, blocked},
		blocks: []unitsrepo.AvailabilityBlock{{UnitID: blocked.ID, BlockDate: date("2026-07-12")}},
	}
	svc := newTestService(repo, units, fakePricer{rateCents: 100000})

	resp, err := svc.Availability(context.Background(), transport.AvailabilityRequest{
		CheckIn: "2026-07-11", CheckOut: "2026-07-13",
	})
	if err != nil {
		t.Fatalf("Availability returned error: %v", err)
	}
	if len(resp.Units) != 1 {
		t.Fatalf("expected exactly 1 available unit, got %d", len(resp.Units))
	}
	if resp.Available != 1 {
		t.Fatalf("expected available count 1, got %d", resp.Available)
	}
	if resp.Units[0].UnitID != free.ID {
		t.Fatalf("expected unit %s to be available, got %s", free.ID, resp.Units[0].UnitID)
	}
	if resp.Nights != 2 {
		t.Fatalf("expected 2 nights, got %d", resp.Nights)
	}
}

func TestAvailabilityBackToBackStaysDoNotConflict(t *testing.T) {
	unit := unitsrepo.Unit{ID: uuid.New(), Name: "Suite", UnitType: "suite", MaxGuests: 2, IsActive: true}
	repo := &fakeRepo{bookings: []repository.Booking{{
		ID: uuid.New(), UnitID: unit.ID, Status: repository.StatusConfirmed,
		CheckIn: date("2026-07-01"), CheckOut: date("2026-07-05"),
	}}}
	svc := newTestService(repo, &fakeUnits{units: []unitsrepo.Unit{unit}}, fakePricer{rateCents: 100000})

	// New stay starts on the existing check-out day.
	resp, err := svc.Availability(context.Background(), transport.AvailabilityRequest{
		CheckIn: "2026-07-05", CheckOut: "2026-07-08",
	})
	if err != nil {
		t.Fatalf("Availability returned error: %v", err)
	}
	if len(resp.Units) != 1 {
		t.Fatalf("expected the unit to be free for a back-to-back stay, got %d units", len(resp.Units))
	}
}

func TestAvailabilityPricingFailureStillListsUnit(t *testing.T) {
	unit := unitsrepo.Unit{ID: uuid.New(), Name: "Tent", UnitType: "tent", MaxGuests: 2, IsActive: true}
	svc := newTestService(&fakeRepo{}, &fakeUnits{units: []unitsrepo.Unit{unit}},
		fakePricer{err: apperr.Internal("no pricing rates configured for unit type")})

	resp, err := svc.Availability(context.Background(), transport.AvailabilityRequest{
		CheckIn: "2026-07-05", CheckOut: "2026-07-08",
	})
	if err != nil {
		t.Fatalf("Availability returned error: %v", err)
	}
	if len(resp.Units) != 1 {
		t.Fatalf("expected the unpriced unit to be listed, got %d units", len(resp.Units))
	}
	if resp.Units[0].TotalPrice != nil {
		t.Fatal("expected no price when the rate table is missing")
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	unit := unitsrepo.Unit{ID: uuid.New(), Name: "Cabin", UnitType: "cabin", MaxGuests: 4, IsActive: true}
	repo := &fakeRepo{bookings: []repository.Booking{{
		ID: uuid.New(), UnitID: unit.ID, Status: repository.StatusConfirmed,
		CheckIn: date("2026-07-10"), CheckOut: date("2026-07-14"),
	}}}
	svc := newTestService(repo, &fakeUnits{units: []unitsrepo.Unit{unit}}, fakePricer{rateCents: 100000})

	_, err := svc.Create(context.Background(), CreateParams{
		UnitID: unit.ID, GuestID: uuid.New(),
		CheckIn: date("2026-07-12"), CheckOut: date("2026-07-16"),
		NumberOfGuests: 2,
	})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateCancelledBookingFreesDates(t *testing.T) {
	unit := unitsrepo.Unit{ID: uuid.New(), Name: "Cabin", UnitType: "cabin", MaxGuests: 4, IsActive: true}
	repo := &fakeRepo{bookings: []repository.Booking{{
		ID: uuid.New(), UnitID: unit.ID, Status: repository.StatusCancelled,
		CheckIn: date("2026-07-10"), CheckOut: date("2026-07-14"),
	}}}
	svc := newTestService(repo, &fakeUnits{units: []unitsrepo.Unit{unit}}, fakePricer{rateCents: 100000})

	booking, err := svc.Create(context.Background(), CreateParams{
		UnitID: unit.ID, GuestID: uuid.New(),
		CheckIn: date("2026-07-12"), CheckOut: date("2026-07-16"),
		NumberOfGuests: 2,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if booking.Status != repository.StatusPending {
		t.Fatalf("expected new booking to be pending, got %s", booking.Status)
	}
}

func TestCreateComputesTotalsAndBalance(t *testing.T) {
	unit := unitsrepo.Unit{ID: uuid.New(), Name: "Cabin", UnitType: "cabin", MaxGuests: 4, IsActive: true}
	svc := newTestService(&fakeRepo{}, &fakeUnits{units: []unitsrepo.Unit{unit}}, fakePricer{rateCents: 120000})

	booking, err := svc.Create(context.Background(), CreateParams{
		UnitID: unit.ID, GuestID: uuid.New(),
		CheckIn: date("2026-07-01"), CheckOut: date("2026-07-04"),
		NumberOfGuests: 2, DepositCents: 100000,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if booking.TotalCents != 360000 {
		t.Fatalf("expected total 360000 cents, got %d", booking.TotalCents)
	}
	if booking.BalanceCents != 260000 {
		t.Fatalf("expected balance 260000 cents, got %d", booking.BalanceCents)
	}
	if len(booking.BookingReference) != len("RES-")+8 {
		t.Fatalf("unexpected reference format %q", booking.BookingReference)
	}
}

func TestCreateRetriesDuplicateReference(t *testing.T) {
	unit := unitsrepo.Unit{ID: uuid.New(), Name: "Cabin", UnitType: "cabin", MaxGuests: 4, IsActive: true}
	repo := &fakeRepo{failCreates: 2, createErr: repository.ErrDuplicateReference}
	svc := newTestService(repo, &fakeUnits{units: []unitsrepo.Unit{unit}}, fakePricer{rateCents: 100000})

	booking, err := svc.Create(context.Background(), CreateParams{
		UnitID: unit.ID, GuestID: uuid.New(),
		CheckIn: date("2026-07-01"), CheckOut: date("2026-07-03"),
		NumberOfGuests: 2,
	})
	if err != nil {
		t.Fatalf("expected reference collision to be retried, got %v", err)
	}
	if booking.BookingReference == "" {
		t.Fatal("expected a booking reference after retry")
	}
}

func TestCreateRejectsCapacityExceeded(t *testing.T) {
	unit := unitsrepo.Unit{ID: uuid.New(), Name: "Tent", UnitType: "tent", MaxGuests: 2, IsActive: true}
	svc := newTestService(&fakeRepo{}, &fakeUnits{units: []unitsrepo.Unit{unit}}, fakePricer{rateCents: 100000})

	_, err := svc.Create(context.Background(), CreateParams{
		UnitID: unit.ID, GuestID: uuid.New(),
		CheckIn: date("2026-07-01"), CheckOut: date("2026-07-03"),
		NumberOfGuests: 5,
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIsUnitAvailable(t *testing.T) {
	unit := unitsrepo.Unit{ID: uuid.New(), Name: "Cabin", UnitType: "cabin", MaxGuests: 4, IsActive: true}
	inactive := unitsrepo.Unit{ID: uuid.New(), Name: "Closed", UnitType: "cabin", MaxGuests: 4, IsActive: false}
	repo := &fakeRepo{bookings: []repository.Booking{{
		ID: uuid.New(), UnitID: unit.ID, Status: repository.StatusConfirmed,
		CheckIn: date("2026-07-10"), CheckOut: date("2026-07-14"),
	}}}
	svc := newTestService(repo, &fakeUnits{units: []unitsrepo.Unit{unit, inactive}}, fakePricer{rateCents: 100000})

	available, err := svc.IsUnitAvailable(context.Background(), unit.ID, date("2026-07-12"), date("2026-07-15"))
	if err != nil {
		t.Fatalf("IsUnitAvailable returned error: %v", err)
	}
	if available {
		t.Fatal("expected overlapping dates to be unavailable")
	}

	available, err = svc.IsUnitAvailable(context.Background(), unit.ID, date("2026-07-14"), date("2026-07-16"))
	if err != nil {
		t.Fatalf("IsUnitAvailable returned error: %v", err)
	}
	if !available {
		t.Fatal("expected dates after check-out to be available")
	}

	available, err = svc.IsUnitAvailable(context.Background(), inactive.ID, date("2026-08-01"), date("2026-08-03"))
	if err != nil {
		t.Fatalf("IsUnitAvailable returned error: %v", err)
	}
	if available {
		t.Fatal("expected inactive unit to be unavailable")
	}
}
