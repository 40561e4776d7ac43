package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"resort_crm_backend/internal/events"
	"resort_crm_backend/internal/leads/repository"
	"resort_crm_backend/internal/leads/transport"
	"resort_crm_backend/platform/apperr"
	"resort_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadRepo struct {
	leads          map[uuid.UUID]repository.Lead
	comms          map[uuid.UUID][]repository.Communication
	scoredExcludes []uuid.UUID
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{
		leads: make(map[uuid.UUID]repository.Lead),
		comms: make(map[uuid.UUID][]repository.Communication),
	}
}

func (f *fakeLeadRepo) Create(ctx context.Context, lead repository.Lead) (repository.Lead, error) {
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeLeadRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (f *fakeLeadRepo) List(ctx context.Context, filters repository.ListFilters) ([]repository.Lead, error) {
	out := make([]repository.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		out = append(out, lead)
	}
	return out, nil
}

func (f *fakeLeadRepo) Update(ctx context.Context, lead repository.Lead) (repository.Lead, error) {
	if _, ok := f.leads[lead.ID]; !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeLeadRepo) MarkConverted(ctx context.Context, id, bookingID uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if lead.Status == repository.StatusConverted {
		return repository.Lead{}, apperr.Conflict("lead has already been converted")
	}
	lead.Status = repository.StatusConverted
	lead.ConvertedToBookingID = &bookingID
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeLeadRepo) CountConvertedByEmail(ctx context.Context, email string, excludeLeadID uuid.UUID) (int, error) {
	f.scoredExcludes = append(f.scoredExcludes, excludeLeadID)
	count := 0
	for id, lead := range f.leads {
		if id == excludeLeadID || lead.Status != repository.StatusConverted {
			continue
		}
		if lead.Email != nil && *lead.Email == email {
			count++
		}
	}
	return count, nil
}

func (f *fakeLeadRepo) SourceConversionStats(ctx context.Context, source string) (int, int, error) {
	return 0, 0, nil
}

func (f *fakeLeadRepo) AddCommunication(ctx context.Context, comm repository.Communication) (repository.Communication, error) {
	f.comms[comm.LeadID] = append(f.comms[comm.LeadID], comm)
	return comm, nil
}

func (f *fakeLeadRepo) ListCommunications(ctx context.Context, leadID uuid.UUID) ([]repository.Communication, error) {
	return f.comms[leadID], nil
}

func (f *fakeLeadRepo) MarkCommunicationRead(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakeBookingPort struct {
	available bool
	created   []BookingParams
}

func (f *fakeBookingPort) IsUnitAvailable(ctx context.Context, unitID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	return f.available, nil
}

func (f *fakeBookingPort) Create(ctx context.Context, params BookingParams) (CreatedBooking, error) {
	f.created = append(f.created, params)
	return CreatedBooking{ID: uuid.New(), Reference: "RES-TESTREF1"}, nil
}

type fakeGuestPort struct{ id uuid.UUID }

func (f fakeGuestPort) FindOrCreate(ctx context.Context, firstName, lastName string, email, phone *string) (uuid.UUID, error) {
	return f.id, nil
}

type fakeEmailSender struct {
	err  error
	sent int
}

func (f *fakeEmailSender) SendBookingConfirmation(ctx context.Context, email string, bookingID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.sent++
	return nil
}

func strPtr(s string) *string { return &s }

func newConversionFixture(t *testing.T, available bool, emailErr error) (*fakeLeadRepo, *Converter, uuid.UUID, *fakeBookingPort, *fakeEmailSender) {
	t.Helper()
	repo := newFakeLeadRepo()
	leadID := uuid.New()
	repo.leads[leadID] = repository.Lead{
		ID:     leadID,
		Name:   "Thandi Nkosi",
		Email:  strPtr("thandi@example.com"),
		Phone:  strPtr("+27821234567"),
		Source: repository.SourceWebsite,
		Status: repository.StatusQualified,
	}
	bookings := &fakeBookingPort{available: available}
	email := &fakeEmailSender{err: emailErr}
	log := logger.New("development")
	converter := NewConverter(repo, bookings, fakeGuestPort{id: uuid.New()}, email, events.NewInMemoryBus(log), log)
	return repo, converter, leadID, bookings, email
}

func convertRequest() transport.ConvertLeadRequest {
	return transport.ConvertLeadRequest{
		UnitID:         uuid.New(),
		CheckIn:        "2026-09-10",
		CheckOut:       "2026-09-13",
		NumberOfGuests: 2,
	}
}

func TestConvertHappyPath(t *testing.T) {
	repo, converter, leadID, bookings, email := newConversionFixture(t, true, nil)

	resp, err := converter.Convert(context.Background(), leadID, convertRequest())
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if resp.BookingReference != "RES-TESTREF1" {
		t.Fatalf("unexpected reference %q", resp.BookingReference)
	}
	if !resp.EmailSent {
		t.Fatal("expected confirmation email to be sent")
	}
	if email.sent != 1 {
		t.Fatalf("expected 1 email, got %d", email.sent)
	}
	if len(bookings.created) != 1 {
		t.Fatalf("expected 1 booking created, got %d", len(bookings.created))
	}
	if bookings.created[0].LeadID != leadID {
		t.Fatal("expected booking to reference the lead")
	}

	lead := repo.leads[leadID]
	if lead.Status != repository.StatusConverted {
		t.Fatalf("expected lead status converted, got %s", lead.Status)
	}
	if lead.ConvertedToBookingID == nil || *lead.ConvertedToBookingID != resp.BookingID {
		t.Fatal("expected converted_to_booking_id to be set")
	}
}

func TestConvertRejectsUnavailableUnit(t *testing.T) {
	repo, converter, leadID, bookings, _ := newConversionFixture(t, false, nil)

	_, err := converter.Convert(context.Background(), leadID, convertRequest())
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if len(bookings.created) != 0 {
		t.Fatal("expected no booking to be created")
	}
	if repo.leads[leadID].Status == repository.StatusConverted {
		t.Fatal("expected lead to remain unconverted")
	}
}

func TestConvertIsOneWay(t *testing.T) {
	_, converter, leadID, bookings, _ := newConversionFixture(t, true, nil)

	if _, err := converter.Convert(context.Background(), leadID, convertRequest()); err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}
	_, err := converter.Convert(context.Background(), leadID, convertRequest())
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected second conversion to conflict, got %v", err)
	}
	if len(bookings.created) != 1 {
		t.Fatalf("expected exactly 1 booking, got %d", len(bookings.created))
	}
}

func TestConvertEmailFailureDoesNotRollBack(t *testing.T) {
	repo, converter, leadID, _, _ := newConversionFixture(t, true, errors.New("smtp connect timeout"))

	resp, err := converter.Convert(context.Background(), leadID, convertRequest())
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if resp.EmailSent {
		t.Fatal("expected email_sent to be false")
	}
	if resp.EmailError == nil || *resp.EmailError != "smtp connect timeout" {
		t.Fatalf("expected email_error to carry the failure, got %v", resp.EmailError)
	}
	if repo.leads[leadID].Status != repository.StatusConverted {
		t.Fatal("expected conversion to stand despite the email failure")
	}
}

func TestConvertInvalidDates(t *testing.T) {
	_, converter, leadID, _, _ := newConversionFixture(t, true, nil)

	req := convertRequest()
	req.CheckOut = req.CheckIn
	if _, err := converter.Convert(context.Background(), leadID, req); apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConvertRoundsDepositToCents(t *testing.T) {
	_, converter, leadID, bookings, _ := newConversionFixture(t, true, nil)

	deposit := 19.99
	req := convertRequest()
	req.DepositAmount = &deposit
	if _, err := converter.Convert(context.Background(), leadID, req); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if got := bookings.created[0].DepositCents; got != 1999 {
		t.Fatalf("deposit of 19.99 stored as %d cents, want 1999", got)
	}
}

func TestConvertCarriesSpecialRequests(t *testing.T) {
	_, converter, leadID, bookings, _ := newConversionFixture(t, true, nil)

	req := convertRequest()
	req.SpecialRequests = strPtr("late arrival, ground floor please")
	if _, err := converter.Convert(context.Background(), leadID, req); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	got := bookings.created[0].SpecialRequests
	if got == nil || *got != "late arrival, ground floor please" {
		t.Fatalf("special requests not passed to booking create, got %v", got)
	}
}
