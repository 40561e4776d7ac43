// Package service contains the lead pipeline logic: capture, scoring, status
// management, communications and conversion to bookings.
package service

import (
	"context"
	"strings"

	"resort_crm_backend/internal/events"
	"resort_crm_backend/internal/leads/repository"
	"resort_crm_backend/internal/leads/scoring"
	"resort_crm_backend/internal/leads/transport"
	"resort_crm_backend/platform/apperr"
	"resort_crm_backend/platform/clock"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/phone"
	"resort_crm_backend/platform/validator"

	"github.com/google/uuid"
)

// Repository defines the persistence operations the service needs.
type Repository interface {
	Create(ctx context.Context, lead repository.Lead) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, filters repository.ListFilters) ([]repository.Lead, error)
	Update(ctx context.Context, lead repository.Lead) (repository.Lead, error)
	MarkConverted(ctx context.Context, id, bookingID uuid.UUID) (repository.Lead, error)
	CountConvertedByEmail(ctx context.Context, email string, excludeLeadID uuid.UUID) (int, error)
	SourceConversionStats(ctx context.Context, source string) (total, converted int, err error)
	AddCommunication(ctx context.Context, comm repository.Communication) (repository.Communication, error)
	ListCommunications(ctx context.Context, leadID uuid.UUID) ([]repository.Communication, error)
	MarkCommunicationRead(ctx context.Context, id uuid.UUID) error
}

// Service manages the lead pipeline.
type Service struct {
	repo      Repository
	converter *Converter
	bus       events.Bus
	validate  *validator.Validator
	clock     clock.Clock
	log       *logger.Logger
}

// New creates a new leads service. The converter is attached afterwards by
// the module wiring since it depends on the bookings and guests modules.
func New(repo Repository, bus events.Bus, val *validator.Validator, clk clock.Clock, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, validate: val, clock: clk, log: log}
}

// AttachConverter wires the conversion orchestrator.
func (s *Service) AttachConverter(converter *Converter) {
	s.converter = converter
}

// Create captures a new lead, scores it and publishes LeadCreated.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (repository.Lead, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.Lead{}, apperr.Validation(err.Error())
	}
	source := req.Source
	if source == "" {
		source = repository.SourceOther
	}

	lead := repository.Lead{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(req.Name),
		Email:   normalizeEmail(req.Email),
		Phone:   normalizePhone(req.Phone),
		Source:  source,
		Status:  repository.StatusNew,
		Message: req.Message,
		Notes:   req.Notes,
	}
	lead.CreatedAt = s.clock.Now()
	breakdown, priority, err := s.score(ctx, lead, nil)
	if err != nil {
		return repository.Lead{}, err
	}
	lead.QualityScore = breakdown.Total
	lead.Priority = priority

	saved, err := s.repo.Create(ctx, lead)
	if err != nil {
		return repository.Lead{}, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       saved.ID,
		Source:       saved.Source,
		Name:         saved.Name,
		Email:        stringOrEmpty(saved.Email),
		Phone:        stringOrEmpty(saved.Phone),
		QualityScore: saved.QualityScore,
		Priority:     saved.Priority,
	})
	return saved, nil
}

// Get retrieves a lead by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves leads with filters.
func (s *Service) List(ctx context.Context, filters repository.ListFilters) ([]repository.Lead, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return s.repo.List(ctx, filters)
}

// Update applies a partial update and rescores the lead.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (repository.Lead, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.Lead{}, apperr.Validation(err.Error())
	}
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, err
	}
	if req.Name != nil {
		lead.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		lead.Email = normalizeEmail(req.Email)
	}
	if req.Phone != nil {
		lead.Phone = normalizePhone(req.Phone)
	}
	if req.Notes != nil {
		lead.Notes = req.Notes
	}
	if req.AssignedTo != nil {
		lead.AssignedTo = req.AssignedTo
	}
	return s.rescoreAndSave(ctx, lead)
}

// UpdateStatus moves a lead between pipeline statuses. The converted status
// is reserved for the conversion flow and is rejected here; moving to
// contacted stamps contacted_at the first time.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateLeadStatusRequest) (repository.Lead, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.Lead{}, apperr.Validation(err.Error())
	}
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, err
	}
	if lead.Status == repository.StatusConverted {
		return repository.Lead{}, apperr.Conflict("converted leads cannot change status")
	}
	if lead.Status == req.Status {
		return lead, nil
	}

	previous := lead.Status
	lead.Status = req.Status
	if req.Status == repository.StatusContacted && lead.ContactedAt == nil {
		now := s.clock.Now()
		lead.ContactedAt = &now
	}
	saved, err := s.rescoreAndSave(ctx, lead)
	if err != nil {
		return repository.Lead{}, err
	}

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         saved.ID,
		PreviousStatus: previous,
		NewStatus:      saved.Status,
	})
	return saved, nil
}

// Assign sets the lead's owner. Used by both staff endpoints and workflow
// actions.
func (s *Service) Assign(ctx context.Context, leadID, userID uuid.UUID) error {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return err
	}
	lead.AssignedTo = &userID
	_, err = s.repo.Update(ctx, lead)
	return err
}

// SetStatus moves a lead to the given status. Workflow actions call this
// with a bare status string; it enforces the same rules as UpdateStatus.
func (s *Service) SetStatus(ctx context.Context, leadID uuid.UUID, status string) error {
	_, err := s.UpdateStatus(ctx, leadID, transport.UpdateLeadStatusRequest{Status: status})
	return err
}

// AppendNote adds a timestamped line to the lead's notes.
func (s *Service) AppendNote(ctx context.Context, leadID uuid.UUID, note string) error {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return apperr.Validation("note must not be empty")
	}
	line := "[" + s.clock.Now().Format("2006-01-02 15:04:05") + "] " + note
	if lead.Notes == nil || strings.TrimSpace(*lead.Notes) == "" {
		lead.Notes = &line
	} else {
		combined := *lead.Notes + "\n" + line
		lead.Notes = &combined
	}
	_, err = s.rescoreAndSave(ctx, lead)
	return err
}

// Rescore recomputes the lead's quality score from current state.
func (s *Service) Rescore(ctx context.Context, id uuid.UUID) (repository.Lead, scoring.Breakdown, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, scoring.Breakdown{}, err
	}
	comms, err := s.repo.ListCommunications(ctx, lead.ID)
	if err != nil {
		return repository.Lead{}, scoring.Breakdown{}, err
	}
	breakdown, priority, err := s.score(ctx, lead, comms)
	if err != nil {
		return repository.Lead{}, scoring.Breakdown{}, err
	}
	lead.QualityScore = breakdown.Total
	lead.Priority = priority
	saved, err := s.repo.Update(ctx, lead)
	return saved, breakdown, err
}

// AddCommunication appends a message to the lead's history and rescores,
// since engagement feeds the quality score.
func (s *Service) AddCommunication(ctx context.Context, leadID uuid.UUID, req transport.AddCommunicationRequest) (repository.Communication, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.Communication{}, apperr.Validation(err.Error())
	}
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return repository.Communication{}, err
	}
	channel := req.Channel
	if channel == "" {
		channel = "email"
	}
	saved, err := s.repo.AddCommunication(ctx, repository.Communication{
		ID:        uuid.New(),
		LeadID:    leadID,
		Direction: req.Direction,
		Channel:   channel,
		Body:      req.Body,
	})
	if err != nil {
		return repository.Communication{}, err
	}
	if _, _, err := s.Rescore(ctx, leadID); err != nil {
		s.log.Error("rescore after communication failed", "lead_id", leadID.String(), "error", err.Error())
	}
	return saved, nil
}

// ListCommunications retrieves a lead's message history.
func (s *Service) ListCommunications(ctx context.Context, leadID uuid.UUID) ([]repository.Communication, error) {
	return s.repo.ListCommunications(ctx, leadID)
}

// MarkCommunicationRead flags a message as read and rescores the lead.
func (s *Service) MarkCommunicationRead(ctx context.Context, leadID, commID uuid.UUID) error {
	if err := s.repo.MarkCommunicationRead(ctx, commID); err != nil {
		return err
	}
	if _, _, err := s.Rescore(ctx, leadID); err != nil {
		s.log.Error("rescore after read receipt failed", "lead_id", leadID.String(), "error", err.Error())
	}
	return nil
}

// Convert hands off to the conversion orchestrator.
func (s *Service) Convert(ctx context.Context, leadID uuid.UUID, req transport.ConvertLeadRequest) (transport.ConvertLeadResponse, error) {
	if s.converter == nil {
		return transport.ConvertLeadResponse{}, apperr.Internal("conversion is not configured")
	}
	if err := s.validate.Struct(req); err != nil {
		return transport.ConvertLeadResponse{}, apperr.Validation(err.Error())
	}
	return s.converter.Convert(ctx, leadID, req)
}

func (s *Service) rescoreAndSave(ctx context.Context, lead repository.Lead) (repository.Lead, error) {
	comms, err := s.repo.ListCommunications(ctx, lead.ID)
	if err != nil {
		return repository.Lead{}, err
	}
	breakdown, priority, err := s.score(ctx, lead, comms)
	if err != nil {
		return repository.Lead{}, err
	}
	lead.QualityScore = breakdown.Total
	lead.Priority = priority
	return s.repo.Update(ctx, lead)
}

func (s *Service) score(ctx context.Context, lead repository.Lead, comms []repository.Communication) (scoring.Breakdown, string, error) {
	input := scoring.Input{
		Source:      lead.Source,
		HasEmail:    lead.Email != nil,
		HasPhone:    lead.Phone != nil,
		HasMessage:  lead.Message != nil && strings.TrimSpace(*lead.Message) != "",
		HasNotes:    lead.Notes != nil && strings.TrimSpace(*lead.Notes) != "",
		Status:      lead.Status,
		ContactedAt: lead.ContactedAt,
		CreatedAt:   lead.CreatedAt,
	}
	for _, comm := range comms {
		if comm.Direction == "inbound" {
			input.InboundMessages++
		}
		if comm.IsRead {
			input.ReadMessages++
		}
	}

	if lead.Email != nil {
		converted, err := s.repo.CountConvertedByEmail(ctx, *lead.Email, lead.ID)
		if err != nil {
			return scoring.Breakdown{}, "", err
		}
		input.ConvertedBefore = converted > 0
	}
	total, converted, err := s.repo.SourceConversionStats(ctx, lead.Source)
	if err != nil {
		return scoring.Breakdown{}, "", err
	}
	input.SourceLeadTotal = total
	if total > 0 {
		input.SourceLeadConversion = float64(converted) / float64(total)
	}

	breakdown, priority := scoring.Score(input, s.clock.Now())
	return breakdown, priority, nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizePhone(raw *string) *string {
	if raw == nil {
		return nil
	}
	normalized := phone.NormalizeE164(*raw)
	if normalized == "" {
		return nil
	}
	return &normalized
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
