// Package service contains the business logic for guest profiles, including
// the find-or-create path used by lead conversion.
package service

import (
	"context"
	"strings"

	"resort_crm_backend/internal/guests/repository"
	"resort_crm_backend/platform/apperr"
	"resort_crm_backend/platform/phone"

	"github.com/google/uuid"
)

// Repository defines the persistence operations the service needs.
type Repository interface {
	Create(ctx context.Context, guest repository.Guest) (repository.Guest, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Guest, error)
	FindByEmailOrPhone(ctx context.Context, email, phoneE164 *string) (repository.Guest, bool, error)
	List(ctx context.Context, limit, offset int) ([]repository.Guest, error)
	Update(ctx context.Context, guest repository.Guest) (repository.Guest, error)
}

// Service manages guest profiles.
type Service struct {
	repo Repository
}

// New creates a new guests service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// FindOrCreateParams carries the identity fields used to match or create a
// guest during lead conversion.
type FindOrCreateParams struct {
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
}

// FindOrCreate matches an existing guest by email or phone, creating a new
// profile when neither matches. At least one of email or phone is required so
// every guest stays reachable.
func (s *Service) FindOrCreate(ctx context.Context, params FindOrCreateParams) (repository.Guest, error) {
	email := normalizeEmail(params.Email)
	phoneE164 := normalizePhone(params.Phone)
	if email == nil && phoneE164 == nil {
		return repository.Guest{}, apperr.Validation("guest requires an email or phone number")
	}

	existing, found, err := s.repo.FindByEmailOrPhone(ctx, email, phoneE164)
	if err != nil {
		return repository.Guest{}, err
	}
	if found {
		// Backfill contact fields the existing profile is missing.
		changed := false
		if existing.Email == nil && email != nil {
			existing.Email = email
			changed = true
		}
		if existing.Phone == nil && phoneE164 != nil {
			existing.Phone = phoneE164
			changed = true
		}
		if changed {
			return s.repo.Update(ctx, existing)
		}
		return existing, nil
	}

	return s.repo.Create(ctx, repository.Guest{
		ID:        uuid.New(),
		FirstName: strings.TrimSpace(params.FirstName),
		LastName:  strings.TrimSpace(params.LastName),
		Email:     email,
		Phone:     phoneE164,
	})
}

// Get retrieves a guest by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Guest, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves guests with pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]repository.Guest, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
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
