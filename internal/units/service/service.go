// Package service contains the business logic for managing units, seasonal
// pricing rates and availability blocks.
package service

import (
	"context"
	"math"
	"time"

	"resort_crm_backend/internal/units/repository"
	"resort_crm_backend/internal/units/transport"
	"resort_crm_backend/platform/apperr"
	"resort_crm_backend/platform/validator"

	"github.com/google/uuid"
)

// Repository defines the persistence operations the service needs.
type Repository interface {
	CreateUnit(ctx context.Context, unit repository.Unit) (repository.Unit, error)
	GetUnitByID(ctx context.Context, id uuid.UUID) (repository.Unit, error)
	ListUnits(ctx context.Context) ([]repository.Unit, error)
	UpdateUnit(ctx context.Context, unit repository.Unit) (repository.Unit, error)
	CreateRate(ctx context.Context, rate repository.PricingRate) (repository.PricingRate, error)
	GetRateByID(ctx context.Context, id uuid.UUID) (repository.PricingRate, error)
	ListRates(ctx context.Context) ([]repository.PricingRate, error)
	UpdateRate(ctx context.Context, rate repository.PricingRate) (repository.PricingRate, error)
	DeleteRate(ctx context.Context, id uuid.UUID) error
	CreateBlock(ctx context.Context, block repository.AvailabilityBlock) (repository.AvailabilityBlock, error)
	DeleteBlock(ctx context.Context, id uuid.UUID) error
	ListBlocksForUnit(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]repository.AvailabilityBlock, error)
}

// Service manages unit reference data.
type Service struct {
	repo     Repository
	validate *validator.Validator
}

// New creates a new units service.
func New(repo Repository, validate *validator.Validator) *Service {
	return &Service{repo: repo, validate: validate}
}

// CreateUnit validates and persists a new unit.
func (s *Service) CreateUnit(ctx context.Context, req transport.CreateUnitRequest) (repository.Unit, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.Unit{}, apperr.Validation(err.Error())
	}
	unit := repository.Unit{
		ID:          uuid.New(),
		Name:        req.Name,
		UnitType:    req.UnitType,
		Description: req.Description,
		MaxGuests:   req.MaxGuests,
		IsActive:    true,
	}
	return s.repo.CreateUnit(ctx, unit)
}

// GetUnit retrieves a unit by ID.
func (s *Service) GetUnit(ctx context.Context, id uuid.UUID) (repository.Unit, error) {
	return s.repo.GetUnitByID(ctx, id)
}

// ListUnits retrieves all units.
func (s *Service) ListUnits(ctx context.Context) ([]repository.Unit, error) {
	return s.repo.ListUnits(ctx)
}

// UpdateUnit applies a partial update to a unit.
func (s *Service) UpdateUnit(ctx context.Context, id uuid.UUID, req transport.UpdateUnitRequest) (repository.Unit, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.Unit{}, apperr.Validation(err.Error())
	}
	unit, err := s.repo.GetUnitByID(ctx, id)
	if err != nil {
		return repository.Unit{}, err
	}
	if req.Name != nil {
		unit.Name = *req.Name
	}
	if req.UnitType != nil {
		unit.UnitType = *req.UnitType
	}
	if req.Description != nil {
		unit.Description = req.Description
	}
	if req.MaxGuests != nil {
		unit.MaxGuests = *req.MaxGuests
	}
	if req.IsActive != nil {
		unit.IsActive = *req.IsActive
	}
	return s.repo.UpdateUnit(ctx, unit)
}

// CreateRate validates and persists a new seasonal pricing rate.
func (s *Service) CreateRate(ctx context.Context, req transport.CreateRateRequest) (repository.PricingRate, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.PricingRate{}, apperr.Validation(err.Error())
	}
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return repository.PricingRate{}, apperr.Validation("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return repository.PricingRate{}, apperr.Validation("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return repository.PricingRate{}, apperr.Validation("end_date must not be before start_date")
	}
	rate := repository.PricingRate{
		ID:        uuid.New(),
		UnitType:  req.UnitType,
		Season:    req.Season,
		RateCents: toCents(req.RatePerNight),
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
	}
	return s.repo.CreateRate(ctx, rate)
}

// ListRates retrieves all pricing rates.
func (s *Service) ListRates(ctx context.Context) ([]repository.PricingRate, error) {
	return s.repo.ListRates(ctx)
}

// UpdateRate applies a partial update to a pricing rate.
func (s *Service) UpdateRate(ctx context.Context, id uuid.UUID, req transport.UpdateRateRequest) (repository.PricingRate, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.PricingRate{}, apperr.Validation(err.Error())
	}
	rate, err := s.repo.GetRateByID(ctx, id)
	if err != nil {
		return repository.PricingRate{}, err
	}
	if req.Season != nil {
		rate.Season = *req.Season
	}
	if req.RatePerNight != nil {
		rate.RateCents = toCents(*req.RatePerNight)
	}
	if req.StartDate != nil {
		start, err := time.Parse(time.DateOnly, *req.StartDate)
		if err != nil {
			return repository.PricingRate{}, apperr.Validation("start_date must be YYYY-MM-DD")
		}
		rate.StartDate = start
	}
	if req.EndDate != nil {
		end, err := time.Parse(time.DateOnly, *req.EndDate)
		if err != nil {
			return repository.PricingRate{}, apperr.Validation("end_date must be YYYY-MM-DD")
		}
		rate.EndDate = end
	}
	if rate.EndDate.Before(rate.StartDate) {
		return repository.PricingRate{}, apperr.Validation("end_date must not be before start_date")
	}
	if req.IsActive != nil {
		rate.IsActive = *req.IsActive
	}
	return s.repo.UpdateRate(ctx, rate)
}

// DeleteRate removes a pricing rate.
func (s *Service) DeleteRate(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRate(ctx, id)
}

// CreateBlocks blocks a unit for every date in [start_date, end_date]. The
// range is inclusive on both ends since a block covers whole calendar days.
func (s *Service) CreateBlocks(ctx context.Context, req transport.CreateBlockRequest) ([]repository.AvailabilityBlock, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return nil, apperr.Validation("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return nil, apperr.Validation("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, apperr.Validation("end_date must not be before start_date")
	}
	if _, err := s.repo.GetUnitByID(ctx, req.UnitID); err != nil {
		return nil, err
	}

	blocks := make([]repository.AvailabilityBlock, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		saved, err := s.repo.CreateBlock(ctx, repository.AvailabilityBlock{
			ID:        uuid.New(),
			UnitID:    req.UnitID,
			BlockDate: d,
			Reason:    req.Reason,
		})
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, saved)
	}
	return blocks, nil
}

// DeleteBlock removes an availability block.
func (s *Service) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteBlock(ctx, id)
}

// ListBlocksForUnit retrieves blocks for a unit within [from, to).
func (s *Service) ListBlocksForUnit(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]repository.AvailabilityBlock, error) {
	return s.repo.ListBlocksForUnit(ctx, unitID, from, to)
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
