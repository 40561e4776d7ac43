package service

import (
	"context"
	"time"

	unitsrepo "resort_crm_backend/internal/units/repository"
	"resort_crm_backend/platform/apperr"
)

// RateSource provides the active seasonal rates for a unit type.
type RateSource interface {
	ListActiveRatesForUnitType(ctx context.Context, unitType string) ([]unitsrepo.PricingRate, error)
}

// Service prices stays for a unit type using the configured seasonal rates.
type Service struct {
	rates RateSource
	calc  *Calculator
}

// New creates a new pricing service.
func New(rates RateSource) *Service {
	return &Service{rates: rates, calc: NewCalculator()}
}

// QuoteStay loads the active rates for the unit type and prices the stay.
func (s *Service) QuoteStay(ctx context.Context, unitType string, checkIn, checkOut time.Time) (Quote, error) {
	stored, err := s.rates.ListActiveRatesForUnitType(ctx, unitType)
	if err != nil {
		return Quote{}, err
	}
	if len(stored) == 0 {
		return Quote{}, apperr.Internal("no pricing rates configured for unit type")
	}

	rates := make([]Rate, 0, len(stored))
	for _, r := range stored {
		rates = append(rates, Rate{
			Season:    r.Season,
			RateCents: r.RateCents,
			StartDate: r.StartDate,
			EndDate:   r.EndDate,
		})
	}
	return s.calc.CalculateStay(rates, checkIn, checkOut)
}
