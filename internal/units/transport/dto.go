// Package transport defines the request and response shapes for the units
// module.
package transport

import "github.com/google/uuid"

type CreateUnitRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	UnitType    string  `json:"unit_type" validate:"required,min=2,max=60"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	MaxGuests   int     `json:"max_guests" validate:"required,min=1,max=30"`
}

type UpdateUnitRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	UnitType    *string `json:"unit_type,omitempty" validate:"omitempty,min=2,max=60"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	MaxGuests   *int    `json:"max_guests,omitempty" validate:"omitempty,min=1,max=30"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type UnitResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	UnitType    string    `json:"unit_type"`
	Description *string   `json:"description,omitempty"`
	MaxGuests   int       `json:"max_guests"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

type CreateRateRequest struct {
	UnitType     string  `json:"unit_type" validate:"required,min=2,max=60"`
	Season       string  `json:"season" validate:"required,min=2,max=60"`
	RatePerNight float64 `json:"rate_per_night" validate:"required,gt=0"`
	StartDate    string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string  `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type UpdateRateRequest struct {
	Season       *string  `json:"season,omitempty" validate:"omitempty,min=2,max=60"`
	RatePerNight *float64 `json:"rate_per_night,omitempty" validate:"omitempty,gt=0"`
	StartDate    *string  `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string  `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

type RateResponse struct {
	ID           uuid.UUID `json:"id"`
	UnitType     string    `json:"unit_type"`
	Season       string    `json:"season"`
	RatePerNight float64   `json:"rate_per_night"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	IsActive     bool      `json:"is_active"`
}

type CreateBlockRequest struct {
	UnitID    uuid.UUID `json:"unit_id" validate:"required"`
	StartDate string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string    `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    *string   `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type BlockResponse struct {
	ID        uuid.UUID `json:"id"`
	UnitID    uuid.UUID `json:"unit_id"`
	BlockDate string    `json:"block_date"`
	Reason    *string   `json:"reason,omitempty"`
}
