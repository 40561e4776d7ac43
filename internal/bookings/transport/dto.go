// Package transport defines the request and response shapes for the bookings
// module, including the public availability search.
package transport

import "github.com/google/uuid"

type AvailabilityRequest struct {
	CheckIn  string  `form:"check_in" json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string  `form:"check_out" json:"check_out" validate:"required,datetime=2006-01-02"`
	UnitType *string `form:"unit_type" json:"unit_type,omitempty" validate:"omitempty,min=2,max=60"`
	Guests   *int    `form:"guests" json:"guests,omitempty" validate:"omitempty,min=1,max=30"`
}

type AvailableUnit struct {
	UnitID       uuid.UUID `json:"unit_id"`
	Name         string    `json:"name"`
	UnitType     string    `json:"unit_type"`
	MaxGuests    int       `json:"max_guests"`
	TotalPrice   *float64  `json:"total_price,omitempty"`
	Currency     *string   `json:"currency,omitempty"`
}

type AvailabilityResponse struct {
	CheckIn   string          `json:"check_in"`
	CheckOut  string          `json:"check_out"`
	Nights    int             `json:"nights"`
	Available int             `json:"available"`
	Units     []AvailableUnit `json:"units"`
}

type CreateBookingRequest struct {
	UnitID          uuid.UUID  `json:"unit_id" validate:"required"`
	GuestID         *uuid.UUID `json:"guest_id,omitempty"`
	GuestFirstName  *string    `json:"guest_first_name,omitempty" validate:"omitempty,min=1,max=80"`
	GuestLastName   *string    `json:"guest_last_name,omitempty" validate:"omitempty,min=1,max=80"`
	GuestEmail      *string    `json:"guest_email,omitempty" validate:"omitempty,email"`
	GuestPhone      *string    `json:"guest_phone,omitempty" validate:"omitempty,min=5,max=30"`
	CheckIn         string     `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut        string     `json:"check_out" validate:"required,datetime=2006-01-02"`
	NumberOfGuests  int        `json:"number_of_guests" validate:"required,min=1,max=30"`
	DepositAmount   *float64   `json:"deposit_amount,omitempty" validate:"omitempty,gte=0"`
	SpecialRequests *string    `json:"special_requests,omitempty" validate:"omitempty,max=2000"`
}

type RecordDepositRequest struct {
	DepositAmount float64 `json:"deposit_amount" validate:"required,gte=0"`
}

type BookingResponse struct {
	ID               uuid.UUID  `json:"id"`
	BookingReference string     `json:"booking_reference"`
	UnitID           uuid.UUID  `json:"unit_id"`
	GuestID          uuid.UUID  `json:"guest_id"`
	LeadID           *uuid.UUID `json:"lead_id,omitempty"`
	CheckIn          string     `json:"check_in"`
	CheckOut         string     `json:"check_out"`
	Nights           int        `json:"nights"`
	NumberOfGuests   int        `json:"number_of_guests"`
	Status           string     `json:"status"`
	TotalAmount      float64    `json:"total_amount"`
	DepositAmount    float64    `json:"deposit_amount"`
	BalanceDue       float64    `json:"balance_due"`
	PaymentStatus    string     `json:"payment_status"`
	SpecialRequests  *string    `json:"special_requests,omitempty"`
	CreatedAt        string     `json:"created_at"`
}
