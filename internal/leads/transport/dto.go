// Package transport defines the request and response shapes for the leads
// module.
package transport

import "github.com/google/uuid"

type CreateLeadRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=160"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Source  string  `json:"source,omitempty" validate:"omitempty,oneof=meta_ads phone website email manual other"`
	Message *string `json:"message,omitempty" validate:"omitempty,max=4000"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

type UpdateLeadRequest struct {
	Name       *string    `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	Email      *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string    `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Notes      *string    `json:"notes,omitempty" validate:"omitempty,max=4000"`
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified lost"`
}

type AddCommunicationRequest struct {
	Direction string  `json:"direction" validate:"required,oneof=inbound outbound"`
	Channel   string  `json:"channel,omitempty" validate:"omitempty,oneof=email phone whatsapp sms"`
	Body      *string `json:"body,omitempty" validate:"omitempty,max=8000"`
}

type ConvertLeadRequest struct {
	UnitID          uuid.UUID `json:"unit_id" validate:"required"`
	CheckIn         string    `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut        string    `json:"check_out" validate:"required,datetime=2006-01-02"`
	NumberOfGuests  int       `json:"number_of_guests" validate:"required,min=1,max=30"`
	DepositAmount   *float64  `json:"deposit_amount,omitempty" validate:"omitempty,gte=0"`
	SpecialRequests *string   `json:"special_requests,omitempty" validate:"omitempty,max=2000"`
}

type ConvertLeadResponse struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	GuestID          uuid.UUID `json:"guest_id"`
	EmailSent        bool      `json:"email_sent"`
	EmailError       *string   `json:"email_error,omitempty"`
}

type ScoreBreakdownResponse struct {
	Source       int `json:"source"`
	Completeness int `json:"completeness"`
	Engagement   int `json:"engagement"`
	Recency      int `json:"recency"`
	Historical   int `json:"historical"`
	Total        int `json:"total"`
}

type LeadResponse struct {
	ID                   uuid.UUID  `json:"id"`
	Name                 string     `json:"name"`
	Email                *string    `json:"email,omitempty"`
	Phone                *string    `json:"phone,omitempty"`
	Source               string     `json:"source"`
	Status               string     `json:"status"`
	Priority             string     `json:"priority"`
	QualityScore         int        `json:"quality_score"`
	Message              *string    `json:"message,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
	AssignedTo           *uuid.UUID `json:"assigned_to,omitempty"`
	ContactedAt          *string    `json:"contacted_at,omitempty"`
	ConvertedToBookingID *uuid.UUID `json:"converted_to_booking_id,omitempty"`
	CreatedAt            string     `json:"created_at"`
}

type CommunicationResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"lead_id"`
	Direction string    `json:"direction"`
	Channel   string    `json:"channel"`
	Body      *string   `json:"body,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt string    `json:"created_at"`
}
