// Package transport defines the request and response shapes for price quotes.
package transport

type CalculatePriceRequest struct {
	UnitType string `form:"unit_type" json:"unit_type" validate:"required,min=2,max=60"`
	CheckIn  string `form:"check_in" json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `form:"check_out" json:"check_out" validate:"required,datetime=2006-01-02"`
}

type NightPrice struct {
	Date         string  `json:"date"`
	Season       string  `json:"season"`
	RatePerNight float64 `json:"rate_per_night"`
}

type QuoteResponse struct {
	UnitType string       `json:"unit_type"`
	CheckIn  string       `json:"check_in"`
	CheckOut string       `json:"check_out"`
	Nights   int          `json:"nights"`
	Currency string       `json:"currency"`
	PerNight []NightPrice `json:"per_night"`
	Total    float64      `json:"total"`
}
