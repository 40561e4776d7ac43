// Package service implements per-night stay price calculation from seasonal
// rate tables. All money amounts are integer cents to avoid floating point
// drift; conversion to display units happens at the transport boundary.
package service

import (
	"time"

	"resort_crm_backend/platform/apperr"
)

// Rate is a seasonal nightly rate valid over an inclusive
// [StartDate, EndDate] date window.
type Rate struct {
	Season    string
	RateCents int64
	StartDate time.Time
	EndDate   time.Time
}

// Night is the priced rate for a single night of a stay.
type Night struct {
	Date      time.Time
	Season    string
	RateCents int64
}

// Quote is the result of pricing a stay.
type Quote struct {
	Nights     []Night
	TotalCents int64
}

// Calculator prices stays night by night against a seasonal rate table.
type Calculator struct{}

// NewCalculator creates a stay price calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// CalculateStay prices every night in [checkIn, checkOut). Each night is
// matched against the rate windows that contain it; when several windows
// overlap a night the highest rate wins. A night outside every window falls
// back to the lowest rate in the table. An empty rate table is a hard error
// rather than a zero price.
func (c *Calculator) CalculateStay(rates []Rate, checkIn, checkOut time.Time) (Quote, error) {
	if !checkOut.After(checkIn) {
		return Quote{}, apperr.Validation("check_out must be after check_in")
	}
	if len(rates) == 0 {
		return Quote{}, apperr.Internal("no pricing rates configured for unit type")
	}

	fallback := rates[0]
	for _, r := range rates[1:] {
		if r.RateCents < fallback.RateCents {
			fallback = r
		}
	}

	var quote Quote
	for night := checkIn; night.Before(checkOut); night = night.AddDate(0, 0, 1) {
		chosen, ok := bestRateForNight(rates, night)
		if !ok {
			chosen = fallback
		}
		quote.Nights = append(quote.Nights, Night{
			Date:      night,
			Season:    chosen.Season,
			RateCents: chosen.RateCents,
		})
		quote.TotalCents += chosen.RateCents
	}
	return quote, nil
}

// bestRateForNight returns the highest rate whose window contains the night.
func bestRateForNight(rates []Rate, night time.Time) (Rate, bool) {
	var best Rate
	found := false
	for _, r := range rates {
		if night.Before(r.StartDate) || night.After(r.EndDate) {
			continue
		}
		if !found || r.RateCents > best.RateCents {
			best = r
			found = true
		}
	}
	return best, found
}
