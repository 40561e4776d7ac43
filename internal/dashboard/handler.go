package dashboard

import (
	"fmt"
	"net/http"
	"time"

	"resort_crm_backend/platform/clock"
	"resort_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	topListLimit       = 10
	staleLeadCutoff    = 24 * time.Hour
	defaultStatsPeriod = "month"
)

type revenueResponse struct {
	Total       float64                 `json:"total_revenue"`
	Paid        float64                 `json:"paid_revenue"`
	Outstanding float64                 `json:"outstanding_revenue"`
	AvgBooking  float64                 `json:"avg_booking_value"`
	ByUnitType  []revenueBucketResponse `json:"by_unit_type"`
}

type revenueBucketResponse struct {
	UnitType string  `json:"unit_type"`
	Revenue  float64 `json:"revenue"`
	Bookings int     `json:"bookings"`
}

type trendPointResponse struct {
	Date    string  `json:"date"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue,omitempty"`
}

type guestStatsResponse struct {
	New        int                `json:"new"`
	Total      int                `json:"total"`
	Repeat     int                `json:"repeat"`
	RepeatRate float64            `json:"repeat_rate"`
	Top        []topGuestResponse `json:"top_guests"`
}

type topGuestResponse struct {
	GuestID  uuid.UUID `json:"guest_id"`
	Name     string    `json:"name"`
	Email    *string   `json:"email,omitempty"`
	Bookings int       `json:"bookings"`
	Revenue  float64   `json:"revenue"`
}

type arrivalResponse struct {
	BookingID uuid.UUID `json:"booking_id"`
	Reference string    `json:"booking_reference"`
	Date      string    `json:"date"`
	GuestName string    `json:"guest_name"`
	UnitName  string    `json:"unit_name"`
	Guests    int       `json:"guests"`
}

type staleLeadResponse struct {
	LeadID    uuid.UUID `json:"lead_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Source    string    `json:"source"`
	CreatedAt string    `json:"created_at"`
}

// Handler serves the dashboard endpoints.
type Handler struct {
	repo  *Repository
	clock clock.Clock
}

// NewHandler creates a dashboard handler.
func NewHandler(repo *Repository, clk clock.Clock) *Handler {
	return &Handler{repo: repo, clock: clk}
}

// Stats serves the full dashboard: aggregates over the reporting window plus
// live occupancy, upcoming stays and leads needing attention.
// GET /api/v1/dashboard/stats
func (h *Handler) Stats(c *gin.Context) {
	now := h.clock.Now()
	period := c.DefaultQuery("period", defaultStatsPeriod)
	from, to, err := reportingWindow(now, period, c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	ctx := c.Request.Context()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	leads, err := h.repo.LeadStats(ctx, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	bookings, err := h.repo.BookingStats(ctx, from, to, today)
	if httpkit.HandleError(c, err) {
		return
	}
	revenue, err := h.repo.RevenueStats(ctx, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	guests, err := h.repo.GuestStats(ctx, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	campaigns, err := h.repo.CampaignStats(ctx, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	reviews, err := h.repo.ReviewStats(ctx, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	leadTrend, err := h.repo.LeadTrend(ctx, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	bookingTrend, err := h.repo.BookingTrend(ctx, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	checkIns, err := h.repo.UpcomingCheckIns(ctx, today, topListLimit)
	if httpkit.HandleError(c, err) {
		return
	}
	checkOuts, err := h.repo.UpcomingCheckOuts(ctx, today, topListLimit)
	if httpkit.HandleError(c, err) {
		return
	}
	staleLeads, err := h.repo.StaleLeads(ctx, now.Add(-staleLeadCutoff), topListLimit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"period":    period,
		"date_from": from.Format(time.DateOnly),
		"date_to":   to.AddDate(0, 0, -1).Format(time.DateOnly),
		"leads":     leads,
		"bookings":  bookings,
		"revenue":   toRevenueResponse(revenue),
		"guests":    toGuestStatsResponse(guests),
		"campaigns": campaigns,
		"reviews":   reviews,
		"trends": gin.H{
			"leads":    toTrendResponses(leadTrend),
			"bookings": toTrendResponses(bookingTrend),
		},
		"upcoming": gin.H{
			"check_ins":         toArrivalResponses(checkIns),
			"check_outs":        toArrivalResponses(checkOuts),
			"uncontacted_leads": toStaleLeadResponses(staleLeads),
		},
	})
}

// reportingWindow resolves the [from, to) range for the stats query. Explicit
// date_from/date_to take precedence over the named period; date_to is
// inclusive so the range extends to the start of the following day.
func reportingWindow(now time.Time, period, fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr != "" || toStr != "" {
		from, err := time.Parse(time.DateOnly, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("date_from must be YYYY-MM-DD")
		}
		to, err := time.Parse(time.DateOnly, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("date_to must be YYYY-MM-DD")
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("date_to must not precede date_from")
		}
		return from, to.AddDate(0, 0, 1), nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	switch period {
	case "day":
		return today, tomorrow, nil
	case "week":
		daysSinceMonday := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -daysSinceMonday), tomorrow, nil
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), tomorrow, nil
	case "year":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), tomorrow, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("period must be one of day, week, month, year")
	}
}

func toRevenueResponse(stats RevenueStats) revenueResponse {
	out := revenueResponse{
		Total:       centsToAmount(stats.TotalCents),
		Paid:        centsToAmount(stats.PaidCents),
		Outstanding: centsToAmount(stats.OutstandingCents),
		AvgBooking:  centsToAmount(stats.AvgBookingCents),
		ByUnitType:  make([]revenueBucketResponse, 0, len(stats.ByUnitType)),
	}
	for _, bucket := range stats.ByUnitType {
		out.ByUnitType = append(out.ByUnitType, revenueBucketResponse{
			UnitType: bucket.UnitType,
			Revenue:  centsToAmount(bucket.RevenueCents),
			Bookings: bucket.Bookings,
		})
	}
	return out
}

func toGuestStatsResponse(stats GuestStats) guestStatsResponse {
	out := guestStatsResponse{
		New:        stats.New,
		Total:      stats.Total,
		Repeat:     stats.Repeat,
		RepeatRate: stats.RepeatRate,
		Top:        make([]topGuestResponse, 0, len(stats.Top)),
	}
	for _, top := range stats.Top {
		out.Top = append(out.Top, topGuestResponse{
			GuestID:  top.GuestID,
			Name:     top.Name,
			Email:    top.Email,
			Bookings: top.Bookings,
			Revenue:  centsToAmount(top.RevenueCents),
		})
	}
	return out
}

func toTrendResponses(points []TrendPoint) []trendPointResponse {
	out := make([]trendPointResponse, 0, len(points))
	for _, point := range points {
		out = append(out, trendPointResponse{
			Date:    point.Date,
			Count:   point.Count,
			Revenue: centsToAmount(point.RevenueCents),
		})
	}
	return out
}

func toArrivalResponses(items []Arrival) []arrivalResponse {
	out := make([]arrivalResponse, 0, len(items))
	for _, item := range items {
		out = append(out, arrivalResponse{
			BookingID: item.BookingID,
			Reference: item.Reference,
			Date:      item.Date.Format(time.DateOnly),
			GuestName: item.GuestName,
			UnitName:  item.UnitName,
			Guests:    item.Guests,
		})
	}
	return out
}

func toStaleLeadResponses(items []StaleLead) []staleLeadResponse {
	out := make([]staleLeadResponse, 0, len(items))
	for _, item := range items {
		out = append(out, staleLeadResponse{
			LeadID:    item.LeadID,
			Name:      item.Name,
			Email:     item.Email,
			Source:    item.Source,
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func centsToAmount(cents int64) float64 {
	return float64(cents) / 100
}
