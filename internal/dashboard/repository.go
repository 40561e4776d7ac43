// Package dashboard serves the staff overview: aggregate lead, booking,
// revenue, guest, campaign and review figures over a reporting window.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CountBucket is one slice of a grouped count.
type CountBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// LeadStats aggregates the lead pipeline over the window.
type LeadStats struct {
	Total            int           `json:"total"`
	New              int           `json:"new"`
	Converted        int           `json:"converted"`
	HighPriority     int           `json:"high_priority"`
	ConversionRate   float64       `json:"conversion_rate"`
	AvgResponseHours float64       `json:"avg_response_time_hours"`
	ByStatus         []CountBucket `json:"by_status"`
	BySource         []CountBucket `json:"by_source"`
}

// BookingStats aggregates bookings over the window plus live occupancy.
type BookingStats struct {
	Total            int           `json:"total"`
	Confirmed        int           `json:"confirmed"`
	Cancelled        int           `json:"cancelled"`
	CancellationRate float64       `json:"cancellation_rate"`
	UpcomingCheckIns int           `json:"upcoming_check_ins"`
	CurrentOccupancy int           `json:"current_occupancy"`
	OccupancyRate    float64       `json:"occupancy_rate"`
	ByStatus         []CountBucket `json:"by_status"`
}

// RevenueStats aggregates booking money over the window. Amounts are cents.
type RevenueStats struct {
	TotalCents       int64
	PaidCents        int64
	OutstandingCents int64
	AvgBookingCents  int64
	ByUnitType       []RevenueBucket
}

// RevenueBucket is revenue attributed to one unit type.
type RevenueBucket struct {
	UnitType     string
	RevenueCents int64
	Bookings     int
}

// TrendPoint is one day of activity. RevenueCents is zero for lead trends.
type TrendPoint struct {
	Date         string
	Count        int
	RevenueCents int64
}

// GuestStats aggregates the guest book.
type GuestStats struct {
	New        int
	Total      int
	Repeat     int
	RepeatRate float64
	Top        []TopGuest
}

// TopGuest is a guest ranked by booking revenue in the window.
type TopGuest struct {
	GuestID      uuid.UUID
	Name         string
	Email        *string
	Bookings     int
	RevenueCents int64
}

// CampaignStats aggregates email campaigns over the window.
type CampaignStats struct {
	Total             int `json:"total"`
	Sent              int `json:"sent"`
	RecipientsReached int `json:"recipients_reached"`
}

// ReviewStats aggregates guest reviews over the window.
type ReviewStats struct {
	Total         int            `json:"total"`
	AverageRating float64        `json:"average_rating"`
	Distribution  []RatingBucket `json:"rating_distribution"`
}

// RatingBucket is the review count for one star rating.
type RatingBucket struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// Arrival is an upcoming check-in or check-out.
type Arrival struct {
	BookingID uuid.UUID
	Reference string
	Date      time.Time
	GuestName string
	UnitName  string
	Guests    int
}

// StaleLead is a new lead that has gone uncontacted past the response target.
type StaleLead struct {
	LeadID    uuid.UUID
	Name      string
	Email     *string
	Source    string
	CreatedAt time.Time
}

// Repository runs the read-only aggregate queries behind the dashboard.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a dashboard repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LeadStats aggregates leads created in [from, to).
func (r *Repository) LeadStats(ctx context.Context, from, to time.Time) (LeadStats, error) {
	var stats LeadStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'new'),
		       count(*) FILTER (WHERE status = 'converted'),
		       count(*) FILTER (WHERE priority = 'high'),
		       COALESCE(EXTRACT(EPOCH FROM AVG(contacted_at - created_at)) / 3600, 0)
		FROM leads WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&stats.Total, &stats.New, &stats.Converted, &stats.HighPriority, &stats.AvgResponseHours)
	if err != nil {
		return LeadStats{}, fmt.Errorf("lead stats: %w", err)
	}
	if stats.Total > 0 {
		stats.ConversionRate = float64(stats.Converted) / float64(stats.Total) * 100
	}

	stats.ByStatus, err = r.countBuckets(ctx,
		`SELECT status, count(*) FROM leads WHERE created_at >= $1 AND created_at < $2
		 GROUP BY status ORDER BY count(*) DESC`, from, to)
	if err != nil {
		return LeadStats{}, err
	}
	stats.BySource, err = r.countBuckets(ctx,
		`SELECT source, count(*) FROM leads WHERE created_at >= $1 AND created_at < $2
		 GROUP BY source ORDER BY count(*) DESC`, from, to)
	if err != nil {
		return LeadStats{}, err
	}
	return stats, nil
}

// BookingStats aggregates bookings created in [from, to); occupancy and the
// upcoming check-in count are measured against today, not the window.
func (r *Repository) BookingStats(ctx context.Context, from, to, today time.Time) (BookingStats, error) {
	var stats BookingStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'confirmed'),
		       count(*) FILTER (WHERE status = 'cancelled')
		FROM bookings WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&stats.Total, &stats.Confirmed, &stats.Cancelled)
	if err != nil {
		return BookingStats{}, fmt.Errorf("booking stats: %w", err)
	}
	if stats.Total > 0 {
		stats.CancellationRate = float64(stats.Cancelled) / float64(stats.Total) * 100
	}

	err = r.pool.QueryRow(ctx, `
		SELECT count(*) FROM bookings
		WHERE check_in >= $1 AND check_in < $2 AND status IN ('pending', 'confirmed')`,
		today, today.AddDate(0, 0, 7),
	).Scan(&stats.UpcomingCheckIns)
	if err != nil {
		return BookingStats{}, fmt.Errorf("upcoming check-ins: %w", err)
	}

	var activeUnits int
	err = r.pool.QueryRow(ctx, `
		SELECT
		    (SELECT count(*) FROM bookings
		     WHERE check_in <= $1 AND check_out > $1 AND status IN ('confirmed', 'checked_in')),
		    (SELECT count(*) FROM units WHERE is_active)`,
		today,
	).Scan(&stats.CurrentOccupancy, &activeUnits)
	if err != nil {
		return BookingStats{}, fmt.Errorf("occupancy: %w", err)
	}
	if activeUnits > 0 {
		stats.OccupancyRate = float64(stats.CurrentOccupancy) / float64(activeUnits) * 100
	}

	stats.ByStatus, err = r.countBuckets(ctx,
		`SELECT status, count(*) FROM bookings WHERE created_at >= $1 AND created_at < $2
		 GROUP BY status ORDER BY count(*) DESC`, from, to)
	if err != nil {
		return BookingStats{}, err
	}
	return stats, nil
}

// RevenueStats aggregates non-cancelled booking money in [from, to).
func (r *Repository) RevenueStats(ctx context.Context, from, to time.Time) (RevenueStats, error) {
	var stats RevenueStats
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_cents), 0),
		       COALESCE(SUM(total_cents) FILTER (WHERE payment_status = 'paid'), 0),
		       COALESCE(SUM(balance_cents) FILTER (WHERE payment_status <> 'paid'), 0),
		       COALESCE(AVG(total_cents), 0)::BIGINT
		FROM bookings
		WHERE created_at >= $1 AND created_at < $2 AND status <> 'cancelled'`,
		from, to,
	).Scan(&stats.TotalCents, &stats.PaidCents, &stats.OutstandingCents, &stats.AvgBookingCents)
	if err != nil {
		return RevenueStats{}, fmt.Errorf("revenue stats: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT u.unit_type, COALESCE(SUM(b.total_cents), 0), count(*)
		FROM bookings b
		JOIN units u ON u.id = b.unit_id
		WHERE b.created_at >= $1 AND b.created_at < $2 AND b.status <> 'cancelled'
		GROUP BY u.unit_type ORDER BY 2 DESC`,
		from, to,
	)
	if err != nil {
		return RevenueStats{}, fmt.Errorf("revenue by unit type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bucket RevenueBucket
		if err := rows.Scan(&bucket.UnitType, &bucket.RevenueCents, &bucket.Bookings); err != nil {
			return RevenueStats{}, fmt.Errorf("scan revenue bucket: %w", err)
		}
		stats.ByUnitType = append(stats.ByUnitType, bucket)
	}
	if err := rows.Err(); err != nil {
		return RevenueStats{}, fmt.Errorf("iterate revenue buckets: %w", err)
	}
	return stats, nil
}

// LeadTrend returns daily lead counts in [from, to).
func (r *Repository) LeadTrend(ctx context.Context, from, to time.Time) ([]TrendPoint, error) {
	return r.trend(ctx, `
		SELECT created_at::date, count(*), 0::BIGINT
		FROM leads WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1 ORDER BY 1`, from, to)
}

// BookingTrend returns daily non-cancelled booking counts and revenue in [from, to).
func (r *Repository) BookingTrend(ctx context.Context, from, to time.Time) ([]TrendPoint, error) {
	return r.trend(ctx, `
		SELECT created_at::date, count(*), COALESCE(SUM(total_cents), 0)
		FROM bookings WHERE created_at >= $1 AND created_at < $2 AND status <> 'cancelled'
		GROUP BY 1 ORDER BY 1`, from, to)
}

// GuestStats aggregates the guest book: window arrivals plus all-time repeat
// rate and the top guests by revenue in the window.
func (r *Repository) GuestStats(ctx context.Context, from, to time.Time) (GuestStats, error) {
	var stats GuestStats
	err := r.pool.QueryRow(ctx, `
		SELECT
		    (SELECT count(*) FROM guests WHERE created_at >= $1 AND created_at < $2),
		    (SELECT count(*) FROM guests),
		    (SELECT count(*) FROM (
		        SELECT guest_id FROM bookings WHERE status <> 'cancelled'
		        GROUP BY guest_id HAVING count(*) > 1
		    ) repeat_guests)`,
		from, to,
	).Scan(&stats.New, &stats.Total, &stats.Repeat)
	if err != nil {
		return GuestStats{}, fmt.Errorf("guest stats: %w", err)
	}
	if stats.Total > 0 {
		stats.RepeatRate = float64(stats.Repeat) / float64(stats.Total) * 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT g.id, g.first_name || ' ' || g.last_name, g.email,
		       count(b.id), COALESCE(SUM(b.total_cents), 0)
		FROM guests g
		JOIN bookings b ON b.guest_id = g.id
		WHERE b.created_at >= $1 AND b.created_at < $2 AND b.status <> 'cancelled'
		GROUP BY g.id, g.first_name, g.last_name, g.email
		ORDER BY 5 DESC LIMIT 5`,
		from, to,
	)
	if err != nil {
		return GuestStats{}, fmt.Errorf("top guests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var top TopGuest
		if err := rows.Scan(&top.GuestID, &top.Name, &top.Email, &top.Bookings, &top.RevenueCents); err != nil {
			return GuestStats{}, fmt.Errorf("scan top guest: %w", err)
		}
		stats.Top = append(stats.Top, top)
	}
	if err := rows.Err(); err != nil {
		return GuestStats{}, fmt.Errorf("iterate top guests: %w", err)
	}
	return stats, nil
}

// CampaignStats aggregates campaigns created in [from, to).
func (r *Repository) CampaignStats(ctx context.Context, from, to time.Time) (CampaignStats, error) {
	var stats CampaignStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'sent'),
		       COALESCE(SUM(sent_count) FILTER (WHERE status = 'sent'), 0)
		FROM campaigns WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&stats.Total, &stats.Sent, &stats.RecipientsReached)
	if err != nil {
		return CampaignStats{}, fmt.Errorf("campaign stats: %w", err)
	}
	return stats, nil
}

// ReviewStats aggregates reviews submitted in [from, to).
func (r *Repository) ReviewStats(ctx context.Context, from, to time.Time) (ReviewStats, error) {
	var stats ReviewStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*), COALESCE(AVG(rating), 0)
		FROM reviews WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&stats.Total, &stats.AverageRating)
	if err != nil {
		return ReviewStats{}, fmt.Errorf("review stats: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rating, count(*)
		FROM reviews WHERE created_at >= $1 AND created_at < $2
		GROUP BY rating ORDER BY rating DESC`,
		from, to,
	)
	if err != nil {
		return ReviewStats{}, fmt.Errorf("rating distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bucket RatingBucket
		if err := rows.Scan(&bucket.Rating, &bucket.Count); err != nil {
			return ReviewStats{}, fmt.Errorf("scan rating bucket: %w", err)
		}
		stats.Distribution = append(stats.Distribution, bucket)
	}
	if err := rows.Err(); err != nil {
		return ReviewStats{}, fmt.Errorf("iterate rating buckets: %w", err)
	}
	return stats, nil
}

// UpcomingCheckIns lists the next arrivals from today, nearest first.
func (r *Repository) UpcomingCheckIns(ctx context.Context, today time.Time, limit int) ([]Arrival, error) {
	return r.arrivals(ctx, `
		SELECT b.id, b.booking_reference, b.check_in,
		       g.first_name || ' ' || g.last_name, u.name, b.number_of_guests
		FROM bookings b
		JOIN guests g ON g.id = b.guest_id
		JOIN units u ON u.id = b.unit_id
		WHERE b.check_in >= $1 AND b.check_in < $2 AND b.status IN ('pending', 'confirmed')
		ORDER BY b.check_in LIMIT $3`, today, limit)
}

// UpcomingCheckOuts lists the next departures from today, nearest first.
func (r *Repository) UpcomingCheckOuts(ctx context.Context, today time.Time, limit int) ([]Arrival, error) {
	return r.arrivals(ctx, `
		SELECT b.id, b.booking_reference, b.check_out,
		       g.first_name || ' ' || g.last_name, u.name, b.number_of_guests
		FROM bookings b
		JOIN guests g ON g.id = b.guest_id
		JOIN units u ON u.id = b.unit_id
		WHERE b.check_out >= $1 AND b.check_out < $2 AND b.status IN ('confirmed', 'checked_in')
		ORDER BY b.check_out LIMIT $3`, today, limit)
}

// StaleLeads lists new leads still uncontacted after the cutoff, oldest first.
func (r *Repository) StaleLeads(ctx context.Context, olderThan time.Time, limit int) ([]StaleLead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, source, created_at
		FROM leads
		WHERE status = 'new' AND contacted_at IS NULL AND created_at < $1
		ORDER BY created_at LIMIT $2`,
		olderThan, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("stale leads: %w", err)
	}
	defer rows.Close()

	items := make([]StaleLead, 0)
	for rows.Next() {
		var lead StaleLead
		if err := rows.Scan(&lead.LeadID, &lead.Name, &lead.Email, &lead.Source, &lead.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stale lead: %w", err)
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stale leads: %w", err)
	}
	return items, nil
}

func (r *Repository) countBuckets(ctx context.Context, query string, from, to time.Time) ([]CountBucket, error) {
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("count buckets: %w", err)
	}
	defer rows.Close()

	buckets := make([]CountBucket, 0)
	for rows.Next() {
		var bucket CountBucket
		if err := rows.Scan(&bucket.Key, &bucket.Count); err != nil {
			return nil, fmt.Errorf("scan count bucket: %w", err)
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count buckets: %w", err)
	}
	return buckets, nil
}

func (r *Repository) trend(ctx context.Context, query string, from, to time.Time) ([]TrendPoint, error) {
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}
	defer rows.Close()

	points := make([]TrendPoint, 0)
	for rows.Next() {
		var day time.Time
		var point TrendPoint
		if err := rows.Scan(&day, &point.Count, &point.RevenueCents); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		point.Date = day.Format(time.DateOnly)
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend points: %w", err)
	}
	return points, nil
}

func (r *Repository) arrivals(ctx context.Context, query string, today time.Time, limit int) ([]Arrival, error) {
	rows, err := r.pool.Query(ctx, query, today, today.AddDate(0, 0, 7), limit)
	if err != nil {
		return nil, fmt.Errorf("upcoming stays: %w", err)
	}
	defer rows.Close()

	items := make([]Arrival, 0)
	for rows.Next() {
		var arrival Arrival
		if err := rows.Scan(&arrival.BookingID, &arrival.Reference, &arrival.Date,
			&arrival.GuestName, &arrival.UnitName, &arrival.Guests); err != nil {
			return nil, fmt.Errorf("scan upcoming stay: %w", err)
		}
		items = append(items, arrival)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upcoming stays: %w", err)
	}
	return items, nil
}
