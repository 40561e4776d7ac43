package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resort_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateRate inserts a new pricing rate.
func (r *Repo) CreateRate(ctx context.Context, rate PricingRate) (PricingRate, error) {
	query := `
		INSERT INTO pricing_rates (id, unit_type, season, rate_cents, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, unit_type, season, rate_cents, start_date, end_date, is_active, created_at, updated_at`

	var saved PricingRate
	err := r.pool.QueryRow(ctx, query,
		rate.ID, rate.UnitType, rate.Season, rate.RateCents, rate.StartDate, rate.EndDate, rate.IsActive,
	).Scan(
		&saved.ID, &saved.UnitType, &saved.Season, &saved.RateCents,
		&saved.StartDate, &saved.EndDate, &saved.IsActive, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return PricingRate{}, fmt.Errorf("create pricing rate: %w", err)
	}
	return saved, nil
}

// GetRateByID retrieves a pricing rate by its ID.
func (r *Repo) GetRateByID(ctx context.Context, id uuid.UUID) (PricingRate, error) {
	query := `
		SELECT id, unit_type, season, rate_cents, start_date, end_date, is_active, created_at, updated_at
		FROM pricing_rates WHERE id = $1`

	var rate PricingRate
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rate.ID, &rate.UnitType, &rate.Season, &rate.RateCents,
		&rate.StartDate, &rate.EndDate, &rate.IsActive, &rate.CreatedAt, &rate.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return PricingRate{}, apperr.NotFound(rateNotFoundMessage)
	}
	if err != nil {
		return PricingRate{}, fmt.Errorf("get pricing rate by id: %w", err)
	}
	return rate, nil
}

// ListRates retrieves all pricing rates ordered by unit type and start date.
func (r *Repo) ListRates(ctx context.Context) ([]PricingRate, error) {
	query := `
		SELECT id, unit_type, season, rate_cents, start_date, end_date, is_active, created_at, updated_at
		FROM pricing_rates ORDER BY unit_type, start_date`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pricing rates: %w", err)
	}
	defer rows.Close()

	return scanRates(rows)
}

// ListActiveRatesForUnitType retrieves active rates for a unit type.
func (r *Repo) ListActiveRatesForUnitType(ctx context.Context, unitType string) ([]PricingRate, error) {
	query := `
		SELECT id, unit_type, season, rate_cents, start_date, end_date, is_active, created_at, updated_at
		FROM pricing_rates
		WHERE is_active AND unit_type = $1
		ORDER BY start_date`

	rows, err := r.pool.Query(ctx, query, unitType)
	if err != nil {
		return nil, fmt.Errorf("list active rates: %w", err)
	}
	defer rows.Close()

	return scanRates(rows)
}

// UpdateRate updates a pricing rate's mutable fields.
func (r *Repo) UpdateRate(ctx context.Context, rate PricingRate) (PricingRate, error) {
	query := `
		UPDATE pricing_rates
		SET unit_type = $2, season = $3, rate_cents = $4, start_date = $5, end_date = $6, is_active = $7, updated_at = now()
		WHERE id = $1
		RETURNING id, unit_type, season, rate_cents, start_date, end_date, is_active, created_at, updated_at`

	var saved PricingRate
	err := r.pool.QueryRow(ctx, query,
		rate.ID, rate.UnitType, rate.Season, rate.RateCents, rate.StartDate, rate.EndDate, rate.IsActive,
	).Scan(
		&saved.ID, &saved.UnitType, &saved.Season, &saved.RateCents,
		&saved.StartDate, &saved.EndDate, &saved.IsActive, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return PricingRate{}, apperr.NotFound(rateNotFoundMessage)
	}
	if err != nil {
		return PricingRate{}, fmt.Errorf("update pricing rate: %w", err)
	}
	return saved, nil
}

// DeleteRate removes a pricing rate.
func (r *Repo) DeleteRate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pricing_rates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pricing rate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(rateNotFoundMessage)
	}
	return nil
}

// CreateBlock inserts an availability block for a unit on a date.
func (r *Repo) CreateBlock(ctx context.Context, block AvailabilityBlock) (AvailabilityBlock, error) {
	query := `
		INSERT INTO unit_availability_blocks (id, unit_id, block_date, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (unit_id, block_date) DO UPDATE SET reason = EXCLUDED.reason
		RETURNING id, unit_id, block_date, reason, created_at`

	var saved AvailabilityBlock
	err := r.pool.QueryRow(ctx, query,
		block.ID, block.UnitID, block.BlockDate, block.Reason,
	).Scan(&saved.ID, &saved.UnitID, &saved.BlockDate, &saved.Reason, &saved.CreatedAt)
	if err != nil {
		return AvailabilityBlock{}, fmt.Errorf("create availability block: %w", err)
	}
	return saved, nil
}

// DeleteBlock removes an availability block.
func (r *Repo) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM unit_availability_blocks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete availability block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(blockNotFoundMessage)
	}
	return nil
}

// ListBlocksForUnit retrieves blocks for a unit within [from, to).
func (r *Repo) ListBlocksForUnit(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]AvailabilityBlock, error) {
	query := `
		SELECT id, unit_id, block_date, reason, created_at
		FROM unit_availability_blocks
		WHERE unit_id = $1 AND block_date >= $2 AND block_date < $3
		ORDER BY block_date`

	rows, err := r.pool.Query(ctx, query, unitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list availability blocks: %w", err)
	}
	defer rows.Close()

	items := make([]AvailabilityBlock, 0)
	for rows.Next() {
		var block AvailabilityBlock
		if err := rows.Scan(&block.ID, &block.UnitID, &block.BlockDate, &block.Reason, &block.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan availability block: %w", err)
		}
		items = append(items, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability blocks: %w", err)
	}
	return items, nil
}

// BlockedUnitIDs returns the set of unit IDs that have at least one block
// inside the stay window [from, to).
func (r *Repo) BlockedUnitIDs(ctx context.Context, from, to time.Time) (map[uuid.UUID]struct{}, error) {
	query := `
		SELECT DISTINCT unit_id
		FROM unit_availability_blocks
		WHERE block_date >= $1 AND block_date < $2`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("blocked unit ids: %w", err)
	}
	defer rows.Close()

	blocked := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan blocked unit id: %w", err)
		}
		blocked[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked unit ids: %w", err)
	}
	return blocked, nil
}

func scanRates(rows pgx.Rows) ([]PricingRate, error) {
	items := make([]PricingRate, 0)
	for rows.Next() {
		var rate PricingRate
		if err := rows.Scan(
			&rate.ID, &rate.UnitType, &rate.Season, &rate.RateCents,
			&rate.StartDate, &rate.EndDate, &rate.IsActive, &rate.CreatedAt, &rate.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pricing rate: %w", err)
		}
		items = append(items, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pricing rates: %w", err)
	}
	return items, nil
}
