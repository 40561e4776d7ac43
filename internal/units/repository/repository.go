// Package repository provides PostgreSQL persistence for units, seasonal
// pricing rates and per-date availability blocks.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resort_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	unitNotFoundMessage  = "unit not found"
	rateNotFoundMessage  = "pricing rate not found"
	blockNotFoundMessage = "availability block not found"
)

// Unit is a bookable physical room/unit.
type Unit struct {
	ID          uuid.UUID
	Name        string
	UnitType    string
	Description *string
	MaxGuests   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PricingRate is a seasonal nightly rate for a unit type, valid over an
// inclusive [StartDate, EndDate] window.
type PricingRate struct {
	ID        uuid.UUID
	UnitType  string
	Season    string
	RateCents int64
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailabilityBlock marks a unit unavailable on a single date regardless of
// booking state (maintenance, owner use).
type AvailabilityBlock struct {
	ID        uuid.UUID
	UnitID    uuid.UUID
	BlockDate time.Time
	Reason    *string
	CreatedAt time.Time
}

// Repo implements unit reference-data persistence with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new units repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// CreateUnit inserts a new unit.
func (r *Repo) CreateUnit(ctx context.Context, unit Unit) (Unit, error) {
	query := `
		INSERT INTO units (id, name, unit_type, description, max_guests, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, unit_type, description, max_guests, is_active, created_at, updated_at`

	var saved Unit
	err := r.pool.QueryRow(ctx, query,
		unit.ID, unit.Name, unit.UnitType, unit.Description, unit.MaxGuests, unit.IsActive,
	).Scan(
		&saved.ID, &saved.Name, &saved.UnitType, &saved.Description,
		&saved.MaxGuests, &saved.IsActive, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return Unit{}, fmt.Errorf("create unit: %w", err)
	}
	return saved, nil
}

// GetUnitByID retrieves a unit by its ID.
func (r *Repo) GetUnitByID(ctx context.Context, id uuid.UUID) (Unit, error) {
	query := `
		SELECT id, name, unit_type, description, max_guests, is_active, created_at, updated_at
		FROM units WHERE id = $1`

	var unit Unit
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&unit.ID, &unit.Name, &unit.UnitType, &unit.Description,
		&unit.MaxGuests, &unit.IsActive, &unit.CreatedAt, &unit.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unit{}, apperr.NotFound(unitNotFoundMessage)
	}
	if err != nil {
		return Unit{}, fmt.Errorf("get unit by id: %w", err)
	}
	return unit, nil
}

// ListUnits retrieves all units ordered by name.
func (r *Repo) ListUnits(ctx context.Context) ([]Unit, error) {
	query := `
		SELECT id, name, unit_type, description, max_guests, is_active, created_at, updated_at
		FROM units ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	return scanUnits(rows)
}

// ListActiveUnits retrieves active units, optionally filtered by unit type.
func (r *Repo) ListActiveUnits(ctx context.Context, unitType *string) ([]Unit, error) {
	query := `
		SELECT id, name, unit_type, description, max_guests, is_active, created_at, updated_at
		FROM units WHERE is_active`
	args := []interface{}{}
	if unitType != nil {
		query += ` AND unit_type = $1`
		args = append(args, *unitType)
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active units: %w", err)
	}
	defer rows.Close()

	return scanUnits(rows)
}

// UpdateUnit updates a unit's mutable fields.
func (r *Repo) UpdateUnit(ctx context.Context, unit Unit) (Unit, error) {
	query := `
		UPDATE units
		SET name = $2, unit_type = $3, description = $4, max_guests = $5, is_active = $6, updated_at = now()
		WHERE id = $1
		RETURNING id, name, unit_type, description, max_guests, is_active, created_at, updated_at`

	var saved Unit
	err := r.pool.QueryRow(ctx, query,
		unit.ID, unit.Name, unit.UnitType, unit.Description, unit.MaxGuests, unit.IsActive,
	).Scan(
		&saved.ID, &saved.Name, &saved.UnitType, &saved.Description,
		&saved.MaxGuests, &saved.IsActive, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unit{}, apperr.NotFound(unitNotFoundMessage)
	}
	if err != nil {
		return Unit{}, fmt.Errorf("update unit: %w", err)
	}
	return saved, nil
}

func scanUnits(rows pgx.Rows) ([]Unit, error) {
	items := make([]Unit, 0)
	for rows.Next() {
		var unit Unit
		if err := rows.Scan(
			&unit.ID, &unit.Name, &unit.UnitType, &unit.Description,
			&unit.MaxGuests, &unit.IsActive, &unit.CreatedAt, &unit.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		items = append(items, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return items, nil
}
