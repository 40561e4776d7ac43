// Package repository provides PostgreSQL persistence for guest profiles.
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

// Guest is a person who has booked, or is booking, a stay.
type Guest struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repo implements guest persistence with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new guests repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const guestColumns = `id, first_name, last_name, email, phone, notes, created_at, updated_at`

// Create inserts a new guest.
func (r *Repo) Create(ctx context.Context, guest Guest) (Guest, error) {
	query := `
		INSERT INTO guests (id, first_name, last_name, email, phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + guestColumns

	var saved Guest
	err := r.pool.QueryRow(ctx, query,
		guest.ID, guest.FirstName, guest.LastName, guest.Email, guest.Phone, guest.Notes,
	).Scan(
		&saved.ID, &saved.FirstName, &saved.LastName, &saved.Email,
		&saved.Phone, &saved.Notes, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return Guest{}, fmt.Errorf("create guest: %w", err)
	}
	return saved, nil
}

// GetByID retrieves a guest by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`

	var guest Guest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&guest.ID, &guest.FirstName, &guest.LastName, &guest.Email,
		&guest.Phone, &guest.Notes, &guest.CreatedAt, &guest.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Guest{}, apperr.NotFound("guest not found")
	}
	if err != nil {
		return Guest{}, fmt.Errorf("get guest by id: %w", err)
	}
	return guest, nil
}

// FindByEmailOrPhone looks up an existing guest by email or normalized phone.
// Email match takes precedence. Returns pgx.ErrNoRows wrapped as nil/false
// when nothing matches.
func (r *Repo) FindByEmailOrPhone(ctx context.Context, email, phone *string) (Guest, bool, error) {
	query := `
		SELECT ` + guestColumns + `
		FROM guests
		WHERE ($1::TEXT IS NOT NULL AND lower(email) = lower($1))
		   OR ($2::TEXT IS NOT NULL AND phone = $2)
		ORDER BY (lower(email) = lower($1)) DESC NULLS LAST, created_at
		LIMIT 1`

	var guest Guest
	err := r.pool.QueryRow(ctx, query, email, phone).Scan(
		&guest.ID, &guest.FirstName, &guest.LastName, &guest.Email,
		&guest.Phone, &guest.Notes, &guest.CreatedAt, &guest.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Guest{}, false, nil
	}
	if err != nil {
		return Guest{}, false, fmt.Errorf("find guest by email or phone: %w", err)
	}
	return guest, true, nil
}

// List retrieves guests ordered by most recently created.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()

	items := make([]Guest, 0)
	for rows.Next() {
		var guest Guest
		if err := rows.Scan(
			&guest.ID, &guest.FirstName, &guest.LastName, &guest.Email,
			&guest.Phone, &guest.Notes, &guest.CreatedAt, &guest.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan guest: %w", err)
		}
		items = append(items, guest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guests: %w", err)
	}
	return items, nil
}

// ListWithEmail retrieves every guest that has an email address on file.
func (r *Repo) ListWithEmail(ctx context.Context) ([]Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE email IS NOT NULL ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list guests with email: %w", err)
	}
	defer rows.Close()

	items := make([]Guest, 0)
	for rows.Next() {
		var guest Guest
		if err := rows.Scan(
			&guest.ID, &guest.FirstName, &guest.LastName, &guest.Email,
			&guest.Phone, &guest.Notes, &guest.CreatedAt, &guest.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan guest: %w", err)
		}
		items = append(items, guest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guests: %w", err)
	}
	return items, nil
}

// Update updates a guest's mutable fields.
func (r *Repo) Update(ctx context.Context, guest Guest) (Guest, error) {
	query := `
		UPDATE guests
		SET first_name = $2, last_name = $3, email = $4, phone = $5, notes = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + guestColumns

	var saved Guest
	err := r.pool.QueryRow(ctx, query,
		guest.ID, guest.FirstName, guest.LastName, guest.Email, guest.Phone, guest.Notes,
	).Scan(
		&saved.ID, &saved.FirstName, &saved.LastName, &saved.Email,
		&saved.Phone, &saved.Notes, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Guest{}, apperr.NotFound("guest not found")
	}
	if err != nil {
		return Guest{}, fmt.Errorf("update guest: %w", err)
	}
	return saved, nil
}
