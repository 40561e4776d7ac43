// Package reviews provides guest review capture and moderation. Reviews
// appear on the public site only after staff approval.
package reviews

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

// Review is a guest review of a stay.
type Review struct {
	ID         uuid.UUID
	GuestName  string
	Email      *string
	Rating     int
	Title      *string
	Body       *string
	BookingID  *uuid.UUID
	IsApproved bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository implements review persistence with PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new reviews repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a review pending approval.
func (r *Repository) Create(ctx context.Context, review Review) (Review, error) {
	query := `
		INSERT INTO reviews (id, guest_name, email, rating, title, body, booking_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, guest_name, email, rating, title, body, booking_id, is_approved, created_at, updated_at`

	var saved Review
	err := r.pool.QueryRow(ctx, query,
		review.ID, review.GuestName, review.Email, review.Rating, review.Title, review.Body, review.BookingID,
	).Scan(&saved.ID, &saved.GuestName, &saved.Email, &saved.Rating, &saved.Title, &saved.Body, &saved.BookingID, &saved.IsApproved, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return Review{}, fmt.Errorf("create review: %w", err)
	}
	return saved, nil
}

// GetByID retrieves a review.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Review, error) {
	query := `
		SELECT id, guest_name, email, rating, title, body, booking_id, is_approved, created_at, updated_at
		FROM reviews WHERE id = $1`

	var review Review
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&review.ID, &review.GuestName, &review.Email, &review.Rating, &review.Title, &review.Body,
		&review.BookingID, &review.IsApproved, &review.CreatedAt, &review.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, apperr.NotFound("review not found")
	}
	if err != nil {
		return Review{}, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// List retrieves reviews, optionally only approved ones, newest first.
func (r *Repository) List(ctx context.Context, approvedOnly bool, limit int) ([]Review, error) {
	query := `
		SELECT id, guest_name, email, rating, title, body, booking_id, is_approved, created_at, updated_at
		FROM reviews`
	if approvedOnly {
		query += ` WHERE is_approved`
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	items := make([]Review, 0)
	for rows.Next() {
		var review Review
		if err := rows.Scan(&review.ID, &review.GuestName, &review.Email, &review.Rating, &review.Title, &review.Body,
			&review.BookingID, &review.IsApproved, &review.CreatedAt, &review.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		items = append(items, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return items, nil
}

// SetApproved flips the approval flag.
func (r *Repository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reviews SET is_approved = $2, updated_at = now() WHERE id = $1`,
		id, approved,
	)
	if err != nil {
		return fmt.Errorf("set review approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("review not found")
	}
	return nil
}

// Delete removes a review.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("review not found")
	}
	return nil
}

// AverageRating returns the approved review count and mean rating.
func (r *Repository) AverageRating(ctx context.Context) (count int, average float64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews WHERE is_approved`,
	).Scan(&count, &average)
	if err != nil {
		return 0, 0, fmt.Errorf("average rating: %w", err)
	}
	return count, average, nil
}
