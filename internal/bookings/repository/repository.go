// Package repository provides PostgreSQL persistence for bookings. Booking
// creation runs the overlap check and insert in a single serializable
// transaction; the bookings_no_overlap exclusion constraint is the database
// backstop for anything a concurrent transaction slips past.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resort_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgExclusionViolation     = "23P01"
	pgUniqueViolation        = "23505"
	pgSerializationFailure   = "40001"
	bookingNotFoundMessage   = "booking not found"
	datesUnavailableMessage  = "unit is not available for the requested dates"
	duplicateReferenceErrTag = "bookings_booking_reference_key"
)

// Booking statuses.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

// ErrDuplicateReference signals a booking reference collision; the caller
// regenerates and retries.
var ErrDuplicateReference = errors.New("duplicate booking reference")

// ErrSerialization signals a serializable transaction conflict; the caller
// retries the whole create.
var ErrSerialization = errors.New("transaction serialization conflict")

// Booking is a reserved stay for a guest in a unit.
type Booking struct {
	ID               uuid.UUID
	BookingReference string
	UnitID           uuid.UUID
	GuestID          uuid.UUID
	LeadID           *uuid.UUID
	CheckIn          time.Time
	CheckOut         time.Time
	NumberOfGuests   int
	Status           string
	TotalCents       int64
	DepositCents     int64
	BalanceCents     int64
	PaymentStatus    string
	SpecialRequests  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ListFilters narrows the booking list query.
type ListFilters struct {
	Status *string
	UnitID *uuid.UUID
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Repo implements booking persistence with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new bookings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const bookingColumns = `id, booking_reference, unit_id, guest_id, lead_id, check_in, check_out,
	number_of_guests, status, total_cents, deposit_cents, balance_cents, payment_status,
	special_requests, created_at, updated_at`

// CreateChecked inserts a booking after re-verifying, inside one serializable
// transaction, that no live booking and no availability block overlaps the
// stay. Overlap uses the half-open [check_in, check_out) convention so
// back-to-back stays share a changeover day.
func (r *Repo) CreateChecked(ctx context.Context, booking Booking) (Booking, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Booking{}, fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var conflicts int
	err = tx.QueryRow(ctx, `
		SELECT count(*) FROM bookings
		WHERE unit_id = $1
		  AND status <> 'cancelled'
		  AND check_in < $3
		  AND check_out > $2`,
		booking.UnitID, booking.CheckIn, booking.CheckOut,
	).Scan(&conflicts)
	if err != nil {
		return Booking{}, fmt.Errorf("check booking overlap: %w", err)
	}
	if conflicts > 0 {
		return Booking{}, apperr.Conflict(datesUnavailableMessage)
	}

	var blocked int
	err = tx.QueryRow(ctx, `
		SELECT count(*) FROM unit_availability_blocks
		WHERE unit_id = $1 AND block_date >= $2 AND block_date < $3`,
		booking.UnitID, booking.CheckIn, booking.CheckOut,
	).Scan(&blocked)
	if err != nil {
		return Booking{}, fmt.Errorf("check availability blocks: %w", err)
	}
	if blocked > 0 {
		return Booking{}, apperr.Conflict(datesUnavailableMessage)
	}

	query := `
		INSERT INTO bookings (id, booking_reference, unit_id, guest_id, lead_id, check_in, check_out,
			number_of_guests, status, total_cents, deposit_cents, balance_cents, payment_status, special_requests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + bookingColumns

	var saved Booking
	err = tx.QueryRow(ctx, query,
		booking.ID, booking.BookingReference, booking.UnitID, booking.GuestID, booking.LeadID,
		booking.CheckIn, booking.CheckOut, booking.NumberOfGuests, booking.Status,
		booking.TotalCents, booking.DepositCents, booking.BalanceCents, booking.PaymentStatus, booking.SpecialRequests,
	).Scan(scanTargets(&saved)...)
	if err != nil {
		return Booking{}, mapInsertError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Booking{}, mapInsertError(err)
	}
	return saved, nil
}

func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return apperr.Conflict(datesUnavailableMessage)
		case pgUniqueViolation:
			if pgErr.ConstraintName == duplicateReferenceErrTag {
				return ErrDuplicateReference
			}
			return apperr.Conflict("booking already exists")
		case pgSerializationFailure:
			return ErrSerialization
		}
	}
	return fmt.Errorf("insert booking: %w", err)
}

// GetByID retrieves a booking by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking Booking
	err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&booking)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, apperr.NotFound(bookingNotFoundMessage)
	}
	if err != nil {
		return Booking{}, fmt.Errorf("get booking by id: %w", err)
	}
	return booking, nil
}

// GetByReference retrieves a booking by its human-facing reference.
func (r *Repo) GetByReference(ctx context.Context, reference string) (Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_reference = $1`

	var booking Booking
	err := r.pool.QueryRow(ctx, query, reference).Scan(scanTargets(&booking)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, apperr.NotFound(bookingNotFoundMessage)
	}
	if err != nil {
		return Booking{}, fmt.Errorf("get booking by reference: %w", err)
	}
	return booking, nil
}

// List retrieves bookings matching the filters, newest first.
func (r *Repo) List(ctx context.Context, filters ListFilters) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *filters.Status)
		idx++
	}
	if filters.UnitID != nil {
		query += fmt.Sprintf(" AND unit_id = $%d", idx)
		args = append(args, *filters.UnitID)
		idx++
	}
	if filters.From != nil {
		query += fmt.Sprintf(" AND check_out > $%d", idx)
		args = append(args, *filters.From)
		idx++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND check_in < $%d", idx)
		args = append(args, *filters.To)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	items := make([]Booking, 0)
	for rows.Next() {
		var booking Booking
		if err := rows.Scan(scanTargets(&booking)...); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		items = append(items, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return items, nil
}

// UpdateStatus transitions a booking to a new status.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Booking, error) {
	query := `
		UPDATE bookings SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + bookingColumns

	var saved Booking
	err := r.pool.QueryRow(ctx, query, id, status).Scan(scanTargets(&saved)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, apperr.NotFound(bookingNotFoundMessage)
	}
	if err != nil {
		return Booking{}, fmt.Errorf("update booking status: %w", err)
	}
	return saved, nil
}

// UpdateDeposit records a deposit amount and keeps the balance consistent.
func (r *Repo) UpdateDeposit(ctx context.Context, id uuid.UUID, depositCents int64) (Booking, error) {
	query := `
		UPDATE bookings
		SET deposit_cents = $2, balance_cents = total_cents - $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + bookingColumns

	var saved Booking
	err := r.pool.QueryRow(ctx, query, id, depositCents).Scan(scanTargets(&saved)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, apperr.NotFound(bookingNotFoundMessage)
	}
	if err != nil {
		return Booking{}, fmt.Errorf("update booking deposit: %w", err)
	}
	return saved, nil
}

// OccupiedUnitIDs returns the unit IDs with a live booking overlapping
// [from, to). Cancelled bookings never occupy a unit.
func (r *Repo) OccupiedUnitIDs(ctx context.Context, from, to time.Time) (map[uuid.UUID]struct{}, error) {
	query := `
		SELECT DISTINCT unit_id FROM bookings
		WHERE status <> 'cancelled' AND check_in < $2 AND check_out > $1`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("occupied unit ids: %w", err)
	}
	defer rows.Close()

	occupied := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan occupied unit id: %w", err)
		}
		occupied[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occupied unit ids: %w", err)
	}
	return occupied, nil
}

// HasOverlap reports whether the unit has a live booking overlapping [from, to).
func (r *Repo) HasOverlap(ctx context.Context, unitID uuid.UUID, from, to time.Time) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM bookings
		WHERE unit_id = $1 AND status <> 'cancelled' AND check_in < $3 AND check_out > $2`,
		unitID, from, to,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return count > 0, nil
}

func scanTargets(b *Booking) []interface{} {
	return []interface{}{
		&b.ID, &b.BookingReference, &b.UnitID, &b.GuestID, &b.LeadID, &b.CheckIn, &b.CheckOut,
		&b.NumberOfGuests, &b.Status, &b.TotalCents, &b.DepositCents, &b.BalanceCents,
		&b.PaymentStatus, &b.SpecialRequests, &b.CreatedAt, &b.UpdatedAt,
	}
}
