// Package repository provides PostgreSQL persistence for leads and their
// communication history.
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

// Lead statuses.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

// Lead sources.
const (
	SourceMetaAds = "meta_ads"
	SourcePhone   = "phone"
	SourceWebsite = "website"
	SourceEmail   = "email"
	SourceManual  = "manual"
	SourceOther   = "other"
)

// Lead is a prospective guest enquiry moving through the sales pipeline.
type Lead struct {
	ID                   uuid.UUID
	Name                 string
	Email                *string
	Phone                *string
	Source               string
	Status               string
	Priority             string
	QualityScore         int
	Message              *string
	Notes                *string
	AssignedTo           *uuid.UUID
	ContactedAt          *time.Time
	ConvertedToBookingID *uuid.UUID
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Communication is a single inbound or outbound message on a lead.
type Communication struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Direction string
	Channel   string
	Body      *string
	IsRead    bool
	CreatedAt time.Time
}

// ListFilters narrows the lead list query.
type ListFilters struct {
	Status     *string
	Source     *string
	Priority   *string
	AssignedTo *uuid.UUID
	Limit      int
	Offset     int
}

// Repo implements lead persistence with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const leadColumns = `id, name, email, phone, source, status, priority, quality_score,
	message, notes, assigned_to, contacted_at, converted_to_booking_id, created_at, updated_at`

// Create inserts a new lead.
func (r *Repo) Create(ctx context.Context, lead Lead) (Lead, error) {
	query := `
		INSERT INTO leads (id, name, email, phone, source, status, priority, quality_score, message, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + leadColumns

	var saved Lead
	err := r.pool.QueryRow(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.Source, lead.Status,
		lead.Priority, lead.QualityScore, lead.Message, lead.Notes,
	).Scan(scanTargets(&saved)...)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return saved, nil
}

// GetByID retrieves a lead by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	var lead Lead
	err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&lead)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// GetByIDForUpdate locks and retrieves a lead inside a transaction.
func (r *Repo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 FOR UPDATE`

	var lead Lead
	err := tx.QueryRow(ctx, query, id).Scan(scanTargets(&lead)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead for update: %w", err)
	}
	return lead, nil
}

// List retrieves leads matching the filters, newest first.
func (r *Repo) List(ctx context.Context, filters ListFilters) ([]Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *filters.Status)
		idx++
	}
	if filters.Source != nil {
		query += fmt.Sprintf(" AND source = $%d", idx)
		args = append(args, *filters.Source)
		idx++
	}
	if filters.Priority != nil {
		query += fmt.Sprintf(" AND priority = $%d", idx)
		args = append(args, *filters.Priority)
		idx++
	}
	if filters.AssignedTo != nil {
		query += fmt.Sprintf(" AND assigned_to = $%d", idx)
		args = append(args, *filters.AssignedTo)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(scanTargets(&lead)...); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return items, nil
}

// Update persists the lead's mutable fields, including score and status.
func (r *Repo) Update(ctx context.Context, lead Lead) (Lead, error) {
	query := `
		UPDATE leads
		SET name = $2, email = $3, phone = $4, source = $5, status = $6, priority = $7,
			quality_score = $8, message = $9, notes = $10, assigned_to = $11,
			contacted_at = $12, converted_to_booking_id = $13, updated_at = now()
		WHERE id = $1
		RETURNING ` + leadColumns

	var saved Lead
	err := r.pool.QueryRow(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.Source, lead.Status, lead.Priority,
		lead.QualityScore, lead.Message, lead.Notes, lead.AssignedTo,
		lead.ContactedAt, lead.ConvertedToBookingID,
	).Scan(scanTargets(&saved)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return saved, nil
}

// MarkConverted records the one-way converted transition. It only succeeds
// when the lead has not been converted yet.
func (r *Repo) MarkConverted(ctx context.Context, id, bookingID uuid.UUID) (Lead, error) {
	query := `
		UPDATE leads
		SET status = 'converted', converted_to_booking_id = $2, updated_at = now()
		WHERE id = $1 AND status <> 'converted'
		RETURNING ` + leadColumns

	var saved Lead
	err := r.pool.QueryRow(ctx, query, id, bookingID).Scan(scanTargets(&saved)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, apperr.Conflict("lead has already been converted")
	}
	if err != nil {
		return Lead{}, fmt.Errorf("mark lead converted: %w", err)
	}
	return saved, nil
}

// CountConvertedByEmail returns converted leads carrying the email, excluding
// the given lead so a lead never counts its own conversion as history.
func (r *Repo) CountConvertedByEmail(ctx context.Context, email string, excludeLeadID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM leads
		WHERE lower(email) = lower($1) AND status = 'converted' AND id <> $2`,
		email, excludeLeadID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count converted leads by email: %w", err)
	}
	return count, nil
}

// SourceConversionStats returns total and converted lead counts for a source.
func (r *Repo) SourceConversionStats(ctx context.Context, source string) (total, converted int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE status = 'converted')
		FROM leads WHERE source = $1`,
		source,
	).Scan(&total, &converted)
	if err != nil {
		return 0, 0, fmt.Errorf("source conversion stats: %w", err)
	}
	return total, converted, nil
}

// AddCommunication appends a message to the lead's history.
func (r *Repo) AddCommunication(ctx context.Context, comm Communication) (Communication, error) {
	query := `
		INSERT INTO lead_communications (id, lead_id, direction, channel, body, is_read)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, direction, channel, body, is_read, created_at`

	var saved Communication
	err := r.pool.QueryRow(ctx, query,
		comm.ID, comm.LeadID, comm.Direction, comm.Channel, comm.Body, comm.IsRead,
	).Scan(&saved.ID, &saved.LeadID, &saved.Direction, &saved.Channel, &saved.Body, &saved.IsRead, &saved.CreatedAt)
	if err != nil {
		return Communication{}, fmt.Errorf("add lead communication: %w", err)
	}
	return saved, nil
}

// ListCommunications retrieves a lead's messages, oldest first.
func (r *Repo) ListCommunications(ctx context.Context, leadID uuid.UUID) ([]Communication, error) {
	query := `
		SELECT id, lead_id, direction, channel, body, is_read, created_at
		FROM lead_communications WHERE lead_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("list lead communications: %w", err)
	}
	defer rows.Close()

	items := make([]Communication, 0)
	for rows.Next() {
		var comm Communication
		if err := rows.Scan(&comm.ID, &comm.LeadID, &comm.Direction, &comm.Channel, &comm.Body, &comm.IsRead, &comm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead communication: %w", err)
		}
		items = append(items, comm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead communications: %w", err)
	}
	return items, nil
}

// MarkCommunicationRead flags a message as read.
func (r *Repo) MarkCommunicationRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE lead_communications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark communication read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("communication not found")
	}
	return nil
}

func scanTargets(l *Lead) []interface{} {
	return []interface{}{
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Source, &l.Status, &l.Priority, &l.QualityScore,
		&l.Message, &l.Notes, &l.AssignedTo, &l.ContactedAt, &l.ConvertedToBookingID,
		&l.CreatedAt, &l.UpdatedAt,
	}
}
