// Package campaigns implements simple email marketing campaigns: CRUD for
// draft campaigns plus a one-shot send to every guest with an email on file.
package campaigns

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

// Campaign statuses.
const (
	StatusDraft   = "draft"
	StatusSending = "sending"
	StatusSent    = "sent"
)

// Campaign is an email blast to the guest list.
type Campaign struct {
	ID          uuid.UUID
	Name        string
	Subject     string
	Body        string
	Status      string
	ScheduledAt *time.Time
	SentCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository implements campaign persistence with PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a campaigns repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const campaignColumns = `id, name, subject, body, status, scheduled_at, sent_count, created_at, updated_at`

// Create inserts a new draft campaign.
func (r *Repository) Create(ctx context.Context, campaign Campaign) (Campaign, error) {
	query := `
		INSERT INTO campaigns (id, name, subject, body, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + campaignColumns

	row := r.pool.QueryRow(ctx, query,
		campaign.ID, campaign.Name, campaign.Subject, campaign.Body,
		StatusDraft, campaign.ScheduledAt,
	)
	return scanCampaign(row)
}

// GetByID fetches a campaign by its identifier.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, err := scanCampaign(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, apperr.NotFound("campaign not found")
	}
	return campaign, err
}

// List retrieves campaigns ordered by most recently created.
func (r *Repository) List(ctx context.Context, limit int) ([]Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	items := make([]Campaign, 0)
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, campaign)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return items, nil
}

// Update replaces the editable fields of a draft campaign.
// Campaigns that have started sending are immutable.
func (r *Repository) Update(ctx context.Context, campaign Campaign) (Campaign, error) {
	query := `
		UPDATE campaigns
		SET name = $2, subject = $3, body = $4, scheduled_at = $5, updated_at = now()
		WHERE id = $1 AND status = $6
		RETURNING ` + campaignColumns

	row := r.pool.QueryRow(ctx, query,
		campaign.ID, campaign.Name, campaign.Subject, campaign.Body,
		campaign.ScheduledAt, StatusDraft,
	)
	updated, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, apperr.Conflict("campaign is not editable")
	}
	return updated, err
}

// Delete removes a draft campaign.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1 AND status = $2`, id, StatusDraft)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("draft campaign not found")
	}
	return nil
}

// MarkSending transitions a draft campaign into the sending state. The status
// guard in the WHERE clause makes the transition race-safe: a second caller
// sees zero rows affected and gets a conflict.
func (r *Repository) MarkSending(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE campaigns SET status = $2, updated_at = now() WHERE id = $1 AND status = $3`
	tag, err := r.pool.Exec(ctx, query, id, StatusSending, StatusDraft)
	if err != nil {
		return fmt.Errorf("mark campaign sending: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("campaign has already been sent")
	}
	return nil
}

// FinishSend records the delivery count and marks the campaign sent.
func (r *Repository) FinishSend(ctx context.Context, id uuid.UUID, sentCount int) error {
	query := `UPDATE campaigns SET status = $2, sent_count = $3, updated_at = now() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id, StatusSent, sentCount); err != nil {
		return fmt.Errorf("finish campaign send: %w", err)
	}
	return nil
}

func scanCampaign(row pgx.Row) (Campaign, error) {
	var campaign Campaign
	err := row.Scan(
		&campaign.ID, &campaign.Name, &campaign.Subject, &campaign.Body,
		&campaign.Status, &campaign.ScheduledAt, &campaign.SentCount,
		&campaign.CreatedAt, &campaign.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, err
		}
		return Campaign{}, fmt.Errorf("scan campaign: %w", err)
	}
	return campaign, nil
}
