// Package repository persists website pages and media records.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resort_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Block is one content block on a page. The admin SPA defines the block
// vocabulary; the backend stores them opaquely.
type Block struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// Page is a website page built from content blocks.
type Page struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Blocks      []Block
	IsPublished bool
	UpdatedBy   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Media is an uploaded site asset stored in object storage.
type Media struct {
	ID          uuid.UUID
	FileName    string
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	UploadedBy  *uuid.UUID
	CreatedAt   time.Time
}

// Repo implements content persistence with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new content repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// CreatePage inserts a page.
func (r *Repo) CreatePage(ctx context.Context, page Page) (Page, error) {
	blocks, err := encodeBlocks(page.Blocks)
	if err != nil {
		return Page{}, err
	}

	query := `
		INSERT INTO site_pages (id, slug, title, blocks, is_published, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, slug, title, blocks, is_published, updated_by, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, page.ID, page.Slug, page.Title, blocks, page.IsPublished, page.UpdatedBy)
	saved, err := scanPage(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Page{}, apperr.Conflict("a page with this slug already exists")
		}
		return Page{}, fmt.Errorf("create page: %w", err)
	}
	return saved, nil
}

// GetPageByID retrieves a page by ID.
func (r *Repo) GetPageByID(ctx context.Context, id uuid.UUID) (Page, error) {
	query := `
		SELECT id, slug, title, blocks, is_published, updated_by, created_at, updated_at
		FROM site_pages WHERE id = $1`

	page, err := scanPage(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Page{}, apperr.NotFound("page not found")
	}
	if err != nil {
		return Page{}, fmt.Errorf("get page: %w", err)
	}
	return page, nil
}

// GetPublishedBySlug retrieves a published page for the public site.
func (r *Repo) GetPublishedBySlug(ctx context.Context, slug string) (Page, error) {
	query := `
		SELECT id, slug, title, blocks, is_published, updated_by, created_at, updated_at
		FROM site_pages WHERE slug = $1 AND is_published`

	page, err := scanPage(r.pool.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return Page{}, apperr.NotFound("page not found")
	}
	if err != nil {
		return Page{}, fmt.Errorf("get page by slug: %w", err)
	}
	return page, nil
}

// ListPages retrieves pages, optionally only published ones.
func (r *Repo) ListPages(ctx context.Context, publishedOnly bool) ([]Page, error) {
	query := `
		SELECT id, slug, title, blocks, is_published, updated_by, created_at, updated_at
		FROM site_pages`
	if publishedOnly {
		query += ` WHERE is_published`
	}
	query += ` ORDER BY slug`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	pages := make([]Page, 0)
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return pages, nil
}

// UpdatePage saves page fields.
func (r *Repo) UpdatePage(ctx context.Context, page Page) (Page, error) {
	blocks, err := encodeBlocks(page.Blocks)
	if err != nil {
		return Page{}, err
	}

	query := `
		UPDATE site_pages
		SET slug = $2, title = $3, blocks = $4, is_published = $5, updated_by = $6, updated_at = now()
		WHERE id = $1
		RETURNING id, slug, title, blocks, is_published, updated_by, created_at, updated_at`

	saved, err := scanPage(r.pool.QueryRow(ctx, query, page.ID, page.Slug, page.Title, blocks, page.IsPublished, page.UpdatedBy))
	if errors.Is(err, pgx.ErrNoRows) {
		return Page{}, apperr.NotFound("page not found")
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Page{}, apperr.Conflict("a page with this slug already exists")
		}
		return Page{}, fmt.Errorf("update page: %w", err)
	}
	return saved, nil
}

// DeletePage removes a page.
func (r *Repo) DeletePage(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM site_pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("page not found")
	}
	return nil
}

// CreateMedia records an uploaded asset.
func (r *Repo) CreateMedia(ctx context.Context, media Media) (Media, error) {
	query := `
		INSERT INTO site_media (id, file_name, object_key, content_type, size_bytes, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, file_name, object_key, content_type, size_bytes, uploaded_by, created_at`

	var saved Media
	err := r.pool.QueryRow(ctx, query,
		media.ID, media.FileName, media.ObjectKey, media.ContentType, media.SizeBytes, media.UploadedBy,
	).Scan(&saved.ID, &saved.FileName, &saved.ObjectKey, &saved.ContentType, &saved.SizeBytes, &saved.UploadedBy, &saved.CreatedAt)
	if err != nil {
		return Media{}, fmt.Errorf("create media: %w", err)
	}
	return saved, nil
}

// GetMediaByID retrieves one media record.
func (r *Repo) GetMediaByID(ctx context.Context, id uuid.UUID) (Media, error) {
	query := `
		SELECT id, file_name, object_key, content_type, size_bytes, uploaded_by, created_at
		FROM site_media WHERE id = $1`

	var media Media
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&media.ID, &media.FileName, &media.ObjectKey, &media.ContentType, &media.SizeBytes, &media.UploadedBy, &media.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Media{}, apperr.NotFound("media not found")
	}
	if err != nil {
		return Media{}, fmt.Errorf("get media: %w", err)
	}
	return media, nil
}

// ListMedia retrieves media records, newest first.
func (r *Repo) ListMedia(ctx context.Context, limit int) ([]Media, error) {
	query := `
		SELECT id, file_name, object_key, content_type, size_bytes, uploaded_by, created_at
		FROM site_media ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	items := make([]Media, 0)
	for rows.Next() {
		var media Media
		if err := rows.Scan(&media.ID, &media.FileName, &media.ObjectKey, &media.ContentType, &media.SizeBytes, &media.UploadedBy, &media.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, media)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}
	return items, nil
}

// DeleteMedia removes a media record.
func (r *Repo) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM site_media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("media not found")
	}
	return nil
}

func encodeBlocks(blocks []Block) ([]byte, error) {
	if blocks == nil {
		blocks = []Block{}
	}
	encoded, err := json.Marshal(blocks)
	if err != nil {
		return nil, fmt.Errorf("encode blocks: %w", err)
	}
	return encoded, nil
}

func scanPage(row pgx.Row) (Page, error) {
	var page Page
	var blocks []byte
	if err := row.Scan(&page.ID, &page.Slug, &page.Title, &blocks, &page.IsPublished, &page.UpdatedBy, &page.CreatedAt, &page.UpdatedAt); err != nil {
		return Page{}, err
	}
	if err := json.Unmarshal(blocks, &page.Blocks); err != nil {
		return Page{}, fmt.Errorf("decode blocks: %w", err)
	}
	return page, nil
}
