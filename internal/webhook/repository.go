// Package webhook provides API-key authenticated lead intake for ad
// platforms and external site forms.
package webhook

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"resort_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAPIKeyNotFound = errors.New("webhook API key not found")

// APIKey is a webhook API key record. Only the hash is stored; the
// plaintext key is shown once at creation.
type APIKey struct {
	ID         uuid.UUID
	Name       string
	KeyHash    string
	IsActive   bool
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// Repository provides data access for webhook API keys.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new webhook repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GenerateAPIKey creates a new random API key and returns the plaintext key
// and its hash.
func GenerateAPIKey() (plaintext string, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}
	plaintext = "whk_" + hex.EncodeToString(bytes)
	return plaintext, HashKey(plaintext), nil
}

// HashKey hashes a plaintext API key for lookup.
func HashKey(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

// Create stores a new API key record.
func (r *Repository) Create(ctx context.Context, name, keyHash string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `
		INSERT INTO webhook_api_keys (id, name, key_hash)
		VALUES ($1, $2, $3)
		RETURNING id, name, key_hash, is_active, last_used_at, created_at
	`, uuid.New(), name, keyHash).Scan(
		&key.ID, &key.Name, &key.KeyHash, &key.IsActive, &key.LastUsedAt, &key.CreatedAt,
	)
	if err != nil {
		return APIKey{}, fmt.Errorf("create webhook key: %w", err)
	}
	return key, nil
}

// GetByHash retrieves an active API key by its hash.
func (r *Repository) GetByHash(ctx context.Context, keyHash string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, key_hash, is_active, last_used_at, created_at
		FROM webhook_api_keys
		WHERE key_hash = $1 AND is_active
	`, keyHash).Scan(
		&key.ID, &key.Name, &key.KeyHash, &key.IsActive, &key.LastUsedAt, &key.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return APIKey{}, ErrAPIKeyNotFound
	}
	if err != nil {
		return APIKey{}, fmt.Errorf("get webhook key: %w", err)
	}
	return key, nil
}

// TouchLastUsed stamps the key's last use. Best effort; callers ignore the
// error.
func (r *Repository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE webhook_api_keys SET last_used_at = now() WHERE id = $1`, id)
	return err
}

// List retrieves all keys, newest first.
func (r *Repository) List(ctx context.Context) ([]APIKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, key_hash, is_active, last_used_at, created_at
		FROM webhook_api_keys
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list webhook keys: %w", err)
	}
	defer rows.Close()

	keys := make([]APIKey, 0)
	for rows.Next() {
		var key APIKey
		if err := rows.Scan(&key.ID, &key.Name, &key.KeyHash, &key.IsActive, &key.LastUsedAt, &key.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook keys: %w", err)
	}
	return keys, nil
}

// Deactivate disables a key.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE webhook_api_keys SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate webhook key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("webhook key not found")
	}
	return nil
}
