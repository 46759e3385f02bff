package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/tracksheet/internal/auth"
)

// APIKeyRepository implements auth.KeyRepository for SQLite
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create stores a key by its hash
func (r *APIKeyRepository) Create(ctx context.Context, key *auth.APIKey, keyHash string) error {
	query := `
		INSERT INTO api_keys (id, key_hash, owner_id, description, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?)
	`
	if _, err := r.db.ExecContext(ctx, query, key.ID, keyHash, key.OwnerID, key.Description, key.CreatedAt); err != nil {
		return mapWriteError("failed to create api key", err)
	}
	return nil
}

// ResolveOwner returns the owner of a key hash and records its use
func (r *APIKeyRepository) ResolveOwner(ctx context.Context, keyHash string) (string, error) {
	query := `UPDATE api_keys SET last_used_at = ? WHERE key_hash = ? RETURNING owner_id`

	var owner string
	err := r.db.QueryRowContext(ctx, query, time.Now().UTC(), keyHash).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", auth.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}
	return owner, nil
}

// List returns all keys, oldest first
func (r *APIKeyRepository) List(ctx context.Context) ([]auth.APIKey, error) {
	query := `
		SELECT id, owner_id, COALESCE(description, ''), created_at, last_used_at
		FROM api_keys
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	keys := []auth.APIKey{}
	for rows.Next() {
		var k auth.APIKey
		if err := rows.Scan(&k.ID, &k.OwnerID, &k.Description, &k.CreatedAt, &k.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Revoke deletes a key
func (r *APIKeyRepository) Revoke(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return auth.ErrKeyNotFound
	}
	return nil
}
