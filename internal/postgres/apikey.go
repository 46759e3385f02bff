package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rpggio/tracksheet/internal/auth"
)

// APIKeyRepository implements auth.KeyRepository for PostgreSQL.
type APIKeyRepository struct {
	db *DB
}

// Create stores a key by its hash.
func (r *APIKeyRepository) Create(ctx context.Context, key *auth.APIKey, keyHash string) error {
	query := `
		INSERT INTO api_keys (id, key_hash, owner_id, description, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	`
	if _, err := r.db.pool.Exec(ctx, query, key.ID, keyHash, key.OwnerID, key.Description, key.CreatedAt); err != nil {
		return mapWriteError("inserting api key", err)
	}
	return nil
}

// ResolveOwner returns the owner of a key hash and records its use.
func (r *APIKeyRepository) ResolveOwner(ctx context.Context, keyHash string) (string, error) {
	query := `UPDATE api_keys SET last_used_at = $1 WHERE key_hash = $2 RETURNING owner_id`

	var owner string
	err := r.db.pool.QueryRow(ctx, query, time.Now().UTC(), keyHash).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", auth.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving api key: %w", err)
	}
	return owner, nil
}

// List returns all keys, oldest first.
func (r *APIKeyRepository) List(ctx context.Context) ([]auth.APIKey, error) {
	query := `
		SELECT id, owner_id, COALESCE(description, ''), created_at, last_used_at
		FROM api_keys
		ORDER BY created_at ASC
	`
	rows, err := r.db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying api keys: %w", err)
	}
	defer rows.Close()

	keys := []auth.APIKey{}
	for rows.Next() {
		var k auth.APIKey
		if err := rows.Scan(&k.ID, &k.OwnerID, &k.Description, &k.CreatedAt, &k.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scanning api key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Revoke deletes a key.
func (r *APIKeyRepository) Revoke(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrKeyNotFound
	}
	return nil
}
