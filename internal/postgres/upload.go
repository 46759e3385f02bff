package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rpggio/tracksheet/internal/domain/upload"
	"github.com/rpggio/tracksheet/internal/repository"
)

// UploadRepository records who uploaded each stored file.
type UploadRepository struct {
	db *DB
}

// Create records an uploaded file.
func (r *UploadRepository) Create(ctx context.Context, f *upload.File) error {
	query := `
		INSERT INTO uploads (url, owner_id, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.pool.Exec(ctx, query, f.URL, f.OwnerID, f.ContentType, f.Size, f.CreatedAt); err != nil {
		return mapWriteError("inserting upload", err)
	}
	return nil
}

// Owner returns the owner of an uploaded file.
func (r *UploadRepository) Owner(ctx context.Context, url string) (string, error) {
	var owner string
	err := r.db.pool.QueryRow(ctx, `SELECT owner_id FROM uploads WHERE url = $1`, url).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying upload owner: %w", err)
	}
	return owner, nil
}

// Delete forgets an uploaded file.
func (r *UploadRepository) Delete(ctx context.Context, url string) error {
	if _, err := r.db.pool.Exec(ctx, `DELETE FROM uploads WHERE url = $1`, url); err != nil {
		return fmt.Errorf("deleting upload: %w", err)
	}
	return nil
}

func deleteUploads(ctx context.Context, tx pgx.Tx, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, `DELETE FROM uploads WHERE url = ANY($1)`, urls); err != nil {
		return fmt.Errorf("deleting uploads: %w", err)
	}
	return nil
}
