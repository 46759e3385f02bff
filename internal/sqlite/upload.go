package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/tracksheet/internal/domain/upload"
	"github.com/rpggio/tracksheet/internal/repository"
)

// UploadRepository records who uploaded each stored file
type UploadRepository struct {
	db *DB
}

// NewUploadRepository creates a new UploadRepository
func NewUploadRepository(db *DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create records an uploaded file
func (r *UploadRepository) Create(ctx context.Context, f *upload.File) error {
	query := `
		INSERT INTO uploads (url, owner_id, content_type, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, f.URL, f.OwnerID, f.ContentType, f.Size, f.CreatedAt); err != nil {
		return mapWriteError("failed to record upload", err)
	}
	return nil
}

// Owner returns the owner of an uploaded file
func (r *UploadRepository) Owner(ctx context.Context, url string) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM uploads WHERE url = ?`, url).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get upload owner: %w", err)
	}
	return owner, nil
}

// Delete forgets an uploaded file
func (r *UploadRepository) Delete(ctx context.Context, url string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE url = ?`, url); err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// deleteUploads forgets the files of takes removed in tx
func deleteUploads(ctx context.Context, tx *sql.Tx, urls []string) error {
	for _, url := range urls {
		if _, err := tx.ExecContext(ctx, `DELETE FROM uploads WHERE url = ?`, url); err != nil {
			return fmt.Errorf("failed to delete upload: %w", err)
		}
	}
	return nil
}
