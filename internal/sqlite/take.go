package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/repository"
)

// ownedTake restricts t to takes whose project belongs to the owner.
const ownedTake = `
	t.id = ? AND EXISTS (
		SELECT 1 FROM sessions s
		JOIN projects p ON p.id = s.project_id
		WHERE s.id = t.session_id AND p.owner_id = ?
	)
`

// TakeRepository implements take.Repository for SQLite
type TakeRepository struct {
	db *DB
}

// NewTakeRepository creates a new TakeRepository
func NewTakeRepository(db *DB) *TakeRepository {
	return &TakeRepository{db: db}
}

// Create inserts a take under a session the owner controls
func (r *TakeRepository) Create(ctx context.Context, ownerID string, t *take.Take) error {
	query := `
		INSERT INTO takes (id, session_id, name, version_number, notes, status, file_url, created_at)
		SELECT ?, s.id, ?, ?, ?, ?, ?, ?
		FROM sessions s
		JOIN projects p ON p.id = s.project_id
		WHERE s.id = ? AND p.owner_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.VersionNumber,
		t.Notes,
		t.Status,
		t.FileURL,
		t.CreatedAt,
		t.SessionID,
		ownerID,
	)
	if err != nil {
		return mapWriteError("failed to create take", err)
	}
	return requireRow(result)
}

// Get retrieves a take by ID
func (r *TakeRepository) Get(ctx context.Context, ownerID, id string) (*take.Take, error) {
	query := `SELECT ` + takeColumns + ` FROM takes t WHERE ` + ownedTake

	t, err := scanTake(r.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get take: %w", err)
	}
	return &t, nil
}

// Update saves the mutable fields of a take
func (r *TakeRepository) Update(ctx context.Context, ownerID string, t *take.Take) error {
	query := `
		UPDATE takes AS t
		SET name = ?, version_number = ?, notes = ?, status = ?, file_url = ?
		WHERE ` + ownedTake
	result, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.VersionNumber,
		t.Notes,
		t.Status,
		t.FileURL,
		t.ID,
		ownerID,
	)
	if err != nil {
		return mapWriteError("failed to update take", err)
	}
	return requireRow(result)
}

// Delete removes a take. beforeCommit receives its file URL, if any.
func (r *TakeRepository) Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		var fileURL *string
		err := tx.QueryRowContext(ctx, `SELECT t.file_url FROM takes t WHERE `+ownedTake, id, ownerID).Scan(&fileURL)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find take: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM takes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete take: %w", err)
		}

		var urls []string
		if fileURL != nil {
			urls = append(urls, *fileURL)
		}
		if err := deleteUploads(ctx, tx, urls); err != nil {
			return err
		}
		if beforeCommit != nil {
			return beforeCommit(ctx, urls)
		}
		return nil
	})
}
