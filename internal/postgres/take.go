package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/repository"
)

// ownedTake restricts t to takes whose project belongs to the owner ($1 id, $2 owner).
const ownedTake = `
	t.id = $1 AND EXISTS (
		SELECT 1 FROM sessions s
		JOIN projects p ON p.id = s.project_id
		WHERE s.id = t.session_id AND p.owner_id = $2
	)
`

// TakeRepository implements take.Repository for PostgreSQL.
type TakeRepository struct {
	db *DB
}

// Create inserts a take under a session the owner controls.
func (r *TakeRepository) Create(ctx context.Context, ownerID string, t *take.Take) error {
	query := `
		INSERT INTO takes (id, session_id, name, version_number, notes, status, file_url, created_at)
		SELECT $1, s.id, $3, $4, $5, $6, $7, $8
		FROM sessions s
		JOIN projects p ON p.id = s.project_id
		WHERE s.id = $2 AND p.owner_id = $9
	`
	tag, err := r.db.pool.Exec(ctx, query,
		t.ID,
		t.SessionID,
		t.Name,
		t.VersionNumber,
		t.Notes,
		string(t.Status),
		t.FileURL,
		t.CreatedAt,
		ownerID,
	)
	if err != nil {
		return mapWriteError("inserting take", err)
	}
	return requireRow(tag)
}

// Get retrieves a take by ID.
func (r *TakeRepository) Get(ctx context.Context, ownerID, id string) (*take.Take, error) {
	query := `SELECT ` + takeColumns + ` FROM takes t WHERE ` + ownedTake

	t, err := scanTake(r.db.pool.QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying take: %w", err)
	}
	return &t, nil
}

// Update saves the mutable fields of a take.
func (r *TakeRepository) Update(ctx context.Context, ownerID string, t *take.Take) error {
	query := `
		UPDATE takes AS t
		SET name = $3, version_number = $4, notes = $5, status = $6, file_url = $7
		WHERE ` + ownedTake
	tag, err := r.db.pool.Exec(ctx, query,
		t.ID,
		ownerID,
		t.Name,
		t.VersionNumber,
		t.Notes,
		string(t.Status),
		t.FileURL,
	)
	if err != nil {
		return mapWriteError("updating take", err)
	}
	return requireRow(tag)
}

// Delete removes a take. beforeCommit receives its file URL, if any.
func (r *TakeRepository) Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		var fileURL *string
		err := tx.QueryRow(ctx, `SELECT t.file_url FROM takes t WHERE `+ownedTake+` FOR UPDATE`, id, ownerID).Scan(&fileURL)
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("locking take: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM takes WHERE id = $1`, id); err != nil {
			return fmt.Errorf("deleting take: %w", err)
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
