package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/repository"
)

// SessionRepository implements session.Repository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session under a project the owner controls. The ownership
// check and the insert are one statement.
func (r *SessionRepository) Create(ctx context.Context, ownerID string, sess *session.Session) error {
	query := `
		INSERT INTO sessions (id, project_id, date, duration, engineer_notes, gear_used, created_at)
		SELECT ?, p.id, ?, ?, ?, ?, ?
		FROM projects p
		WHERE p.id = ? AND p.owner_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		sess.ID,
		sess.Date,
		sess.Duration,
		sess.EngineerNotes,
		sess.GearUsed,
		sess.CreatedAt,
		sess.ProjectID,
		ownerID,
	)
	if err != nil {
		return mapWriteError("failed to create session", err)
	}
	return requireRow(result)
}

// Get retrieves a session with its takes
func (r *SessionRepository) Get(ctx context.Context, ownerID, id string) (*session.Session, error) {
	sessions, err := loadSessions(ctx, r.db, ownerID, scope{sessionID: id})
	if err != nil {
		return nil, err
	}
	for _, list := range sessions {
		for i := range list {
			if list[i].ID == id {
				return &list[i], nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

// Delete removes a session and its takes. beforeCommit receives the file
// URLs of the removed takes.
func (r *SessionRepository) Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			SELECT 1 FROM sessions s
			JOIN projects p ON p.id = s.project_id
			WHERE s.id = ? AND p.owner_id = ?
		`
		var exists int
		err := tx.QueryRowContext(ctx, query, id, ownerID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find session: %w", err)
		}

		urls, err := collectFileURLs(ctx, tx,
			`SELECT file_url FROM takes WHERE session_id = ? AND file_url IS NOT NULL`, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM takes WHERE session_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete takes: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
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
