package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/repository"
)

// SessionRepository implements session.Repository for PostgreSQL.
type SessionRepository struct {
	db *DB
}

// Create inserts a session under a project the owner controls.
func (r *SessionRepository) Create(ctx context.Context, ownerID string, sess *session.Session) error {
	query := `
		INSERT INTO sessions (id, project_id, date, duration, engineer_notes, gear_used, created_at)
		SELECT $1, p.id, $3, $4, $5, $6, $7
		FROM projects p
		WHERE p.id = $2 AND p.owner_id = $8
	`
	tag, err := r.db.pool.Exec(ctx, query,
		sess.ID,
		sess.ProjectID,
		sess.Date,
		sess.Duration,
		sess.EngineerNotes,
		sess.GearUsed,
		sess.CreatedAt,
		ownerID,
	)
	if err != nil {
		return mapWriteError("inserting session", err)
	}
	return requireRow(tag)
}

// Get retrieves a session with its takes.
func (r *SessionRepository) Get(ctx context.Context, ownerID, id string) (*session.Session, error) {
	sessions, err := loadSessions(ctx, r.db.pool, ownerID, scope{sessionID: id})
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

// Delete removes a session and its takes.
func (r *SessionRepository) Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			SELECT 1 FROM sessions s
			JOIN projects p ON p.id = s.project_id
			WHERE s.id = $1 AND p.owner_id = $2
			FOR UPDATE OF s
		`
		var exists int
		err := tx.QueryRow(ctx, query, id, ownerID).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("locking session: %w", err)
		}

		urls, err := collectFileURLs(ctx, tx,
			`SELECT file_url FROM takes WHERE session_id = $1 AND file_url IS NOT NULL`, id)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM takes WHERE session_id = $1`, id); err != nil {
			return fmt.Errorf("deleting takes: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
			return fmt.Errorf("deleting session: %w", err)
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
