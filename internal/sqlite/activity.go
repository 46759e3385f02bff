package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/tracksheet/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry. A missing project is filled in from the
// entry's session.
func (r *ActivityRepository) Log(ctx context.Context, ownerID string, entry *activity.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activity_log (
			owner_id, project_id, session_id, take_id,
			activity_type, summary, details, created_at
		) VALUES (
			?, COALESCE(NULLIF(?, ''), (SELECT project_id FROM sessions WHERE id = ?)), ?, ?,
			?, ?, NULLIF(?, ''), ?
		)
	`
	result, err := r.db.ExecContext(ctx, query,
		ownerID,
		entry.ProjectID,
		entry.SessionID,
		entry.SessionID,
		entry.TakeID,
		entry.Type,
		entry.Summary,
		entry.Details,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get activity id: %w", err)
	}
	entry.ID = id
	entry.OwnerID = ownerID
	entry.CreatedAt = createdAt
	return nil
}

// List returns the owner's activity entries, newest first
func (r *ActivityRepository) List(ctx context.Context, ownerID string, opts activity.ListOptions) ([]activity.Entry, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT id, owner_id, COALESCE(project_id, ''), session_id, take_id,
		       activity_type, summary, COALESCE(details, ''), created_at
		FROM activity_log
		WHERE owner_id = ?`)
	args := []any{ownerID}

	if opts.ProjectID != "" {
		b.WriteString(" AND project_id = ?")
		args = append(args, opts.ProjectID)
	}
	if opts.Type != nil {
		b.WriteString(" AND activity_type = ?")
		args = append(args, *opts.Type)
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	limit := opts.Limit
	if limit <= 0 {
		limit = activity.DefaultLimit
	}
	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, max(opts.Offset, 0))

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	entries := []activity.Entry{}
	for rows.Next() {
		var e activity.Entry
		if err := rows.Scan(
			&e.ID,
			&e.OwnerID,
			&e.ProjectID,
			&e.SessionID,
			&e.TakeID,
			&e.Type,
			&e.Summary,
			&e.Details,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
