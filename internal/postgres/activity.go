package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/tracksheet/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for PostgreSQL.
type ActivityRepository struct {
	db *DB
}

// Log inserts an activity entry, deriving a missing project from the session.
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
			$1, COALESCE(NULLIF($2, ''), (SELECT project_id FROM sessions WHERE id = $3)), $3, $4,
			$5, $6, NULLIF($7, ''), $8
		)
		RETURNING id
	`
	err := r.db.pool.QueryRow(ctx, query,
		ownerID,
		entry.ProjectID,
		entry.SessionID,
		entry.TakeID,
		string(entry.Type),
		entry.Summary,
		entry.Details,
		createdAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	entry.OwnerID = ownerID
	entry.CreatedAt = createdAt
	return nil
}

// List returns the owner's activity entries, newest first.
func (r *ActivityRepository) List(ctx context.Context, ownerID string, opts activity.ListOptions) ([]activity.Entry, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT id, owner_id, COALESCE(project_id, ''), session_id, take_id,
		       activity_type, summary, COALESCE(details, ''), created_at
		FROM activity_log
		WHERE owner_id = $1`)
	args := []any{ownerID}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if opts.ProjectID != "" {
		b.WriteString(" AND project_id = " + next(opts.ProjectID))
	}
	if opts.Type != nil {
		b.WriteString(" AND activity_type = " + next(string(*opts.Type)))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = activity.DefaultLimit
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")
	b.WriteString(" LIMIT " + next(limit) + " OFFSET " + next(max(opts.Offset, 0)))

	rows, err := r.db.pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
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
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
