package sqlite

import (
	"context"
	"fmt"

	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
)

const takeColumns = `t.id, t.session_id, t.name, t.version_number, t.notes, t.status, t.file_url, t.created_at`

const sessionColumns = `s.id, s.project_id, s.date, s.duration, s.engineer_notes, s.gear_used, s.created_at`

// scope narrows a tree load. Empty fields match everything the owner has.
type scope struct {
	projectID string
	sessionID string
}

func scanTake(row scanner) (take.Take, error) {
	var t take.Take
	err := row.Scan(
		&t.ID,
		&t.SessionID,
		&t.Name,
		&t.VersionNumber,
		&t.Notes,
		&t.Status,
		&t.FileURL,
		&t.CreatedAt,
	)
	return t, err
}

func scanSession(row scanner) (session.Session, error) {
	var s session.Session
	err := row.Scan(
		&s.ID,
		&s.ProjectID,
		&s.Date,
		&s.Duration,
		&s.EngineerNotes,
		&s.GearUsed,
		&s.CreatedAt,
	)
	return s, err
}

// loadTakes returns the owner's takes in scope grouped by session, oldest first.
func loadTakes(ctx context.Context, q queryer, ownerID string, sc scope) (map[string][]take.Take, error) {
	query := `
		SELECT ` + takeColumns + `
		FROM takes t
		JOIN sessions s ON s.id = t.session_id
		JOIN projects p ON p.id = s.project_id
		WHERE p.owner_id = ?
		  AND (? = '' OR s.project_id = ?)
		  AND (? = '' OR s.id = ?)
		ORDER BY t.created_at ASC, t.rowid ASC
	`
	rows, err := q.QueryContext(ctx, query, ownerID, sc.projectID, sc.projectID, sc.sessionID, sc.sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query takes: %w", err)
	}
	defer rows.Close()

	bySession := map[string][]take.Take{}
	for rows.Next() {
		t, err := scanTake(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan take: %w", err)
		}
		bySession[t.SessionID] = append(bySession[t.SessionID], t)
	}
	return bySession, rows.Err()
}

// loadSessions returns the owner's sessions in scope with takes attached,
// grouped by project, oldest first.
func loadSessions(ctx context.Context, q queryer, ownerID string, sc scope) (map[string][]session.Session, error) {
	takes, err := loadTakes(ctx, q, ownerID, sc)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM sessions s
		JOIN projects p ON p.id = s.project_id
		WHERE p.owner_id = ?
		  AND (? = '' OR s.project_id = ?)
		  AND (? = '' OR s.id = ?)
		ORDER BY s.created_at ASC, s.rowid ASC
	`
	rows, err := q.QueryContext(ctx, query, ownerID, sc.projectID, sc.projectID, sc.sessionID, sc.sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	byProject := map[string][]session.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Takes = takes[s.ID]
		if s.Takes == nil {
			s.Takes = []take.Take{}
		}
		byProject[s.ProjectID] = append(byProject[s.ProjectID], s)
	}
	return byProject, rows.Err()
}
