package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
)

const takeColumns = `t.id, t.session_id, t.name, t.version_number, t.notes, t.status, t.file_url, t.created_at`

const sessionColumns = `s.id, s.project_id, s.date, s.duration, s.engineer_notes, s.gear_used, s.created_at`

type scope struct {
	projectID string
	sessionID string
}

func scanTake(row pgx.Row) (take.Take, error) {
	var t take.Take
	err := row.Scan(&t.ID, &t.SessionID, &t.Name, &t.VersionNumber, &t.Notes, &t.Status, &t.FileURL, &t.CreatedAt)
	return t, err
}

func scanSession(row pgx.Row) (session.Session, error) {
	var s session.Session
	err := row.Scan(&s.ID, &s.ProjectID, &s.Date, &s.Duration, &s.EngineerNotes, &s.GearUsed, &s.CreatedAt)
	return s, err
}

func loadTakes(ctx context.Context, q querier, ownerID string, sc scope) (map[string][]take.Take, error) {
	query := `
		SELECT ` + takeColumns + `
		FROM takes t
		JOIN sessions s ON s.id = t.session_id
		JOIN projects p ON p.id = s.project_id
		WHERE p.owner_id = $1
		  AND ($2 = '' OR s.project_id = $2)
		  AND ($3 = '' OR s.id = $3)
		ORDER BY t.created_at ASC, t.id ASC
	`
	rows, err := q.Query(ctx, query, ownerID, sc.projectID, sc.sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying takes: %w", err)
	}
	defer rows.Close()

	bySession := map[string][]take.Take{}
	for rows.Next() {
		t, err := scanTake(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning take: %w", err)
		}
		bySession[t.SessionID] = append(bySession[t.SessionID], t)
	}
	return bySession, rows.Err()
}

func loadSessions(ctx context.Context, q querier, ownerID string, sc scope) (map[string][]session.Session, error) {
	takes, err := loadTakes(ctx, q, ownerID, sc)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM sessions s
		JOIN projects p ON p.id = s.project_id
		WHERE p.owner_id = $1
		  AND ($2 = '' OR s.project_id = $2)
		  AND ($3 = '' OR s.id = $3)
		ORDER BY s.created_at ASC, s.id ASC
	`
	rows, err := q.Query(ctx, query, ownerID, sc.projectID, sc.sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	byProject := map[string][]session.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.Takes = takes[s.ID]
		if s.Takes == nil {
			s.Takes = []take.Take{}
		}
		byProject[s.ProjectID] = append(byProject[s.ProjectID], s)
	}
	return byProject, rows.Err()
}

func collectFileURLs(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("collecting files: %w", err)
	}
	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning file urls: %w", err)
	}
	return urls, nil
}
