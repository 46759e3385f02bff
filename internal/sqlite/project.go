package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/repository"
)

const projectColumns = `id, owner_id, name, client, status, notes, start_date, created_at`

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(row scanner) (project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Client,
		&p.Status,
		&p.Notes,
		&p.StartDate,
		&p.CreatedAt,
	)
	return p, err
}

func attachSessions(p *project.Project, byProject map[string][]session.Session) {
	p.Sessions = byProject[p.ID]
	if p.Sessions == nil {
		p.Sessions = []session.Session{}
	}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, ownerID string, proj *project.Project) error {
	query := `
		INSERT INTO projects (id, owner_id, name, client, status, notes, start_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		proj.ID,
		ownerID,
		proj.Name,
		proj.Client,
		proj.Status,
		proj.Notes,
		proj.StartDate,
		proj.CreatedAt,
	)
	if err != nil {
		return mapWriteError("failed to create project", err)
	}
	return nil
}

// Get retrieves a project with its sessions and takes
func (r *ProjectRepository) Get(ctx context.Context, ownerID, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ? AND owner_id = ?`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	sessions, err := loadSessions(ctx, r.db, ownerID, scope{projectID: id})
	if err != nil {
		return nil, err
	}
	attachSessions(&p, sessions)
	return &p, nil
}

// List returns all of the owner's projects, newest first, with sessions and takes
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]project.Project, error) {
	sessions, err := loadSessions(ctx, r.db, ownerID, scope{})
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE owner_id = ?
		ORDER BY created_at DESC, rowid DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		attachSessions(&p, sessions)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Update saves the mutable fields of a project
func (r *ProjectRepository) Update(ctx context.Context, ownerID string, proj *project.Project) error {
	query := `
		UPDATE projects
		SET name = ?, client = ?, status = ?, notes = ?, start_date = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		proj.Name,
		proj.Client,
		proj.Status,
		proj.Notes,
		proj.StartDate,
		proj.ID,
		ownerID,
	)
	if err != nil {
		return mapWriteError("failed to update project", err)
	}
	return requireRow(result)
}

// Delete removes a project, its sessions and takes. beforeCommit receives
// the file URLs of the removed takes.
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ? AND owner_id = ?`, id, ownerID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find project: %w", err)
		}

		urls, err := collectFileURLs(ctx, tx, `
			SELECT t.file_url FROM takes t
			JOIN sessions s ON s.id = t.session_id
			WHERE s.project_id = ? AND t.file_url IS NOT NULL
		`, id)
		if err != nil {
			return err
		}

		stmts := []string{
			`DELETE FROM takes WHERE session_id IN (SELECT id FROM sessions WHERE project_id = ?)`,
			`DELETE FROM sessions WHERE project_id = ?`,
			`DELETE FROM projects WHERE id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}
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

func collectFileURLs(ctx context.Context, q queryer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to collect files: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan file url: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
