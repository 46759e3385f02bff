package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/repository"
)

const projectColumns = `id, owner_id, name, client, status, notes, start_date, created_at`

// ProjectRepository implements project.Repository for PostgreSQL.
type ProjectRepository struct {
	db *DB
}

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Client, &p.Status, &p.Notes, &p.StartDate, &p.CreatedAt)
	return p, err
}

func attachSessions(p *project.Project, byProject map[string][]session.Session) {
	p.Sessions = byProject[p.ID]
	if p.Sessions == nil {
		p.Sessions = []session.Session{}
	}
}

// Create inserts a new project.
func (r *ProjectRepository) Create(ctx context.Context, ownerID string, proj *project.Project) error {
	query := `
		INSERT INTO projects (id, owner_id, name, client, status, notes, start_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.pool.Exec(ctx, query,
		proj.ID,
		ownerID,
		proj.Name,
		proj.Client,
		string(proj.Status),
		proj.Notes,
		proj.StartDate,
		proj.CreatedAt,
	)
	if err != nil {
		return mapWriteError("inserting project", err)
	}
	return nil
}

// Get retrieves a project with its sessions and takes.
func (r *ProjectRepository) Get(ctx context.Context, ownerID, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND owner_id = $2`

	p, err := scanProject(r.db.pool.QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}

	sessions, err := loadSessions(ctx, r.db.pool, ownerID, scope{projectID: id})
	if err != nil {
		return nil, err
	}
	attachSessions(&p, sessions)
	return &p, nil
}

// List returns the owner's projects, newest first.
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]project.Project, error) {
	sessions, err := loadSessions(ctx, r.db.pool, ownerID, scope{})
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		attachSessions(&p, sessions)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Update saves the mutable fields of a project.
func (r *ProjectRepository) Update(ctx context.Context, ownerID string, proj *project.Project) error {
	query := `
		UPDATE projects
		SET name = $3, client = $4, status = $5, notes = $6, start_date = $7
		WHERE id = $1 AND owner_id = $2
	`
	tag, err := r.db.pool.Exec(ctx, query,
		proj.ID,
		ownerID,
		proj.Name,
		proj.Client,
		string(proj.Status),
		proj.Notes,
		proj.StartDate,
	)
	if err != nil {
		return mapWriteError("updating project", err)
	}
	return requireRow(tag)
}

// Delete removes a project with its sessions and takes.
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		var exists int
		err := tx.QueryRow(ctx, `SELECT 1 FROM projects WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, ownerID).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("locking project: %w", err)
		}

		urls, err := collectFileURLs(ctx, tx, `
			SELECT t.file_url FROM takes t
			JOIN sessions s ON s.id = t.session_id
			WHERE s.project_id = $1 AND t.file_url IS NOT NULL
		`, id)
		if err != nil {
			return err
		}

		stmts := []string{
			`DELETE FROM takes WHERE session_id IN (SELECT id FROM sessions WHERE project_id = $1)`,
			`DELETE FROM sessions WHERE project_id = $1`,
			`DELETE FROM projects WHERE id = $1`,
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt, id); err != nil {
				return fmt.Errorf("deleting project: %w", err)
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
