package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/repository"
	"github.com/rpggio/tracksheet/internal/textutil"
)

// Service handles project operations.
type Service struct {
	repo       Repository
	files      take.FileStore
	activities activity.Writer
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new project service.
func NewService(repo Repository, files take.FileStore, activities activity.Writer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, files: files, activities: activities, logger: logger, now: time.Now}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name      string
	Client    *string
	Status    string
	Notes     *string
	StartDate string
}

// UpdateRequest patches a project. Nil fields are left alone; an empty
// string clears an optional field.
type UpdateRequest struct {
	Name      *string
	Client    *string
	Status    *string
	Notes     *string
	StartDate *string
}

// Create creates a new project owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	status, ok := ParseStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	now := s.now()
	startDate := strings.TrimSpace(req.StartDate)
	if startDate == "" {
		startDate = now.Format(StartDateLayout)
	}

	proj := &Project{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Name:      name,
		Client:    textutil.Optional(req.Client),
		Status:    status,
		Notes:     textutil.Optional(req.Notes),
		StartDate: startDate,
		CreatedAt: now.UTC(),
	}
	if err := s.repo.Create(ctx, ownerID, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
		ProjectID: proj.ID,
		Type:      activity.TypeProjectCreated,
		Summary:   fmt.Sprintf("Created project %q", proj.Name),
	})
	return proj, nil
}

// Get fetches a project with its sessions and takes.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns the owner's projects, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]Project, error) {
	projects, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

// Update applies a patch to a project.
func (s *Service) Update(ctx context.Context, ownerID, id string, req UpdateRequest) (*Project, error) {
	proj, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	previousStatus := proj.Status

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		proj.Name = name
	}
	if req.Client != nil {
		proj.Client = textutil.Optional(req.Client)
	}
	if req.Notes != nil {
		proj.Notes = textutil.Optional(req.Notes)
	}
	if req.Status != nil {
		status, ok := ParseStatus(*req.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		proj.Status = status
	}
	if req.StartDate != nil {
		startDate := strings.TrimSpace(*req.StartDate)
		if startDate == "" {
			return nil, fmt.Errorf("%w: startDate must not be empty", ErrInvalidInput)
		}
		proj.StartDate = startDate
	}

	if err := s.repo.Update(ctx, ownerID, proj); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}

	summary := fmt.Sprintf("Updated project %q", proj.Name)
	if proj.Status != previousStatus {
		summary = fmt.Sprintf("Moved project %q from %s to %s", proj.Name, previousStatus.Label(), proj.Status.Label())
	}
	activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
		ProjectID: proj.ID,
		Type:      activity.TypeProjectUpdated,
		Summary:   summary,
	})
	return proj, nil
}

// Delete removes a project with all of its sessions, takes and files. Files
// are staged inside the delete transaction and purged after it commits.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	proj, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	removal := take.NewFileRemoval(s.files)
	if err := s.repo.Delete(ctx, ownerID, id, removal.Stage); err != nil {
		if lost, restoreErr := removal.Restore(ctx); len(lost) > 0 {
			s.logger.Error("project files lost after failed delete",
				"project", id,
				"files", lost,
				"error", errors.Join(err, restoreErr))
			activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
				ProjectID: proj.ID,
				Type:      activity.TypeDeleteIncomplete,
				Summary:   fmt.Sprintf("Project %q lost files but was not deleted", proj.Name),
				Details:   strings.Join(lost, ","),
			})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}

	removed, err := removal.Purge(ctx)
	if err != nil {
		s.logger.Warn("deleted project files not purged", "project", id, "error", err)
	}
	activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
		ProjectID: proj.ID,
		Type:      activity.TypeProjectDeleted,
		Summary: fmt.Sprintf("Deleted project %q with %d sessions and %d takes",
			proj.Name, len(proj.Sessions), proj.TakeCount()),
	})
	for _, url := range removed {
		activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
			ProjectID: proj.ID,
			Type:      activity.TypeFileRemoved,
			Summary:   "Removed file " + url,
		})
	}
	return nil
}
