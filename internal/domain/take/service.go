package take

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/repository"
	"github.com/rpggio/tracksheet/internal/textutil"
)

// Service handles take operations.
type Service struct {
	repo       Repository
	files      FileStore
	uploads    UploadRepository
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new take service.
func NewService(repo Repository, files FileStore, uploads UploadRepository, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, files: files, uploads: uploads, activities: activities, logger: logger}
}

// CreateRequest defines take creation inputs.
type CreateRequest struct {
	SessionID     string
	Name          string
	VersionNumber *string
	Notes         *string
	Status        string
	FileURL       *string
}

// UpdateRequest patches a take. Nil fields are left alone; an empty string
// clears an optional field.
type UpdateRequest struct {
	Name          *string
	VersionNumber *string
	Notes         *string
	Status        *string
	FileURL       *string
}

// Create adds a take to a session the owner controls.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Take, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidInput)
	}
	status, ok := ParseStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	fileURL := textutil.Optional(req.FileURL)
	if fileURL != nil {
		if err := s.checkFileURL(ctx, ownerID, *fileURL); err != nil {
			return nil, err
		}
	}

	t := &Take{
		ID:            uuid.NewString(),
		SessionID:     strings.TrimSpace(req.SessionID),
		Name:          name,
		VersionNumber: textutil.Optional(req.VersionNumber),
		Notes:         textutil.Optional(req.Notes),
		Status:        status,
		FileURL:       fileURL,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, ownerID, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, ErrSessionNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) && fileURL != nil {
			return nil, fileInUse(*fileURL)
		}
		return nil, fmt.Errorf("creating take: %w", err)
	}

	activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
		SessionID: &t.SessionID,
		TakeID:    &t.ID,
		Type:      activity.TypeTakeCreated,
		Summary:   fmt.Sprintf("Created take %q (%s)", t.Name, t.Status),
	})
	return t, nil
}

// Get fetches a take by ID.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Take, error) {
	t, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTakeNotFound
		}
		return nil, fmt.Errorf("getting take: %w", err)
	}
	return t, nil
}

// Update applies a patch. Replacing or clearing fileUrl removes the previous
// file once the row is saved.
func (s *Service) Update(ctx context.Context, ownerID, id string, req UpdateRequest) (*Take, error) {
	t, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	previousFile := t.FileURL

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		t.Name = name
	}
	if req.VersionNumber != nil {
		t.VersionNumber = textutil.Optional(req.VersionNumber)
	}
	if req.Notes != nil {
		t.Notes = textutil.Optional(req.Notes)
	}
	if req.Status != nil {
		status, ok := ParseStatus(*req.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		t.Status = status
	}
	fileChanged := false
	if req.FileURL != nil {
		t.FileURL = textutil.Optional(req.FileURL)
		fileChanged = textutil.Deref(t.FileURL) != textutil.Deref(previousFile)
		if fileChanged && t.FileURL != nil {
			if err := s.checkFileURL(ctx, ownerID, *t.FileURL); err != nil {
				return nil, err
			}
		}
	}

	if err := s.repo.Update(ctx, ownerID, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTakeNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) && t.FileURL != nil {
			return nil, fileInUse(*t.FileURL)
		}
		return nil, fmt.Errorf("updating take: %w", err)
	}

	activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
		SessionID: &t.SessionID,
		TakeID:    &t.ID,
		Type:      activity.TypeTakeUpdated,
		Summary:   fmt.Sprintf("Updated take %q (%s)", t.Name, t.Status),
	})

	if fileChanged && previousFile != nil {
		if _, err := RemoveFiles(ctx, s.files, []string{*previousFile}); err != nil {
			s.logger.Warn("replaced take file not removed",
				"take", t.ID,
				"file", *previousFile,
				"error", err)
		} else {
			if err := s.uploads.Delete(ctx, *previousFile); err != nil {
				s.logger.Warn("upload record not removed",
					"file", *previousFile,
					"error", err)
			}
			activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
				SessionID: &t.SessionID,
				TakeID:    &t.ID,
				Type:      activity.TypeFileRemoved,
				Summary:   "Removed replaced file " + *previousFile,
			})
		}
	}
	return t, nil
}

// Delete removes a take and its audio file together. The file is moved aside
// inside the delete transaction and purged once the row delete commits; if
// the transaction fails the file is put back. A file that can't be put back
// is logged and recorded as delete_incomplete.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	t, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	removal := NewFileRemoval(s.files)
	if err := s.repo.Delete(ctx, ownerID, id, removal.Stage); err != nil {
		if lost, restoreErr := removal.Restore(ctx); len(lost) > 0 {
			s.logger.Error("take files lost after failed delete",
				"take", id,
				"files", lost,
				"error", errors.Join(err, restoreErr))
			activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
				SessionID: &t.SessionID,
				TakeID:    &t.ID,
				Type:      activity.TypeDeleteIncomplete,
				Summary:   fmt.Sprintf("Take %q lost its file but was not deleted", t.Name),
				Details:   strings.Join(lost, ","),
			})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTakeNotFound
		}
		return fmt.Errorf("deleting take: %w", err)
	}

	removed, err := removal.Purge(ctx)
	if err != nil {
		s.logger.Warn("deleted take file not purged", "take", id, "error", err)
	}
	activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
		SessionID: &t.SessionID,
		TakeID:    &t.ID,
		Type:      activity.TypeTakeDeleted,
		Summary:   fmt.Sprintf("Deleted take %q", t.Name),
	})
	for _, url := range removed {
		activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
			SessionID: &t.SessionID,
			TakeID:    &t.ID,
			Type:      activity.TypeFileRemoved,
			Summary:   "Removed file " + url,
		})
	}
	return nil
}

func fileInUse(url string) error {
	return fmt.Errorf("%w: fileUrl %q is already attached to another take", ErrInvalidInput, url)
}
