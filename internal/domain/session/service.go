package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/repository"
	"github.com/rpggio/tracksheet/internal/textutil"
)

// Service handles session operations.
type Service struct {
	repo       Repository
	files      take.FileStore
	activities activity.Writer
	logger     *slog.Logger
}

// NewService creates a new session service.
func NewService(repo Repository, files take.FileStore, activities activity.Writer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, files: files, activities: activities, logger: logger}
}

// CreateRequest defines session creation inputs.
type CreateRequest struct {
	ProjectID     string
	Date          string
	Duration      *string
	EngineerNotes *string
	GearUsed      *string
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns
// the calendar date.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d.Format(DateLayout), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC().Format(DateLayout), nil
	}
	return "", fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
}

func parseDuration(s *string) (*string, error) {
	d := textutil.Optional(s)
	if d == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(*d, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%w: duration %q must be a non-negative number", ErrInvalidInput, *d)
	}
	return d, nil
}

// Create adds a session to a project the owner controls.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Session, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, fmt.Errorf("%w: projectId is required", ErrInvalidInput)
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	duration, err := parseDuration(req.Duration)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:            uuid.NewString(),
		ProjectID:     strings.TrimSpace(req.ProjectID),
		Date:          date,
		Duration:      duration,
		EngineerNotes: textutil.Optional(req.EngineerNotes),
		GearUsed:      textutil.Optional(req.GearUsed),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, ownerID, sess); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("creating session: %w", err)
	}

	activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
		ProjectID: sess.ProjectID,
		SessionID: &sess.ID,
		Type:      activity.TypeSessionCreated,
		Summary:   "Created session on " + sess.Date,
	})
	return sess, nil
}

// Get fetches a session with its takes.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Session, error) {
	sess, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return sess, nil
}

// Delete removes a session, its takes and their files. Files are staged
// inside the delete transaction and purged after it commits.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	sess, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	removal := take.NewFileRemoval(s.files)
	if err := s.repo.Delete(ctx, ownerID, id, removal.Stage); err != nil {
		if lost, restoreErr := removal.Restore(ctx); len(lost) > 0 {
			s.logger.Error("session files lost after failed delete",
				"session", id,
				"files", lost,
				"error", errors.Join(err, restoreErr))
			activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
				ProjectID: sess.ProjectID,
				SessionID: &sess.ID,
				Type:      activity.TypeDeleteIncomplete,
				Summary:   "Session " + sess.Date + " lost files but was not deleted",
				Details:   strings.Join(lost, ","),
			})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("deleting session: %w", err)
	}

	removed, err := removal.Purge(ctx)
	if err != nil {
		s.logger.Warn("deleted session files not purged", "session", id, "error", err)
	}
	activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
		ProjectID: sess.ProjectID,
		SessionID: &sess.ID,
		Type:      activity.TypeSessionDeleted,
		Summary:   fmt.Sprintf("Deleted session on %s with %d takes", sess.Date, len(sess.Takes)),
	})
	for _, url := range removed {
		activity.Record(ctx, s.activities, s.logger, ownerID, &activity.Entry{
			ProjectID: sess.ProjectID,
			SessionID: &sess.ID,
			Type:      activity.TypeFileRemoved,
			Summary:   "Removed file " + url,
		})
	}
	return nil
}
