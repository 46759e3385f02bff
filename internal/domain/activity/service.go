package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Recent lists the owner's activity, newest first.
func (s *Service) Recent(ctx context.Context, ownerID string, opts ListOptions) ([]Entry, error) {
	if opts.Type != nil && !opts.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, *opts.Type)
	}
	if opts.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	switch {
	case opts.Limit <= 0:
		opts.Limit = DefaultLimit
	case opts.Limit > MaxLimit:
		opts.Limit = MaxLimit
	}

	entries, err := s.repo.List(ctx, ownerID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Record appends an entry and only logs on failure. Activity is an audit
// trail; a write failure must not fail the operation that produced it.
func Record(ctx context.Context, w Writer, logger *slog.Logger, ownerID string, entry *Entry) {
	if w == nil || entry == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := w.Log(ctx, ownerID, entry); err != nil && logger != nil {
		logger.Warn("activity log write failed",
			"type", entry.Type,
			"owner", ownerID,
			"error", err)
	}
}
