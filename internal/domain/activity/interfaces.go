package activity

import "context"

// Writer appends entries to the activity log.
type Writer interface {
	Log(ctx context.Context, ownerID string, entry *Entry) error
}

// Repository provides persistence operations for activity entries.
type Repository interface {
	Writer
	List(ctx context.Context, ownerID string, opts ListOptions) ([]Entry, error)
}
