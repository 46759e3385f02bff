package take

import (
	"context"

	"github.com/rpggio/tracksheet/internal/domain/activity"
)

// BeforeCommit runs inside a delete transaction once rows are gone. It
// receives the file URLs of every removed take; an error rolls back.
type BeforeCommit func(ctx context.Context, fileURLs []string) error

// Repository provides owner-scoped persistence for takes. Create and Update
// fail with repository.ErrDuplicate when the file is attached to another take.
type Repository interface {
	// Create fails with repository.ErrNotFound when the session isn't owned by ownerID.
	Create(ctx context.Context, ownerID string, t *Take) error
	Get(ctx context.Context, ownerID, id string) (*Take, error)
	Update(ctx context.Context, ownerID string, t *Take) error
	Delete(ctx context.Context, ownerID, id string, beforeCommit BeforeCommit) error
}

// FileStore is the part of the file store takes depend on.
type FileStore interface {
	Exists(ctx context.Context, url string) (bool, error)
	Remove(ctx context.Context, url string) error
	Trash(ctx context.Context, url string) error
	Restore(ctx context.Context, url string) error
	Purge(ctx context.Context, url string) error
}

// UploadRepository tells who uploaded a stored file.
type UploadRepository interface {
	// Owner fails with repository.ErrNotFound for files with no upload record.
	Owner(ctx context.Context, url string) (string, error)
	Delete(ctx context.Context, url string) error
}

// ActivityRepository records take events.
type ActivityRepository = activity.Writer
