package upload

import (
	"context"
	"io"
	"time"
)

// Store persists uploaded bytes and returns their public URL.
type Store interface {
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// File records who uploaded a stored file.
type File struct {
	URL         string
	OwnerID     string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

// Repository persists upload records.
type Repository interface {
	Create(ctx context.Context, f *File) error
}
