package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when a stored file doesn't exist.
	ErrNotFound = errors.New("stored file not found")
	// ErrInvalidURL is returned for URLs that don't address a file in the store.
	ErrInvalidURL = errors.New("invalid file url")
)

// Storage persists uploaded files and addresses them by public URL.
type Storage interface {
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	Exists(ctx context.Context, url string) (bool, error)
	Remove(ctx context.Context, url string) error
	// Trash moves a file out of public view; Restore puts it back and Purge
	// deletes it for good.
	Trash(ctx context.Context, url string) error
	Restore(ctx context.Context, url string) error
	Purge(ctx context.Context, url string) error
}
