package take

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/tracksheet/internal/repository"
	"github.com/rpggio/tracksheet/internal/storage"
)

// RemoveFiles deletes every URL from files. A file that is already gone
// counts as removed. It stops at the first real failure.
func RemoveFiles(ctx context.Context, files FileStore, urls []string) (int, error) {
	removed := 0
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := files.Remove(ctx, url); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return removed, fmt.Errorf("removing %s: %w", url, err)
		}
		removed++
	}
	return removed, nil
}

// FileRemoval moves the files of deleted takes aside while the delete
// transaction is open. After the transaction, Purge deletes them or Restore
// puts them back.
type FileRemoval struct {
	files   FileStore
	trashed []string
}

// NewFileRemoval creates a removal over files.
func NewFileRemoval(files FileStore) *FileRemoval {
	return &FileRemoval{files: files}
}

// Stage is a BeforeCommit hook. A file that is already gone is skipped; any
// other failure stops staging and rolls the transaction back.
func (r *FileRemoval) Stage(ctx context.Context, urls []string) error {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := r.files.Trash(ctx, url); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return fmt.Errorf("removing %s: %w", url, err)
		}
		r.trashed = append(r.trashed, url)
	}
	return nil
}

// Restore puts back every staged file. It returns the URLs that could not be
// restored.
func (r *FileRemoval) Restore(ctx context.Context) ([]string, error) {
	var lost []string
	var errs []error
	for _, url := range r.trashed {
		if err := r.files.Restore(ctx, url); err != nil {
			lost = append(lost, url)
			errs = append(errs, fmt.Errorf("restoring %s: %w", url, err))
		}
	}
	r.trashed = nil
	return lost, errors.Join(errs...)
}

// Purge deletes every staged file and returns their URLs. The URLs stop
// resolving either way; an error means some bytes were left in the holding
// area.
func (r *FileRemoval) Purge(ctx context.Context) ([]string, error) {
	var errs []error
	for _, url := range r.trashed {
		if err := r.files.Purge(ctx, url); err != nil {
			errs = append(errs, fmt.Errorf("purging %s: %w", url, err))
		}
	}
	removed := r.trashed
	r.trashed = nil
	return removed, errors.Join(errs...)
}

// checkFileURL verifies that url addresses an existing file uploaded by ownerID.
func (s *Service) checkFileURL(ctx context.Context, ownerID, url string) error {
	ok, err := s.files.Exists(ctx, url)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidURL) {
			return fmt.Errorf("%w: fileUrl %q is not an uploaded file", ErrInvalidInput, url)
		}
		return fmt.Errorf("checking file: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: fileUrl %q does not exist", ErrInvalidInput, url)
	}

	owner, err := s.uploads.Owner(ctx, url)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("checking file owner: %w", err)
	}
	if err != nil || owner != ownerID {
		return fmt.Errorf("%w: fileUrl %q is not one of your uploads", ErrInvalidInput, url)
	}
	return nil
}
