package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// trashDir holds files moved aside by Trash. Dot names are never served.
const trashDir = ".trash"

// LocalStorage keeps files in a single directory and serves them under a URL prefix.
type LocalStorage struct {
	dir    string
	prefix string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage creates dir if needed. prefix is the public URL path, e.g. "/uploads".
func NewLocalStorage(dir, prefix string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		return nil, fmt.Errorf("storage url prefix is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, trashDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &LocalStorage{dir: dir, prefix: prefix}, nil
}

// Prefix returns the public URL prefix without a trailing slash.
func (s *LocalStorage) Prefix() string {
	return s.prefix
}

// SanitizeExt lowercases ext and drops it when it isn't a plain extension.
func SanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// Save writes r under a fresh name and returns its public URL. A partially
// written file is removed when r fails.
func (s *LocalStorage) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	name := uuid.NewString() + SanitizeExt(ext)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := io.Copy(tmp, contextReader{ctx: ctx, r: r}); err != nil {
		cleanup()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("storing file: %w", err)
	}
	return s.prefix + "/" + name, nil
}

// Resolve maps a public URL to its on-disk path.
func (s *LocalStorage) Resolve(url string) (string, error) {
	name, ok := strings.CutPrefix(url, s.prefix+"/")
	if !ok || name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	return filepath.Join(s.dir, name), nil
}

// Exists reports whether url addresses a stored file.
func (s *LocalStorage) Exists(_ context.Context, url string) (bool, error) {
	path, err := s.Resolve(url)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking file: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Remove deletes the file behind url. Returns ErrNotFound if it is already gone.
func (s *LocalStorage) Remove(_ context.Context, url string) error {
	path, err := s.Resolve(url)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// Trash moves the file behind url into the holding area. Returns ErrNotFound
// if it is already gone.
func (s *LocalStorage) Trash(_ context.Context, url string) error {
	path, err := s.Resolve(url)
	if err != nil {
		return err
	}
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("checking file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("trashing %s: not a regular file", url)
	}
	if err := os.Rename(path, s.trashPath(path)); err != nil {
		return fmt.Errorf("trashing file: %w", err)
	}
	return nil
}

// Restore moves a trashed file back under its URL.
func (s *LocalStorage) Restore(_ context.Context, url string) error {
	path, err := s.Resolve(url)
	if err != nil {
		return err
	}
	if err := os.Rename(s.trashPath(path), path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("restoring file: %w", err)
	}
	return nil
}

// Purge deletes a trashed file. A file that is already gone is not an error.
func (s *LocalStorage) Purge(_ context.Context, url string) error {
	path, err := s.Resolve(url)
	if err != nil {
		return err
	}
	if err := os.Remove(s.trashPath(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("purging file: %w", err)
	}
	return nil
}

func (s *LocalStorage) trashPath(path string) string {
	return filepath.Join(s.dir, trashDir, filepath.Base(path))
}

// Handler serves stored files under the URL prefix.
func (s *LocalStorage) Handler() http.Handler {
	fs := http.FileServer(noListing{http.Dir(s.dir)})
	return http.StripPrefix(s.prefix, fs)
}

type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() || strings.Contains("/"+name, "/.") {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
