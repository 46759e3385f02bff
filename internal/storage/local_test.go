package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "/uploads/")
	require.NoError(t, err)
	return s
}

func TestLocalStorage_SaveExistsRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	url, err := s.Save(ctx, ".WAV", strings.NewReader("RIFF"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/"))
	require.True(t, strings.HasSuffix(url, ".wav"))

	ok, err := s.Exists(ctx, url)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Remove(ctx, url))
	ok, err = s.Exists(ctx, url)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, s.Remove(ctx, url), ErrNotFound)
}

func TestLocalStorage_SaveUniqueNames(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	a, err := s.Save(ctx, ".mp3", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save(ctx, ".mp3", strings.NewReader("b"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLocalStorage_SaveFailureLeavesNothing(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Save(context.Background(), ".wav", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, trashDir, entries[0].Name())
}

func TestLocalStorage_ResolveRejectsForeignURLs(t *testing.T) {
	s := newTestStorage(t)

	for _, url := range []string{
		"",
		"/uploads/",
		"/uploads/../secret",
		"/uploads/a/b.wav",
		"/other/x.wav",
		"https://example.com/uploads/x.wav",
		"/uploads/.upload-123",
	} {
		_, err := s.Resolve(url)
		require.ErrorIs(t, err, ErrInvalidURL, url)
	}
}

func TestSanitizeExt(t *testing.T) {
	require.Equal(t, ".wav", SanitizeExt("WAV"))
	require.Equal(t, ".mp3", SanitizeExt(".mp3"))
	require.Equal(t, "", SanitizeExt(".tar.gz"))
	require.Equal(t, "", SanitizeExt("../x"))
	require.Equal(t, "", SanitizeExt(""))
}

func TestLocalStorage_Handler(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	url, err := s.Save(ctx, ".wav", strings.NewReader("audio-bytes"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "audio-bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, s.Trash(ctx, url))
	rec = httptest.NewRecorder()
	name := strings.TrimPrefix(url, "/uploads/")
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/.trash/"+name, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocalStorage_TrashRestorePurge(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	url, err := s.Save(ctx, ".wav", strings.NewReader("take"))
	require.NoError(t, err)

	require.NoError(t, s.Trash(ctx, url))
	ok, err := s.Exists(ctx, url)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Restore(ctx, url))
	ok, err = s.Exists(ctx, url)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Trash(ctx, url))
	require.NoError(t, s.Purge(ctx, url))
	require.NoError(t, s.Purge(ctx, url))
	require.ErrorIs(t, s.Restore(ctx, url), ErrNotFound)
	require.ErrorIs(t, s.Trash(ctx, url), ErrNotFound)
}

func TestLocalStorage_TrashRejectsDirectories(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, os.MkdirAll(filepath.Join(s.dir, "busy.wav", "inner"), 0o755))

	err := s.Trash(ctx, "/uploads/busy.wav")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.DirExists(t, filepath.Join(s.dir, "busy.wav"))
}
