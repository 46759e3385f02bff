package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rpggio/tracksheet/internal/storage"
)

// DefaultMaxBytes is the upload limit when none is configured.
const DefaultMaxBytes int64 = 100 << 20

// sniffLen is how much of the body content detection looks at.
const sniffLen = 3072

// Containers that carry audio-only streams but sniff as video or generic ogg.
var audioContainers = []string{"video/mp4", "video/webm", "application/ogg", "video/3gpp"}

// Request is a single uploaded file.
type Request struct {
	Filename    string
	ContentType string
	// Size is the declared length, or -1 when unknown.
	Size int64
	Body io.Reader
}

// Service validates and stores audio uploads.
type Service struct {
	store    Store
	files    Repository
	maxBytes int64
	logger   *slog.Logger
}

// NewService creates an upload service. maxBytes <= 0 uses DefaultMaxBytes.
func NewService(store Store, files Repository, maxBytes int64, logger *slog.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, files: files, maxBytes: maxBytes, logger: logger}
}

// MaxBytes returns the upload limit.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// TooLargeMessage describes the limit for clients.
func (s *Service) TooLargeMessage() string {
	return "file exceeds the " + humanize.IBytes(uint64(s.maxBytes)) + " upload limit"
}

// Upload stores an audio file owned by ownerID and returns its URL. Nothing
// is written unless both the declared type and the content are audio.
func (s *Service) Upload(ctx context.Context, ownerID string, req Request) (string, error) {
	if req.Body == nil {
		return "", fmt.Errorf("%w: no file provided", ErrInvalidInput)
	}
	if !IsAudioType(req.ContentType) {
		return "", fmt.Errorf("%w: %q is not an audio type", ErrInvalidInput, req.ContentType)
	}
	if req.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %s", ErrTooLarge, s.TooLargeMessage())
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(req.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if int64(n) > s.maxBytes {
		return "", fmt.Errorf("%w: %s", ErrTooLarge, s.TooLargeMessage())
	}

	detected := mimetype.Detect(head)
	if !isAudioContent(detected) {
		return "", fmt.Errorf("%w: content looks like %s, not audio", ErrInvalidInput, detected.String())
	}

	ext := storage.SanitizeExt(filepath.Ext(req.Filename))
	if ext == "" {
		ext = detected.Extension()
	}

	body := &limitedReader{r: io.MultiReader(bytes.NewReader(head), req.Body), remaining: s.maxBytes}
	url, err := s.store.Save(ctx, ext, body)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return "", fmt.Errorf("%w: %s", ErrTooLarge, s.TooLargeMessage())
		}
		return "", fmt.Errorf("saving upload: %w", err)
	}

	err = s.files.Create(ctx, &File{
		URL:         url,
		OwnerID:     ownerID,
		ContentType: detected.String(),
		Size:        body.read,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		if rmErr := s.store.Remove(ctx, url); rmErr != nil {
			s.logger.Warn("unrecorded upload not removed", "url", url, "error", rmErr)
		}
		return "", fmt.Errorf("recording upload: %w", err)
	}

	s.logger.Info("audio uploaded",
		"owner", ownerID,
		"url", url,
		"type", detected.String(),
		"bytes", humanize.IBytes(uint64(body.read)))
	return url, nil
}

// IsAudioType reports whether a declared content type is audio/*.
func IsAudioType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	return strings.HasPrefix(strings.ToLower(mediaType), "audio/")
}

func isAudioContent(m *mimetype.MIME) bool {
	for cur := m; cur != nil; cur = cur.Parent() {
		if strings.HasPrefix(cur.String(), "audio/") {
			return true
		}
	}
	for _, c := range audioContainers {
		if m.Is(c) {
			return true
		}
	}
	return false
}

// limitedReader fails with ErrTooLarge once more than remaining bytes are read.
type limitedReader struct {
	r         io.Reader
	remaining int64
	read      int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
