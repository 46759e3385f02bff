package upload_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rpggio/tracksheet/internal/domain/upload"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	ext     string
	data    []byte
	calls   int
	err     error
	removed []string
}

func (r *recordingStore) Save(_ context.Context, ext string, body io.Reader) (string, error) {
	r.calls++
	r.ext = ext
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if r.err != nil {
		return "", r.err
	}
	r.data = data
	return "/uploads/stored" + ext, nil
}

func (r *recordingStore) Remove(_ context.Context, url string) error {
	r.removed = append(r.removed, url)
	return nil
}

type recordingFiles struct {
	files []upload.File
	err   error
}

func (r *recordingFiles) Create(_ context.Context, f *upload.File) error {
	if r.err != nil {
		return r.err
	}
	r.files = append(r.files, *f)
	return nil
}

func newService(store *recordingStore, maxBytes int64) (*upload.Service, *recordingFiles) {
	files := &recordingFiles{}
	return upload.NewService(store, files, maxBytes, nil), files
}

// wavBytes builds a minimal PCM WAV file with n bytes of silence.
func wavBytes(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+n))
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(44100))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(88200))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(n))
	buf.Write(make([]byte, n))
	return buf.Bytes()
}

func TestUpload_StoresWav(t *testing.T) {
	store := &recordingStore{}
	svc, files := newService(store, 0)
	data := wavBytes(8000)

	url, err := svc.Upload(context.Background(), "user1", upload.Request{
		Filename:    "Vocals Take 3.WAV",
		ContentType: "audio/wav",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	require.NoError(t, err)
	require.Equal(t, "/uploads/stored.wav", url)
	require.Equal(t, data, store.data)
	require.Len(t, files.files, 1)
	require.Equal(t, url, files.files[0].URL)
	require.Equal(t, "user1", files.files[0].OwnerID)
	require.Equal(t, int64(len(data)), files.files[0].Size)
}

func TestUpload_RecordFailureRemovesFile(t *testing.T) {
	store := &recordingStore{}
	svc := upload.NewService(store, &recordingFiles{err: errors.New("database is locked")}, 0, nil)

	_, err := svc.Upload(context.Background(), "user1", upload.Request{
		ContentType: "audio/wav",
		Body:        bytes.NewReader(wavBytes(10)),
	})
	require.Error(t, err)
	require.Equal(t, []string{"/uploads/stored.wav"}, store.removed)
}

// ftypBytes builds an ISO base media header with the given major brand.
func ftypBytes(brand string) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, uint32(24))
	buf.WriteString("ftyp" + brand)
	_ = binary.Write(&buf, binary.BigEndian, uint32(0))
	buf.WriteString(brand + "isom")
	buf.Write(make([]byte, 64))
	return buf.Bytes()
}

// ebmlBytes builds a Matroska EBML header declaring docType.
func ebmlBytes(docType string) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81, 0x01, 0x42, 0x82, 0x80 | byte(len(docType))})
	buf.WriteString(docType)
	buf.Write(make([]byte, 64))
	return buf.Bytes()
}

// oggBytes builds a first Ogg page whose packet starts with codec.
func oggBytes(codec string) []byte {
	page := make([]byte, 28)
	copy(page, "OggS\x00\x02")
	page = append(page, codec...)
	return append(page, make([]byte, 32)...)
}

func TestUpload_ContainerFormats(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		data        []byte
		ext         string
		ok          bool
	}{
		{"m4a", "audio/mp4", ftypBytes("M4A "), ".m4a", true},
		{"mp4 audio", "audio/mp4", ftypBytes("mp42"), ".mp4", true},
		{"webm", "audio/webm", ebmlBytes("webm"), ".webm", true},
		{"ogg opus", "audio/ogg", oggBytes("OpusHead"), ".oga", true},
		{"matroska video", "audio/x-matroska", ebmlBytes("matroska"), "", false},
		{"ogg theora", "audio/ogg", oggBytes("\x80theora"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingStore{}
			svc, _ := newService(store, 0)

			_, err := svc.Upload(context.Background(), "user1", upload.Request{
				Filename:    "take",
				ContentType: tt.contentType,
				Size:        int64(len(tt.data)),
				Body:        bytes.NewReader(tt.data),
			})
			if !tt.ok {
				require.ErrorIs(t, err, upload.ErrInvalidInput)
				require.Zero(t, store.calls)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.ext, store.ext)
			require.Equal(t, tt.data, store.data)
		})
	}
}

func TestUpload_FallsBackToDetectedExtension(t *testing.T) {
	store := &recordingStore{}
	svc, _ := newService(store, 0)

	_, err := svc.Upload(context.Background(), "user1", upload.Request{
		Filename:    "blob",
		ContentType: "audio/x-wav",
		Size:        -1,
		Body:        bytes.NewReader(wavBytes(10)),
	})
	require.NoError(t, err)
	require.Equal(t, ".wav", store.ext)
}

func TestUpload_RejectsNonAudioDeclaredType(t *testing.T) {
	store := &recordingStore{}
	svc, _ := newService(store, 0)

	_, err := svc.Upload(context.Background(), "user1", upload.Request{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Body:        strings.NewReader("hello"),
	})
	require.ErrorIs(t, err, upload.ErrInvalidInput)
	require.Zero(t, store.calls)
}

func TestUpload_RejectsSpoofedContent(t *testing.T) {
	store := &recordingStore{}
	svc, _ := newService(store, 0)

	_, err := svc.Upload(context.Background(), "user1", upload.Request{
		Filename:    "evil.mp3",
		ContentType: "audio/mpeg",
		Body:        strings.NewReader("#!/bin/sh\necho pwned\n"),
	})
	require.ErrorIs(t, err, upload.ErrInvalidInput)
	require.Zero(t, store.calls)
}

func TestUpload_RejectsEmptyAndMissing(t *testing.T) {
	svc, _ := newService(&recordingStore{}, 0)

	_, err := svc.Upload(context.Background(), "user1", upload.Request{ContentType: "audio/wav"})
	require.ErrorIs(t, err, upload.ErrInvalidInput)

	_, err = svc.Upload(context.Background(), "user1", upload.Request{ContentType: "audio/wav", Body: bytes.NewReader(nil)})
	require.ErrorIs(t, err, upload.ErrInvalidInput)
}

func TestUpload_DeclaredSizeOverLimit(t *testing.T) {
	store := &recordingStore{}
	svc, _ := newService(store, 1024)

	_, err := svc.Upload(context.Background(), "user1", upload.Request{
		ContentType: "audio/wav",
		Size:        2048,
		Body:        bytes.NewReader(wavBytes(2000)),
	})
	require.ErrorIs(t, err, upload.ErrTooLarge)
	require.Contains(t, err.Error(), "1.0 KiB")
	require.Zero(t, store.calls)
}

func TestUpload_StreamOverLimit(t *testing.T) {
	store := &recordingStore{}
	svc, _ := newService(store, 4096)

	_, err := svc.Upload(context.Background(), "user1", upload.Request{
		ContentType: "audio/wav",
		Size:        -1,
		Body:        bytes.NewReader(wavBytes(10_000)),
	})
	require.ErrorIs(t, err, upload.ErrTooLarge)
}

func TestUpload_StoreFailure(t *testing.T) {
	svc, _ := newService(&recordingStore{err: errors.New("disk full")}, 0)

	_, err := svc.Upload(context.Background(), "user1", upload.Request{
		ContentType: "audio/wav",
		Body:        bytes.NewReader(wavBytes(10)),
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, upload.ErrInvalidInput)
}

func TestIsAudioType(t *testing.T) {
	require.True(t, upload.IsAudioType("audio/mpeg"))
	require.True(t, upload.IsAudioType("Audio/WAV; rate=44100"))
	require.False(t, upload.IsAudioType("video/mp4"))
	require.False(t, upload.IsAudioType(""))
}
