// Package testserver runs the full HTTP surface over an in-memory database
// for end-to-end tests.
package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/rpggio/tracksheet/internal/app"
	"github.com/rpggio/tracksheet/internal/auth"
	"github.com/rpggio/tracksheet/internal/config"
	"github.com/rpggio/tracksheet/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	DB     *sqlite.DB
	// StorageDir holds uploaded files.
	StorageDir string
}

// New starts a server with API key auth, backed by an in-memory SQLite
// database and a temporary upload directory.
func New(t *testing.T) *TestServer {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))

	cfg := config.Default()
	cfg.DB.Path = ":memory:"
	cfg.Storage.Dir = t.TempDir()
	cfg.Upload.MaxBytes = 1 << 20
	cfg.Auth.Mode = auth.ModeAPIKey

	a, err := app.New(cfg, db, app.Repositories{
		Projects: sqlite.NewProjectRepository(db),
		Sessions: sqlite.NewSessionRepository(db),
		Takes:    sqlite.NewTakeRepository(db),
		Uploads:  sqlite.NewUploadRepository(db),
		Activity: sqlite.NewActivityRepository(db),
		APIKeys:  sqlite.NewAPIKeyRepository(db),
	}, nil)
	require.NoError(t, err)

	server := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
	})

	return &TestServer{Server: server, App: a, DB: db, StorageDir: cfg.Storage.Dir}
}

// StoredFiles lists the names of files served from the upload directory.
func (ts *TestServer) StoredFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(ts.StorageDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names
}

// AddAPIKey issues a token for ownerID.
func (ts *TestServer) AddAPIKey(t *testing.T, ownerID string) string {
	t.Helper()
	_, token, err := ts.App.Keys.Create(context.Background(), ownerID, "test")
	require.NoError(t, err)
	return token
}

// Do sends a JSON request and returns the status and body.
func (ts *TestServer) Do(t *testing.T, token, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return ts.send(t, token, req)
}

// DoJSON sends a request, requires want and decodes the response into dst.
func (ts *TestServer) DoJSON(t *testing.T, token, method, path string, body any, want int, dst any) {
	t.Helper()
	status, data := ts.Do(t, token, method, path, body)
	require.Equal(t, want, status, "%s %s: %s", method, path, data)
	if dst != nil {
		require.NoError(t, json.Unmarshal(data, dst))
	}
}

// Upload posts data as the multipart "file" field.
func (ts *TestServer) Upload(t *testing.T, token, filename, contentType string, data []byte) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ts.send(t, token, req)
}

func (ts *TestServer) send(t *testing.T, token string, req *http.Request) (int, []byte) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// BearerTransport adds an API key to every request.
type BearerTransport struct {
	Token string
	Base  http.RoundTripper
}

func (b *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.Token)
	base := b.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
