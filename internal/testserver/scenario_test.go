package testserver_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tracksheet/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type takeBody struct {
	ID        string  `json:"id"`
	SessionID string  `json:"sessionId"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	FileURL   *string `json:"fileUrl"`
}

type sessionBody struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectId"`
	Date      string     `json:"date"`
	Takes     []takeBody `json:"takes"`
}

type projectBody struct {
	ID       string        `json:"id"`
	UserID   string        `json:"userId"`
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Sessions []sessionBody `json:"sessions"`
}

type activityBody struct {
	Type      string  `json:"type"`
	ProjectID string  `json:"projectId"`
	TakeID    *string `json:"takeId"`
}

func wav(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+n))
	buf.WriteString("WAVEfmt ")
	for _, v := range []any{uint32(16), uint16(1), uint16(1), uint32(44100), uint32(88200), uint16(2), uint16(16)} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(n))
	buf.Write(make([]byte, n))
	return buf.Bytes()
}

func TestScenario_AlbumSessionTake(t *testing.T) {
	ts := testserver.New(t)
	token := ts.AddAPIKey(t, "engineer")

	var proj projectBody
	ts.DoJSON(t, token, http.MethodPost, "/projects", map[string]any{"name": "Album A", "client": "The Band"}, http.StatusOK, &proj)
	require.Equal(t, "engineer", proj.UserID)
	require.Equal(t, "in-progress", proj.Status)

	var sess sessionBody
	ts.DoJSON(t, token, http.MethodPost, "/sessions", map[string]any{"projectId": proj.ID, "date": "2024-01-02", "duration": 4}, http.StatusOK, &sess)
	require.Equal(t, "2024-01-02", sess.Date)

	var tk takeBody
	ts.DoJSON(t, token, http.MethodPost, "/takes", map[string]any{"sessionId": sess.ID, "name": "Vocal 1", "status": "keep"}, http.StatusOK, &tk)
	require.Equal(t, "keep", tk.Status)

	var list []projectBody
	ts.DoJSON(t, token, http.MethodGet, "/projects", nil, http.StatusOK, &list)
	require.Len(t, list, 1)
	require.Len(t, list[0].Sessions, 1)
	require.Len(t, list[0].Sessions[0].Takes, 1)
	require.Equal(t, "Vocal 1", list[0].Sessions[0].Takes[0].Name)

	var entries []activityBody
	ts.DoJSON(t, token, http.MethodGet, "/activity?projectId="+proj.ID, nil, http.StatusOK, &entries)
	require.Len(t, entries, 3)
	require.Equal(t, "take_created", entries[0].Type)
	for _, e := range entries {
		require.Equal(t, proj.ID, e.ProjectID)
	}
}

func TestScenario_OwnersAreIsolated(t *testing.T) {
	ts := testserver.New(t)
	alice := ts.AddAPIKey(t, "alice")
	bob := ts.AddAPIKey(t, "bob")

	var proj projectBody
	ts.DoJSON(t, alice, http.MethodPost, "/projects", map[string]any{"name": "Private"}, http.StatusOK, &proj)

	var list []projectBody
	ts.DoJSON(t, bob, http.MethodGet, "/projects", nil, http.StatusOK, &list)
	require.Empty(t, list)

	status, _ := ts.Do(t, bob, http.MethodGet, "/projects/"+proj.ID, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = ts.Do(t, bob, http.MethodPost, "/sessions", map[string]any{"projectId": proj.ID, "date": "2024-01-02"})
	require.Equal(t, http.StatusNotFound, status)

	status, _ = ts.Do(t, bob, http.MethodDelete, "/projects/"+proj.ID, nil)
	require.Equal(t, http.StatusNotFound, status)

	ts.DoJSON(t, alice, http.MethodGet, "/projects/"+proj.ID, nil, http.StatusOK, &proj)
	require.Empty(t, proj.Sessions)
}

func TestScenario_Unauthorized(t *testing.T) {
	ts := testserver.New(t)

	status, body := ts.Do(t, "", http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.JSONEq(t, `{"error":"Unauthorized"}`, string(body))

	status, _ = ts.Do(t, "tsk_bogus", http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.Do(t, "", http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
}

func TestScenario_UploadAttachAndDelete(t *testing.T) {
	ts := testserver.New(t)
	token := ts.AddAPIKey(t, "engineer")

	status, body := ts.Upload(t, token, "vocal.wav", "audio/wav", wav(4000))
	require.Equal(t, http.StatusOK, status, string(body))
	var uploaded struct {
		FileURL string `json:"fileUrl"`
	}
	require.NoError(t, json.Unmarshal(body, &uploaded))
	require.True(t, strings.HasPrefix(uploaded.FileURL, "/uploads/"))
	require.True(t, strings.HasSuffix(uploaded.FileURL, ".wav"))

	path := filepath.Join(ts.StorageDir, strings.TrimPrefix(uploaded.FileURL, "/uploads/"))
	_, err := os.Stat(path)
	require.NoError(t, err)

	resp, err := ts.Server.Client().Get(ts.Server.URL + uploaded.FileURL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var proj projectBody
	ts.DoJSON(t, token, http.MethodPost, "/projects", map[string]any{"name": "EP"}, http.StatusOK, &proj)
	var sess sessionBody
	ts.DoJSON(t, token, http.MethodPost, "/sessions", map[string]any{"projectId": proj.ID, "date": "2024-02-01"}, http.StatusOK, &sess)
	var tk takeBody
	ts.DoJSON(t, token, http.MethodPost, "/takes", map[string]any{"sessionId": sess.ID, "name": "Take 1", "fileUrl": uploaded.FileURL}, http.StatusOK, &tk)
	require.NotNil(t, tk.FileURL)

	ts.DoJSON(t, token, http.MethodDelete, "/takes/"+tk.ID, nil, http.StatusOK, nil)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "file should be removed with its take")

	ts.DoJSON(t, token, http.MethodGet, "/sessions/"+sess.ID, nil, http.StatusOK, &sess)
	require.Empty(t, sess.Takes)

	status, _ = ts.Do(t, token, http.MethodDelete, "/takes/"+tk.ID, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestScenario_RejectsNonAudioUpload(t *testing.T) {
	ts := testserver.New(t)
	token := ts.AddAPIKey(t, "engineer")

	status, _ := ts.Upload(t, token, "notes.txt", "text/plain", []byte("hello"))
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.Upload(t, token, "fake.wav", "audio/wav", []byte("definitely not audio, just text"))
	require.Equal(t, http.StatusBadRequest, status)

	assert.Empty(t, ts.StoredFiles(t))
}

func TestScenario_DeleteProjectRemovesFiles(t *testing.T) {
	ts := testserver.New(t)
	token := ts.AddAPIKey(t, "engineer")

	var uploaded struct {
		FileURL string `json:"fileUrl"`
	}
	status, body := ts.Upload(t, token, "mix.wav", "audio/wav", wav(1000))
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &uploaded))

	var proj projectBody
	ts.DoJSON(t, token, http.MethodPost, "/projects", map[string]any{"name": "Single"}, http.StatusOK, &proj)
	var sess sessionBody
	ts.DoJSON(t, token, http.MethodPost, "/sessions", map[string]any{"projectId": proj.ID, "date": "2024-03-01"}, http.StatusOK, &sess)
	ts.DoJSON(t, token, http.MethodPost, "/takes", map[string]any{"sessionId": sess.ID, "name": "Mix", "fileUrl": uploaded.FileURL}, http.StatusOK, nil)

	ts.DoJSON(t, token, http.MethodDelete, "/projects/"+proj.ID, nil, http.StatusOK, nil)

	require.Empty(t, ts.StoredFiles(t))
	trashed, err := os.ReadDir(filepath.Join(ts.StorageDir, ".trash"))
	require.NoError(t, err)
	require.Empty(t, trashed)

	status, _ = ts.Do(t, token, http.MethodGet, "/sessions/"+sess.ID, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func uploadWav(t *testing.T, ts *testserver.TestServer, token, name string) string {
	t.Helper()
	status, body := ts.Upload(t, token, name, "audio/wav", wav(1000))
	require.Equal(t, http.StatusOK, status, string(body))
	var uploaded struct {
		FileURL string `json:"fileUrl"`
	}
	require.NoError(t, json.Unmarshal(body, &uploaded))
	return uploaded.FileURL
}

func storedPath(ts *testserver.TestServer, url string) string {
	return filepath.Join(ts.StorageDir, strings.TrimPrefix(url, "/uploads/"))
}

func TestScenario_FilesCannotBeBorrowed(t *testing.T) {
	ts := testserver.New(t)
	alice := ts.AddAPIKey(t, "alice")
	mallory := ts.AddAPIKey(t, "mallory")

	url := uploadWav(t, ts, alice, "lead.wav")
	var proj projectBody
	ts.DoJSON(t, alice, http.MethodPost, "/projects", map[string]any{"name": "Alice EP"}, http.StatusOK, &proj)
	var sess sessionBody
	ts.DoJSON(t, alice, http.MethodPost, "/sessions", map[string]any{"projectId": proj.ID, "date": "2024-05-01"}, http.StatusOK, &sess)
	var mine takeBody
	ts.DoJSON(t, alice, http.MethodPost, "/takes", map[string]any{"sessionId": sess.ID, "name": "Lead", "fileUrl": url}, http.StatusOK, &mine)

	status, _ := ts.Do(t, alice, http.MethodPost, "/takes", map[string]any{"sessionId": sess.ID, "name": "Lead copy", "fileUrl": url})
	require.Equal(t, http.StatusBadRequest, status, "a file belongs to one take")
	var other takeBody
	ts.DoJSON(t, alice, http.MethodPost, "/takes", map[string]any{"sessionId": sess.ID, "name": "Backing"}, http.StatusOK, &other)
	status, _ = ts.Do(t, alice, http.MethodPatch, "/takes/"+other.ID, map[string]any{"fileUrl": url})
	require.Equal(t, http.StatusBadRequest, status)

	var theirProj projectBody
	ts.DoJSON(t, mallory, http.MethodPost, "/projects", map[string]any{"name": "Mallory EP"}, http.StatusOK, &theirProj)
	var theirSess sessionBody
	ts.DoJSON(t, mallory, http.MethodPost, "/sessions", map[string]any{"projectId": theirProj.ID, "date": "2024-05-02"}, http.StatusOK, &theirSess)
	status, _ = ts.Do(t, mallory, http.MethodPost, "/takes", map[string]any{"sessionId": theirSess.ID, "name": "Stolen", "fileUrl": url})
	require.Equal(t, http.StatusBadRequest, status)

	var decoy takeBody
	ts.DoJSON(t, mallory, http.MethodPost, "/takes", map[string]any{"sessionId": theirSess.ID, "name": "Decoy"}, http.StatusOK, &decoy)
	status, _ = ts.Do(t, mallory, http.MethodPatch, "/takes/"+decoy.ID, map[string]any{"fileUrl": url})
	require.Equal(t, http.StatusBadRequest, status)
	ts.DoJSON(t, mallory, http.MethodDelete, "/takes/"+decoy.ID, nil, http.StatusOK, nil)

	_, err := os.Stat(storedPath(ts, url))
	require.NoError(t, err, "the uploader's file must survive")
	ts.DoJSON(t, alice, http.MethodGet, "/takes/"+mine.ID, nil, http.StatusOK, &mine)
	require.Equal(t, url, *mine.FileURL)
}

func TestScenario_FailedProjectDeleteKeepsFiles(t *testing.T) {
	ts := testserver.New(t)
	token := ts.AddAPIKey(t, "engineer")

	first := uploadWav(t, ts, token, "one.wav")
	second := uploadWav(t, ts, token, "two.wav")

	var proj projectBody
	ts.DoJSON(t, token, http.MethodPost, "/projects", map[string]any{"name": "Double"}, http.StatusOK, &proj)
	var sess sessionBody
	ts.DoJSON(t, token, http.MethodPost, "/sessions", map[string]any{"projectId": proj.ID, "date": "2024-06-01"}, http.StatusOK, &sess)
	ts.DoJSON(t, token, http.MethodPost, "/takes", map[string]any{"sessionId": sess.ID, "name": "one", "fileUrl": first}, http.StatusOK, nil)
	ts.DoJSON(t, token, http.MethodPost, "/takes", map[string]any{"sessionId": sess.ID, "name": "two", "fileUrl": second}, http.StatusOK, nil)

	// A directory where a file should be can't be removed.
	blocked := storedPath(ts, second)
	require.NoError(t, os.Remove(blocked))
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "inner"), 0o755))

	status, _ := ts.Do(t, token, http.MethodDelete, "/projects/"+proj.ID, nil)
	require.Equal(t, http.StatusInternalServerError, status)

	ts.DoJSON(t, token, http.MethodGet, "/projects/"+proj.ID, nil, http.StatusOK, &proj)
	require.Len(t, proj.Sessions, 1)
	require.Len(t, proj.Sessions[0].Takes, 2)
	_, err := os.Stat(storedPath(ts, first))
	require.NoError(t, err, "files of surviving takes must stay")

	var entries []activityBody
	ts.DoJSON(t, token, http.MethodGet, "/activity?type=delete_incomplete", nil, http.StatusOK, &entries)
	require.Empty(t, entries)
}

func TestScenario_UpdateProjectAndTake(t *testing.T) {
	ts := testserver.New(t)
	token := ts.AddAPIKey(t, "engineer")

	var proj projectBody
	ts.DoJSON(t, token, http.MethodPost, "/projects", map[string]any{"name": "LP"}, http.StatusOK, &proj)
	ts.DoJSON(t, token, http.MethodPatch, "/projects/"+proj.ID, map[string]any{"status": "mastering"}, http.StatusOK, &proj)
	require.Equal(t, "mastering", proj.Status)

	status, _ := ts.Do(t, token, http.MethodPatch, "/projects/"+proj.ID, map[string]any{"status": "released"})
	require.Equal(t, http.StatusBadRequest, status)

	var sess sessionBody
	ts.DoJSON(t, token, http.MethodPost, "/sessions", map[string]any{"projectId": proj.ID, "date": "2024-04-01"}, http.StatusOK, &sess)
	var tk takeBody
	ts.DoJSON(t, token, http.MethodPost, "/takes", map[string]any{"sessionId": sess.ID, "name": "Guitar"}, http.StatusOK, &tk)
	ts.DoJSON(t, token, http.MethodPatch, "/takes/"+tk.ID, map[string]any{"status": "maybe"}, http.StatusOK, &tk)
	require.Equal(t, "maybe", tk.Status)

	var entries []activityBody
	ts.DoJSON(t, token, http.MethodGet, "/activity?type=project_updated", nil, http.StatusOK, &entries)
	require.Len(t, entries, 1)
}

func TestScenario_MCPOverHTTP(t *testing.T) {
	ts := testserver.New(t)
	token := ts.AddAPIKey(t, "engineer")
	ctx := context.Background()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: &testserver.BearerTransport{Token: token}},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	result, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "create_project", Arguments: map[string]any{"name": "From MCP"}})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var list []projectBody
	ts.DoJSON(t, token, http.MethodGet, "/projects", nil, http.StatusOK, &list)
	require.Len(t, list, 1)
	require.Equal(t, "From MCP", list[0].Name)
}
