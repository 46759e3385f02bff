package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "tracksheet.toml")
	content := `[db]
driver = "sqlite"
path = "` + filepath.ToSlash(filepath.Join(dir, "data", "tracksheet.db")) + `"

[storage]
dir = "` + filepath.ToSlash(filepath.Join(dir, "uploads")) + `"

[log]
level = "error"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TRACKSHEET_ENV", "production")
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	out, err := run(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "Schema is up to date (sqlite)")

	_, err = os.Stat(filepath.Join(dir, "data", "tracksheet.db"))
	require.NoError(t, err)
}

func TestAPIKeyCommands(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())

	out, err := run(t, "--config", cfgPath, "apikey", "create", "--owner", "alice", "--description", "laptop")
	require.NoError(t, err)
	require.Contains(t, out, "Token: tsk_")

	id := strings.Fields(strings.SplitN(out, "\n", 2)[0])[2]

	out, err = run(t, "--config", cfgPath, "apikey", "list")
	require.NoError(t, err)
	require.Contains(t, out, "alice")
	require.Contains(t, out, "laptop")

	out, err = run(t, "--config", cfgPath, "apikey", "revoke", id)
	require.NoError(t, err)
	require.Contains(t, out, "Revoked "+id)

	_, err = run(t, "--config", cfgPath, "apikey", "create")
	require.Error(t, err)
}

func TestProjectsCommand_Empty(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())

	out, err := run(t, "--config", cfgPath, "projects", "--owner", "alice")
	require.NoError(t, err)
	require.Contains(t, out, "No projects")
}

func TestRootCommand_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracksheet.ini")
	require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o644))

	_, err := run(t, "--config", path, "migrate")
	require.Error(t, err)
}
