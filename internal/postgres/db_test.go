package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/tracksheet/internal/auth"
	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/domain/upload"
	"github.com/rpggio/tracksheet/internal/repository"
	"github.com/rpggio/tracksheet/internal/textutil"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TRACKSHEET_TEST_POSTGRES_URL or skips.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TRACKSHEET_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TRACKSHEET_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	db, err := New(ctx, url)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrations must be re-runnable")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPostgres_ProjectTree(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := "pg-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond)

	older := &project.Project{ID: uuid.NewString(), Name: "Older", Status: project.StatusMixing, StartDate: "3/9/2024", CreatedAt: now}
	newer := &project.Project{ID: uuid.NewString(), Name: "Newer", Status: project.StatusInProgress, StartDate: "3/10/2024", CreatedAt: now.Add(time.Second)}
	require.NoError(t, db.Projects().Create(ctx, owner, older))
	require.NoError(t, db.Projects().Create(ctx, owner, newer))

	sess := &session.Session{ID: uuid.NewString(), ProjectID: older.ID, Date: "2024-03-09", CreatedAt: now}
	require.NoError(t, db.Sessions().Create(ctx, owner, sess))
	require.ErrorIs(t, db.Sessions().Create(ctx, "intruder", &session.Session{ID: uuid.NewString(), ProjectID: older.ID, Date: "2024-03-09", CreatedAt: now}), repository.ErrNotFound)

	url := "/uploads/" + uuid.NewString() + ".wav"
	tk := &take.Take{ID: uuid.NewString(), SessionID: sess.ID, Name: "Vocals", Status: take.StatusKeep, FileURL: &url, CreatedAt: now}
	require.NoError(t, db.Takes().Create(ctx, owner, tk))

	list, err := db.Projects().List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, newer.ID, list[0].ID)
	require.Empty(t, list[0].Sessions)
	require.Len(t, list[1].Sessions, 1)
	require.Len(t, list[1].Sessions[0].Takes, 1)
	require.Equal(t, url, *list[1].Sessions[0].Takes[0].FileURL)

	tk.Status = take.StatusReject
	tk.Notes = textutil.Ptr("pitchy")
	require.NoError(t, db.Takes().Update(ctx, owner, tk))
	got, err := db.Takes().Get(ctx, owner, tk.ID)
	require.NoError(t, err)
	require.Equal(t, take.StatusReject, got.Status)

	hookErr := errors.New("busy")
	require.ErrorIs(t, db.Projects().Delete(ctx, owner, older.ID, func(context.Context, []string) error { return hookErr }), hookErr)
	_, err = db.Takes().Get(ctx, owner, tk.ID)
	require.NoError(t, err)

	var removed []string
	require.NoError(t, db.Projects().Delete(ctx, owner, older.ID, func(_ context.Context, urls []string) error {
		removed = urls
		return nil
	}))
	require.Equal(t, []string{url}, removed)
	_, err = db.Sessions().Get(ctx, owner, sess.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostgres_ActivityAndKeys(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := "pg-" + uuid.NewString()

	entry := &activity.Entry{ProjectID: "p1", Type: activity.TypeProjectCreated, Summary: "created"}
	require.NoError(t, db.Activity().Log(ctx, owner, entry))
	require.NotZero(t, entry.ID)

	entries, err := db.Activity().List(ctx, owner, activity.ListOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	keys := auth.NewKeyService(db.APIKeys())
	key, token, err := keys.Create(ctx, owner, "")
	require.NoError(t, err)
	resolved, err := db.APIKeys().ResolveOwner(ctx, auth.HashToken(token))
	require.NoError(t, err)
	require.Equal(t, owner, resolved)
	require.NoError(t, keys.Revoke(ctx, key.ID))
	_, err = db.APIKeys().ResolveOwner(ctx, auth.HashToken(token))
	require.ErrorIs(t, err, auth.ErrKeyNotFound)
}

func TestPostgres_UploadsAndAttachedFiles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := "pg-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond)

	url := "/uploads/" + uuid.NewString() + ".wav"
	require.NoError(t, db.Uploads().Create(ctx, &upload.File{URL: url, OwnerID: owner, ContentType: "audio/wav", Size: 44, CreatedAt: now}))
	got, err := db.Uploads().Owner(ctx, url)
	require.NoError(t, err)
	require.Equal(t, owner, got)
	_, err = db.Uploads().Owner(ctx, "/uploads/"+uuid.NewString()+".wav")
	require.ErrorIs(t, err, repository.ErrNotFound)

	proj := &project.Project{ID: uuid.NewString(), Name: "Single", Status: project.StatusInProgress, StartDate: "3/9/2024", CreatedAt: now}
	require.NoError(t, db.Projects().Create(ctx, owner, proj))
	sess := &session.Session{ID: uuid.NewString(), ProjectID: proj.ID, Date: "2024-03-09", CreatedAt: now}
	require.NoError(t, db.Sessions().Create(ctx, owner, sess))
	tk := &take.Take{ID: uuid.NewString(), SessionID: sess.ID, Name: "Vocals", Status: take.StatusKeep, FileURL: &url, CreatedAt: now}
	require.NoError(t, db.Takes().Create(ctx, owner, tk))

	dup := &take.Take{ID: uuid.NewString(), SessionID: sess.ID, Name: "Copy", Status: take.StatusKeep, FileURL: &url, CreatedAt: now}
	require.ErrorIs(t, db.Takes().Create(ctx, owner, dup), repository.ErrDuplicate)

	require.NoError(t, db.Takes().Delete(ctx, owner, tk.ID, nil))
	_, err = db.Uploads().Owner(ctx, url)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
