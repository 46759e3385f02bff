package mocks

import (
	"context"

	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/domain/upload"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, ownerID string, proj *project.Project) error {
	args := m.Called(ctx, ownerID, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, ownerID, id string) (*project.Project, error) {
	args := m.Called(ctx, ownerID, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, ownerID string) ([]project.Project, error) {
	args := m.Called(ctx, ownerID)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, ownerID string, proj *project.Project) error {
	args := m.Called(ctx, ownerID, proj)
	return args.Error(0)
}

// Delete invokes beforeCommit with the URLs configured via the second return
// value when the first is nil.
func (m *ProjectRepository) Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error {
	args := m.Called(ctx, ownerID, id)
	return runDelete(ctx, args, beforeCommit)
}

// SessionRepository is a mock for session.Repository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, ownerID string, sess *session.Session) error {
	args := m.Called(ctx, ownerID, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, ownerID, id string) (*session.Session, error) {
	args := m.Called(ctx, ownerID, id)
	if sess, ok := args.Get(0).(*session.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error {
	args := m.Called(ctx, ownerID, id)
	return runDelete(ctx, args, beforeCommit)
}

// TakeRepository is a mock for take.Repository.
type TakeRepository struct {
	mock.Mock
}

func (m *TakeRepository) Create(ctx context.Context, ownerID string, t *take.Take) error {
	args := m.Called(ctx, ownerID, t)
	return args.Error(0)
}

func (m *TakeRepository) Get(ctx context.Context, ownerID, id string) (*take.Take, error) {
	args := m.Called(ctx, ownerID, id)
	if t, ok := args.Get(0).(*take.Take); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TakeRepository) Update(ctx context.Context, ownerID string, t *take.Take) error {
	args := m.Called(ctx, ownerID, t)
	return args.Error(0)
}

func (m *TakeRepository) Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error {
	args := m.Called(ctx, ownerID, id)
	return runDelete(ctx, args, beforeCommit)
}

// runDelete emulates a transactional delete. Return values are
// (lookupErr error, fileURLs []string, commitErr error): a lookup error skips
// the hook, a hook error is returned as-is, and commitErr is returned after a
// successful hook.
func runDelete(ctx context.Context, args mock.Arguments, beforeCommit take.BeforeCommit) error {
	if err := args.Error(0); err != nil {
		return err
	}
	var urls []string
	if len(args) > 1 {
		urls, _ = args.Get(1).([]string)
	}
	if beforeCommit != nil {
		if err := beforeCommit(ctx, urls); err != nil {
			return err
		}
	}
	if len(args) > 2 {
		return args.Error(2)
	}
	return nil
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, ownerID string, entry *activity.Entry) error {
	args := m.Called(ctx, ownerID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, ownerID string, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, ownerID, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// FileStore is a mock for the take file store.
type FileStore struct {
	mock.Mock
}

func (m *FileStore) Exists(ctx context.Context, url string) (bool, error) {
	args := m.Called(ctx, url)
	return args.Bool(0), args.Error(1)
}

func (m *FileStore) Remove(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *FileStore) Trash(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *FileStore) Restore(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *FileStore) Purge(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// UploadRepository is a mock for upload.Repository and take.UploadRepository.
type UploadRepository struct {
	mock.Mock
}

func (m *UploadRepository) Create(ctx context.Context, f *upload.File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *UploadRepository) Owner(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *UploadRepository) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
