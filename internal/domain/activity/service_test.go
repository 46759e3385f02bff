package activity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_RecentDefaultsLimit(t *testing.T) {
	ctx := context.Background()
	ownerID := "user1"

	repo := &mocks.ActivityRepository{}
	repo.On("List", ctx, ownerID, activity.ListOptions{ProjectID: "proj1", Limit: activity.DefaultLimit}).
		Return([]activity.Entry(nil), nil)

	svc := activity.NewService(repo, nil)
	entries, err := svc.Recent(ctx, ownerID, activity.ListOptions{ProjectID: "proj1"})
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
	repo.AssertExpectations(t)
}

func TestActivityService_RecentClampsLimit(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ActivityRepository{}
	repo.On("List", ctx, "user1", activity.ListOptions{Limit: activity.MaxLimit}).
		Return([]activity.Entry{{ID: 1, Type: activity.TypeTakeCreated}}, nil)

	svc := activity.NewService(repo, nil)
	entries, err := svc.Recent(ctx, "user1", activity.ListOptions{Limit: 10_000})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestActivityService_RecentRejectsUnknownType(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	bogus := activity.Type("record_created")
	_, err := svc.Recent(context.Background(), "user1", activity.ListOptions{Type: &bogus})
	require.ErrorIs(t, err, activity.ErrInvalidInput)
}

func TestRecord_SwallowsWriteFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, "user1", mock.MatchedBy(func(e *activity.Entry) bool {
		return e.Type == activity.TypeProjectCreated && !e.CreatedAt.IsZero()
	})).Return(errors.New("disk full"))

	require.NotPanics(t, func() {
		activity.Record(ctx, repo, nil, "user1", &activity.Entry{
			ProjectID: "proj1",
			Type:      activity.TypeProjectCreated,
			Summary:   "Created project",
		})
	})
	repo.AssertExpectations(t)
}
