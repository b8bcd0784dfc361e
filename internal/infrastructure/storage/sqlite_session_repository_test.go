package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ball-tracker/internal/domain/entity"
)

func newTestSQLiteRepo(t *testing.T) *SQLiteSessionRepository {
	t.Helper()

	repo, err := NewSQLiteSessionRepository(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func TestSQLiteSessionRepository_SaveAndList(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	session := entity.NewTrackingSession("s1", "Tracker")
	session.AddSample(3)
	session.AddSample(4)
	session.Finish()

	require.NoError(t, repo.Save(ctx, session))

	sessions, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	got := sessions[0]
	require.Equal(t, "s1", got.ID)
	require.Equal(t, "Tracker", got.ClientName)
	require.Equal(t, 2, got.Samples)
	require.InDelta(t, 4.0, got.LastError, 1e-9)
	require.InDelta(t, 3.5, got.MeanError, 1e-9)
	require.InDelta(t, 4.0, got.MaxError, 1e-9)
	require.WithinDuration(t, session.FinishedAt, got.FinishedAt, time.Second)
}

func TestSQLiteSessionRepository_SaveIsIdempotent(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	session := entity.NewTrackingSession("s1", "Tracker")
	session.Finish()

	require.NoError(t, repo.Save(ctx, session))
	require.NoError(t, repo.Save(ctx, session))

	sessions, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
}

func TestSQLiteSessionRepository_ListOrder(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	old := entity.NewTrackingSession("old", "")
	old.FinishedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, old))

	fresh := entity.NewTrackingSession("fresh", "")
	fresh.FinishedAt = time.Now().UTC()
	require.NoError(t, repo.Save(ctx, fresh))

	sessions, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "fresh", sessions[0].ID)
}
