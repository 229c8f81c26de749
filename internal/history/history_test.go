package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hanoi/internal/db"
)

func newStore(t *testing.T) *Store {
	sqlDB, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewStore(sqlDB)
}

func TestStore_AddRecentSummarize(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, st.Add(ctx, Game{ID: "g1", Owner: "anon", Level: 3, Moves: 7, StartedAt: base, FinishedAt: base.Add(time.Minute)}))
	require.NoError(t, st.Add(ctx, Game{ID: "g2", Owner: "anon", Level: 4, Moves: 20, StartedAt: base, FinishedAt: base.Add(time.Hour)}))
	require.NoError(t, st.Add(ctx, Game{ID: "g3", Owner: "other", Level: 3, Moves: 9, StartedAt: base, FinishedAt: base}))
	// duplicate id is ignored
	require.NoError(t, st.Add(ctx, Game{ID: "g1", Owner: "anon", Level: 3, Moves: 99, StartedAt: base, FinishedAt: base}))

	games, err := st.Recent(ctx, "anon", 10)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "g2", games[0].ID)
	assert.Equal(t, "g1", games[1].ID)
	assert.Equal(t, 7, games[1].Moves)
	assert.True(t, games[1].FinishedAt.Equal(base.Add(time.Minute)))

	sum, err := st.Summarize(ctx, "anon")
	require.NoError(t, err)
	assert.Equal(t, Summary{Solved: 2, Moves: 27}, sum)
}

func TestStore_Claim(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, st.Add(ctx, Game{ID: "g1", Owner: "anon", Level: 3, Moves: 7, StartedAt: now, FinishedAt: now}))

	require.NoError(t, st.Claim(ctx, "anon", "user-1"))

	games, err := st.Recent(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, games, 1)
	games, err = st.Recent(ctx, "anon", 0)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestStore_RecentToleratesBadTimestamps(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO games(id, owner_id, level, moves, started_at, finished_at) VALUES('g1','anon',3,7,'yesterday','2026-01-02T03:04:05Z')`)
	require.NoError(t, err)

	games, err := st.Recent(ctx, "anon", 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.True(t, games[0].StartedAt.IsZero())
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), games[0].FinishedAt.UTC())
}
