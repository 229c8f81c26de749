package bestscore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hanoi/internal/db"
)

func implementations(t *testing.T) map[string]Store {
	sqlDB, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "best.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLStore(sqlDB),
	}
}

func TestStore_RecordOnlyLowers(t *testing.T) {
	for name, st := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := st.Get(ctx, "dev-1", 3)
			require.NoError(t, err)
			assert.False(t, ok, "no best yet")

			steps := []struct {
				moves        int
				wantImproved bool
				wantBest     int
			}{
				{12, true, 12},
				{15, false, 12},
				{12, false, 12},
				{7, true, 7},
				{9, false, 7},
			}
			for _, s := range steps {
				improved, err := st.Record(ctx, "dev-1", 3, s.moves)
				require.NoError(t, err)
				assert.Equal(t, s.wantImproved, improved, "moves=%d", s.moves)

				best, ok, err := st.Get(ctx, "dev-1", 3)
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, s.wantBest, best)
			}
		})
	}
}

func TestStore_KeyedByOwnerAndLevel(t *testing.T) {
	for name, st := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := st.Record(ctx, "a", 3, 7)
			require.NoError(t, err)
			_, err = st.Record(ctx, "a", 4, 20)
			require.NoError(t, err)
			_, err = st.Record(ctx, "b", 3, 30)
			require.NoError(t, err)

			all, err := st.All(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, map[int]int{3: 7, 4: 20}, all)

			best, ok, err := st.Get(ctx, "b", 3)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 30, best)

			_, ok, err = st.Get(ctx, "b", 4)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_RejectsNonPositive(t *testing.T) {
	for name, st := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Record(context.Background(), "a", 3, 0)
			assert.ErrorIs(t, err, ErrInvalidMoves)
		})
	}
}
