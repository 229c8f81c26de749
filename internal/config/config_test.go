package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("NODE_ENV", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8}, cfg.Game.Levels)
	assert.Equal(t, 4, cfg.Game.DefaultLevel)
	assert.Equal(t, 10, cfg.Game.RankingLimit)
	assert.Equal(t, 2*time.Second, cfg.Game.FlashDuration())
	assert.Equal(t, 300*time.Millisecond, cfg.Game.WinDelay())
	assert.False(t, cfg.Production)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hanoi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
dbPath: /tmp/x.db
game:
  levels: [3, 5, 7]
  defaultLevel: 5
  flashMs: 1500
  winDelayMs: 100
  rankingLimit: 5
`), 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret-for-tests")
	t.Setenv("JWT_EXPIRES_DAYS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, []int{3, 5, 7}, cfg.Game.Levels)
	assert.Equal(t, 5, cfg.Game.DefaultLevel)
	assert.Equal(t, 1500*time.Millisecond, cfg.Game.FlashDuration())
	assert.Equal(t, 5, cfg.Game.RankingLimit)
	assert.Equal(t, 3, cfg.JWTExpiresDays)
	assert.True(t, cfg.Production)
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("JWT_SECRET", "dev_secret_change_me")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("JWT_SECRET", "s3cret-for-tests")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3cret-for-tests", cfg.JWTSecret)
}

func TestLoad_RejectsBadLevels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game:\n  levels: [3, 0]\n  defaultLevel: 3\n"), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	g := Default().Game
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 4, false},
		{"3", 3, false},
		{" 8 ", 8, false},
		{"0", 0, true},
		{"-4", 0, true},
		{"abc", 0, true},
		{"4.5", 0, true},
		{"9", 0, true},
	}
	for _, tc := range cases {
		got, err := g.ParseLevel(tc.raw)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidLevel, "raw=%q", tc.raw)
			continue
		}
		require.NoError(t, err, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestNextPrevWrap(t *testing.T) {
	g := Default().Game
	assert.Equal(t, 5, g.Next(4))
	assert.Equal(t, 3, g.Next(8))
	assert.Equal(t, 8, g.Prev(3))
	assert.Equal(t, 4, g.Next(42))
}
