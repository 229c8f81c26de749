package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hanoi/internal/config"
	"github.com/robalobadob/hanoi/internal/db"
	"github.com/robalobadob/hanoi/internal/ranking"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HANOI_CONFIG", "")
	t.Setenv("NODE_ENV", "")
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSolvePrintsOptimalMoves(t *testing.T) {
	out, err := run(t, "solve", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "1: 1 -> 3", lines[0])
	assert.Equal(t, "7: 1 -> 3", lines[6])
	assert.Equal(t, "3 disks solved in 7 moves", lines[7])
}

func TestSolveQuietAndJSON(t *testing.T) {
	out, err := run(t, "solve", "-q", "5")
	require.NoError(t, err)
	assert.Equal(t, "5 disks solved in 31 moves\n", out)

	out, err = run(t, "solve", "--json", "4")
	require.NoError(t, err)
	var res struct {
		Disks    int `json:"disks"`
		Moves    int `json:"moves"`
		Solution []struct {
			From int `json:"from"`
			To   int `json:"to"`
		} `json:"solution"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 4, res.Disks)
	assert.Equal(t, 15, res.Moves)
	assert.Len(t, res.Solution, 15)
}

func TestSolveRejectsBadDiskCounts(t *testing.T) {
	for _, arg := range []string{"0", "-2", "abc", "21"} {
		// "--" keeps cobra from reading -2 as a flag
		_, err := run(t, "solve", "--", arg)
		assert.ErrorIs(t, err, config.ErrInvalidLevel, arg)
	}
	_, err := run(t, "solve")
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hanoi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game:\n  levels: [3, 5]\n  defaultLevel: 9\n"), 0o644))
	_, err := run(t, "--config", path, "solve", "3")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "solve", "3")
	assert.Error(t, err)
}

func TestPlayModelChecksLevel(t *testing.T) {
	o := &options{cfg: config.Default()}
	f := playFlags{dbPath: filepath.Join(t.TempDir(), "local.db"), level: 42}
	_, _, err := f.model(o)
	assert.ErrorIs(t, err, config.ErrInvalidLevel)

	f.level = 5
	f.server = "not a url"
	_, _, err = f.model(o)
	assert.Error(t, err)
}

func TestPlayModelOpensLocalDB(t *testing.T) {
	dir := t.TempDir()
	o := &options{cfg: config.Default()}
	f := playFlags{
		dbPath:  filepath.Join(dir, "nested", "local.db"),
		logFile: filepath.Join(dir, "play.log"),
		server:  "http://localhost:5175",
		level:   5,
	}
	m, cleanup, err := f.model(o)
	require.NoError(t, err)
	defer cleanup()
	assert.Contains(t, m.View(), "Disks: 5")
	assert.FileExists(t, f.dbPath)
	assert.FileExists(t, f.logFile)
}

func TestOpenRanking(t *testing.T) {
	sqlDB, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "r.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	cfg := config.Default()
	r, closeRank, err := openRanking(cfg, sqlDB)
	require.NoError(t, err)
	defer closeRank()
	assert.IsType(t, &ranking.SQLStore{}, r)

	cfg.RankingDSN = "mysql://root@localhost/hanoi"
	_, _, err = openRanking(cfg, sqlDB)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
