// Package history records solved games ("games" table) for per-owner
// listings and stats.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
)

// Game is one solved puzzle.
type Game struct {
	ID         string    `json:"id"`
	Owner      string    `json:"-"`
	Level      int       `json:"level"`
	Moves      int       `json:"moves"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Summary aggregates an owner's solved games.
type Summary struct {
	Solved int `json:"solved"`
	Moves  int `json:"moves"` // total moves across solved games
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Add inserts g; a game id that is already recorded is ignored.
func (s *Store) Add(ctx context.Context, g Game) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO games (id, owner_id, level, moves, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.Owner, g.Level, g.Moves,
		g.StartedAt.UTC().Format(time.RFC3339), g.FinishedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Recent lists owner's games, newest first.
func (s *Store) Recent(ctx context.Context, owner string, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, level, moves, started_at, finished_at
		FROM games WHERE owner_id=?
		ORDER BY finished_at DESC, rowid DESC
		LIMIT ?`, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Game{}
	for rows.Next() {
		g := Game{Owner: owner}
		var started, finished string
		if err := rows.Scan(&g.ID, &g.Level, &g.Moves, &started, &finished); err != nil {
			return nil, err
		}
		g.StartedAt = parseTime(g.ID, started)
		g.FinishedAt = parseTime(g.ID, finished)
		out = append(out, g)
	}
	return out, rows.Err()
}

// Summarize counts owner's solved games.
func (s *Store) Summarize(ctx context.Context, owner string) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(moves), 0) FROM games WHERE owner_id=?`, owner,
	).Scan(&sum.Solved, &sum.Moves)
	return sum, err
}

// Claim moves every game of from onto to (guest history joining an account).
func (s *Store) Claim(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `UPDATE games SET owner_id=? WHERE owner_id=?`, to, from)
	return err
}

// parseTime reads a stored RFC3339 timestamp. A bad value is logged and
// reads as the zero time so the listing still works.
func parseTime(id, s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("history: bad timestamp")
	}
	return t
}
