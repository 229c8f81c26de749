// internal/bestscore/bestscore.go
//
// Best (lowest) completed move count per owner and difficulty level.
//
// The owner is whoever the record belongs to: a signed-in account id, the
// anonymous device cookie of a guest, or a fixed key for the terminal client.
// A missing record is the normal "no best yet" state, not an error.
//
// Record only ever lowers a stored value; see puzzle.ImprovesBest.

package bestscore

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/hanoi/internal/puzzle"
)

var ErrInvalidMoves = errors.New("move count must be positive")

// Store persists best scores.
type Store interface {
	// Get returns the best for (owner, level); ok is false when there is none.
	Get(ctx context.Context, owner string, level int) (best int, ok bool, err error)

	// Record stores moves if it beats the current best and reports whether it did.
	Record(ctx context.Context, owner string, level, moves int) (improved bool, err error)

	// All returns every level's best for owner.
	All(ctx context.Context, owner string) (map[int]int, error)
}

// SQLStore is the SQLite-backed Store ("best_scores" table).
type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Get(ctx context.Context, owner string, level int) (int, bool, error) {
	var best int
	err := s.db.QueryRowContext(ctx,
		`SELECT moves FROM best_scores WHERE owner_id=? AND level=?`, owner, level,
	).Scan(&best)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return best, true, nil
}

// Record upserts in a single statement; the WHERE on the conflict branch
// keeps a better existing value.
func (s *SQLStore) Record(ctx context.Context, owner string, level, moves int) (bool, error) {
	if moves < 1 {
		return false, ErrInvalidMoves
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO best_scores (owner_id, level, moves, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id, level) DO UPDATE
			SET moves = excluded.moves, updated_at = excluded.updated_at
			WHERE excluded.moves < best_scores.moves`,
		owner, level, moves, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) All(ctx context.Context, owner string) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, moves FROM best_scores WHERE owner_id=? ORDER BY level`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int]int{}
	for rows.Next() {
		var level, moves int
		if err := rows.Scan(&level, &moves); err != nil {
			return nil, err
		}
		out[level] = moves
	}
	return out, rows.Err()
}

type key struct {
	owner string
	level int
}

// memory is an in-process Store.
type memory struct {
	mu   sync.RWMutex
	best map[key]int
}

// NewMemoryStore constructs an in-memory Store. State is lost on restart.
func NewMemoryStore() Store {
	return &memory{best: make(map[key]int)}
}

func (m *memory) Get(ctx context.Context, owner string, level int) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.best[key{owner, level}]
	return b, ok, nil
}

func (m *memory) Record(ctx context.Context, owner string, level, moves int) (bool, error) {
	if moves < 1 {
		return false, ErrInvalidMoves
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{owner, level}
	b, ok := m.best[k]
	if !puzzle.ImprovesBest(b, ok, moves) {
		return false, nil
	}
	m.best[k] = moves
	return true, nil
}

func (m *memory) All(ctx context.Context, owner string) (map[int]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[int]int{}
	for k, v := range m.best {
		if k.owner == owner {
			out[k.level] = v
		}
	}
	return out, nil
}
