// internal/store/memory.go
//
// In-memory implementation of the session Store.
// Active puzzles live here between clicks; only their outcomes (best
// scores, history, ranking) reach the database.
//
// Characteristics:
//   - Stores Session values keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Idle sessions are dropped by Prune.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/hanoi/internal/puzzle"
)

var ErrNotFound = errors.New("session not found")

// Session is one puzzle being played by one owner.
type Session struct {
	ID        string
	Owner     string
	State     puzzle.State
	StartedAt time.Time
	UpdatedAt time.Time
	Finished  bool // win already recorded (best score, history)
	Ranked    bool // score already submitted to the ranking
}

// Store defines the persistence interface for puzzle sessions.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)

	// Prune removes sessions not updated since before and returns how many.
	Prune(ctx context.Context, before time.Time) int

	// ByOwner lists the ids of owner's sessions.
	ByOwner(ctx context.Context, owner string) []string
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex       // guards sessions map
	sessions map[string]Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]Session)}
}

func (m *memory) Save(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return Session{}, ErrNotFound
}

func (m *memory) Prune(ctx context.Context, before time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *memory) ByOwner(ctx context.Context, owner string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, s := range m.sessions {
		if s.Owner == owner {
			ids = append(ids, id)
		}
	}
	return ids
}
