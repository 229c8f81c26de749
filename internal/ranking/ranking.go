// internal/ranking/ranking.go
//
// Per-difficulty leaderboard of solved games.
//
// A ranking is independent of the local best score: every submitted game is
// kept, and Top returns the lowest move counts for one level, ascending,
// ties broken by submission order (earlier first).
//
// Player names are free text. They are stored and returned verbatim; it is
// the renderer's job to treat them as text rather than markup.

package ranking

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// Placeholder replaces an empty player name.
	Placeholder = "Anonymous"
	// MaxNameLen caps names, in runes.
	MaxNameLen = 24
	// DefaultLimit is how many entries Top returns when asked for <= 0.
	DefaultLimit = 10
)

var ErrInvalidEntry = errors.New("invalid ranking entry")

// Entry is one submitted score.
type Entry struct {
	ID        int64     `json:"id"` // submission sequence
	Level     int       `json:"level"`
	Name      string    `json:"name"`
	Moves     int       `json:"moves"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists ranking entries.
// Implementations: SQLStore (SQLite), GormStore (Postgres), MemoryStore.
type Store interface {
	// Submit stores e and returns it with ID and CreatedAt filled in.
	Submit(ctx context.Context, e Entry) (Entry, error)

	// Top returns at most limit entries for level, best first.
	Top(ctx context.Context, level, limit int) ([]Entry, error)
}

// NormalizeName trims surrounding whitespace, substitutes Placeholder for an
// empty name and truncates to MaxNameLen runes.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if !utf8.ValidString(name) {
		name = strings.ToValidUTF8(name, "")
	}
	if name == "" {
		return Placeholder
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		name = strings.TrimSpace(string([]rune(name)[:MaxNameLen]))
	}
	return name
}

// prepare validates e and normalizes its name before it is stored.
func prepare(e Entry, now time.Time) (Entry, error) {
	if e.Level < 1 || e.Moves < 1 {
		return e, ErrInvalidEntry
	}
	e.Name = NormalizeName(e.Name)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now.UTC()
	}
	return e, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
