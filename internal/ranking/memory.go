package ranking

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a process-local Store, used by tests and by servers started
// without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	seq     int64
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Submit(ctx context.Context, e Entry) (Entry, error) {
	e, err := prepare(e, time.Now())
	if err != nil {
		return e, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e.ID = m.seq
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *MemoryStore) Top(ctx context.Context, level, limit int) ([]Entry, error) {
	limit = limitOrDefault(limit)
	m.mu.RLock()
	out := []Entry{}
	for _, e := range m.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()

	// entries are appended in ID order, so a stable sort keeps ties by submission
	sort.SliceStable(out, func(i, j int) bool { return out[i].Moves < out[j].Moves })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
