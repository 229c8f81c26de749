package play

import "sync"

// hub fans a session's results out to its subscribers. A subscriber whose
// buffer is full misses that result; the next one carries the full state
// anyway.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan Result
}

// Subscribe returns a channel receiving every Result published for game id
// and a cancel func that closes it.
func (s *Service) Subscribe(id string) (<-chan Result, func()) {
	return s.hub.subscribe(id)
}

func (h *hub) subscribe(id string) (<-chan Result, func()) {
	ch := make(chan Result, 8)
	h.mu.Lock()
	h.next++
	key := h.next
	if h.subs[id] == nil {
		h.subs[id] = make(map[int]chan Result)
	}
	h.subs[id][key] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[id], key)
			if len(h.subs[id]) == 0 {
				delete(h.subs, id)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *hub) publish(id string, r Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[id] {
		select {
		case ch <- r:
		default:
		}
	}
}
