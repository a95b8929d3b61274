package dialog

import "sync"

// sentTracker remembers which calls already received the SMS link so a call
// never texts the same person twice. Bounded: beyond the cap the oldest entry
// is evicted.
type sentTracker struct {
	mu    sync.Mutex
	limit int
	seen  map[string]struct{}
	order []string
}

func newSentTracker(limit int) *sentTracker {
	if limit <= 0 {
		limit = 512
	}
	return &sentTracker{
		limit: limit,
		seen:  make(map[string]struct{}, limit),
	}
}

// markSent records the call id and reports whether this was the first send
// for it.
func (t *sentTracker) markSent(callSID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[callSID]; ok {
		return false
	}
	t.seen[callSID] = struct{}{}
	t.order = append(t.order, callSID)
	if len(t.order) > t.limit {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.seen, oldest)
	}
	return true
}
