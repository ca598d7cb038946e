package timer

import (
	"sync"
	"time"
)

// Scope groups the handles owned by one component so they can be released
// together. Close cancels every handle still pending; scheduling through a
// closed scope is a no-op that returns nil.
type Scope struct {
	mu      sync.Mutex
	s       *Scheduler
	handles []*Handle
	closed  bool
}

// NewScope binds a scope to a scheduler.
func NewScope(s *Scheduler) *Scope {
	return &Scope{s: s}
}

// After schedules fn through the scope.
func (sc *Scope) After(d time.Duration, fn func()) *Handle {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed || sc.s == nil {
		return nil
	}
	sc.compactLocked()
	h := sc.s.After(d, fn)
	sc.handles = append(sc.handles, h)
	return h
}

// Close cancels pending handles. Idempotent.
func (sc *Scope) Close() {
	sc.mu.Lock()
	handles := sc.handles
	sc.handles = nil
	sc.closed = true
	sc.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}

// Len returns the number of handles still pending.
func (sc *Scope) Len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.compactLocked()
	return len(sc.handles)
}

func (sc *Scope) compactLocked() {
	live := sc.handles[:0]
	for _, h := range sc.handles {
		if h.Pending() {
			live = append(live, h)
		}
	}
	clear(sc.handles[len(live):])
	sc.handles = live
}
