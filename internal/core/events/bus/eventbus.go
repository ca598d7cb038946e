package bus

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/pkg/generic"
)

// Bus is a synchronous publish/subscribe dispatcher scoped to one owner
// (an Entity or the global game state store).
//
// Trigger invokes every active listener registered for the name, in
// registration order, on the caller's goroutine. A listener may trigger the
// same event again; there is no re-entrancy guard and no lock is held while
// listeners run, so recursion cannot deadlock.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]*subscription
	observers []Observer
	logger    log.Log
	triggers  atomic.Uint64
}

type subscription struct {
	id       string
	event    string
	listener Listener
	active   atomic.Bool
	bus      *Bus
}

func (s *subscription) ID() string     { return s.id }
func (s *subscription) Event() string  { return s.event }
func (s *subscription) IsActive() bool { return s.active.Load() }
func (s *subscription) Cancel() {
	if s.active.CompareAndSwap(true, false) {
		s.bus.remove(s)
	}
}

var snapshots = generic.NewPool(func() *[]*subscription {
	s := make([]*subscription, 0, 8)
	return &s
})

type Option func(*Bus)

// WithLogger sets the logger used to report payload mismatches.
func WithLogger(l log.Log) Option {
	return func(b *Bus) { b.logger = log.OrNop(l) }
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		listeners: make(map[string][]*subscription),
		logger:    log.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddListener registers l for event and returns its subscription handle.
func (b *Bus) AddListener(event string, l Listener) Subscription {
	s := &subscription{id: uuid.NewString(), event: event, listener: l, bus: b}
	s.active.Store(true)

	b.mu.Lock()
	b.listeners[event] = append(b.listeners[event], s)
	b.mu.Unlock()
	return s
}

// RemoveListener cancels sub. It is safe to call with nil.
func (b *Bus) RemoveListener(sub Subscription) {
	if sub == nil {
		return
	}
	sub.Cancel()
}

// Trigger delivers args to every listener of event. Zero listeners is a no-op.
func (b *Bus) Trigger(event string, args ...any) {
	b.triggers.Add(1)

	buf := snapshots.Get()
	defer func() {
		clear(*buf)
		*buf = (*buf)[:0]
		snapshots.Put(buf)
	}()

	b.mu.RLock()
	*buf = append(*buf, b.listeners[event]...)
	observers := b.observers
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnTrigger(event, len(*buf), args)
	}

	for _, s := range *buf {
		if !s.active.Load() {
			continue
		}
		s.listener(args...)
	}
}

// Count returns the number of active listeners for event.
func (b *Bus) Count(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[event])
}

// Triggered returns how many times Trigger has been called on this bus.
func (b *Bus) Triggered() uint64 {
	return b.triggers.Load()
}

// AddObserver registers an observer for every Trigger.
func (b *Bus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers = append(append([]Observer(nil), b.observers...), obs)
	b.mu.Unlock()
}

// Clear deactivates and drops every listener. Used on owner disposal.
func (b *Bus) Clear() {
	b.mu.Lock()
	old := b.listeners
	b.listeners = make(map[string][]*subscription)
	b.observers = nil
	b.mu.Unlock()

	for _, subs := range old {
		for _, s := range subs {
			s.active.Store(false)
		}
	}
}

func (b *Bus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.listeners[s.event]
	for i, cur := range subs {
		if cur == s {
			// copy so in-flight snapshots keep their view
			next := make([]*subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.listeners, s.event)
			} else {
				b.listeners[s.event] = next
			}
			return
		}
	}
}

func (b *Bus) mismatch(event string, idx int, want string, args []any) {
	got := "missing"
	if idx < len(args) {
		got = fmt.Sprintf("%T", args[idx])
	}
	b.logger.Warn("event payload mismatch",
		log.String("event", event),
		log.Int("arg", idx),
		log.String("want", want),
		log.String("got", got))
}
