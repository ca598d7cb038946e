package gamestate

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/outpost/internal/core/events/bus"
	"github.com/zeusync/outpost/internal/core/observability/log"
)

// ResourcePrefix namespaces resource counters.
const ResourcePrefix = "resource/"

// EventUpdateResource is fired after every resource counter change with
// (name string, amount int).
const EventUpdateResource = "updateResource"

var ErrResourceType = errors.New("resource value is not an int")

const defaultShardCount = 16

// Change describes one write to the store.
type Change struct {
	Event string
	Key   string
	Value any
	At    time.Time
}

// Store is the shared key/value game state.
//
// Keys are striped over shards by xxhash so that a read-modify-write on one
// key is serialized against every other writer of that key while unrelated
// keys proceed in parallel. Listeners and observers are invoked after the
// shard lock is released.
type Store struct {
	shards []shard
	events *bus.Bus

	obsMu     sync.RWMutex
	observers []func(Change)

	version atomic.Uint64
	now     func() time.Time
	logger  log.Log
}

type shard struct {
	mu   sync.RWMutex
	data map[string]any
}

type Option func(*Store)

// WithShards sets the number of lock stripes.
func WithShards(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.shards = make([]shard, n)
		}
	}
}

// WithClock sets the time source stamped on changes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l log.Log) Option {
	return func(s *Store) { s.logger = log.OrNop(l) }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		shards: make([]shard, defaultShardCount),
		now:    time.Now,
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.shards {
		s.shards[i].data = make(map[string]any)
	}
	s.events = bus.New(bus.WithLogger(s.logger))
	return s
}

func (s *Store) shardFor(key string) *shard {
	return &s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// Put stores value under key, overwriting unconditionally.
func (s *Store) Put(key string, value any) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.data[key] = value
	sh.mu.Unlock()

	s.version.Add(1)
	s.notify(Change{Key: key, Value: value, At: s.now()})
}

// Get retrieves a value. The bool is false when the key is absent.
func (s *Store) Get(key string) (any, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	v, ok := sh.data[key]
	return v, ok
}

// GetInt retrieves an int value.
func (s *Store) GetInt(key string) (int, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

// GetString retrieves a string value.
func (s *Store) GetString(key string) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Has checks if a key exists.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Delete removes a key.
func (s *Store) Delete(key string) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	_, existed := sh.data[key]
	delete(sh.data, key)
	sh.mu.Unlock()

	if existed {
		s.version.Add(1)
		s.notify(Change{Key: key, At: s.now()})
	}
}

// StateData returns a copy of every entry.
func (s *Store) StateData() map[string]any {
	out := make(map[string]any)
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		maps.Copy(out, sh.data)
		sh.mu.RUnlock()
	}
	return out
}

// Resources returns every resource counter keyed by resource name.
func (s *Store) Resources() map[string]int {
	out := make(map[string]int)
	for k, v := range s.StateData() {
		name, ok := strings.CutPrefix(k, ResourcePrefix)
		if !ok {
			continue
		}
		if n, ok := v.(int); ok {
			out[name] = n
		}
	}
	return out
}

// Version increments on every write.
func (s *Store) Version() uint64 { return s.version.Load() }

// Clear removes all data.
func (s *Store) Clear() {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		clear(sh.data)
		sh.mu.Unlock()
	}
	s.version.Add(1)
}

// UpdateResource atomically adds delta to "resource/"+name, treating an
// absent counter as 0, and returns the new amount. Concurrent callers on the
// same name never lose an update. After the write, EventUpdateResource fires
// with (name, amount).
func (s *Store) UpdateResource(name string, delta int) (int, error) {
	key := ResourcePrefix + name
	sh := s.shardFor(key)

	sh.mu.Lock()
	current := 0
	if v, ok := sh.data[key]; ok {
		n, ok := v.(int)
		if !ok {
			sh.mu.Unlock()
			return 0, fmt.Errorf("update %s: %w (got %T)", key, ErrResourceType, v)
		}
		current = n
	}
	amount := current + delta
	sh.data[key] = amount
	sh.mu.Unlock()

	s.version.Add(1)
	s.events.Trigger(EventUpdateResource, name, amount)
	s.notify(Change{Event: EventUpdateResource, Key: key, Value: amount, At: s.now()})
	return amount, nil
}

// Resource returns the amount of a resource, 0 when absent.
func (s *Store) Resource(name string) int {
	n, _ := s.GetInt(ResourcePrefix + name)
	return n
}

// Trigger stores value under key and publishes event with (key, value) to
// the store's listeners.
func (s *Store) Trigger(event, key string, value any) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.data[key] = value
	sh.mu.Unlock()

	s.version.Add(1)
	s.events.Trigger(event, key, value)
	s.notify(Change{Event: event, Key: key, Value: value, At: s.now()})
}

// AddListener subscribes to store-scoped events raised by Trigger and
// UpdateResource.
func (s *Store) AddListener(event string, l bus.Listener) bus.Subscription {
	return s.events.AddListener(event, l)
}

// RemoveListener cancels a subscription.
func (s *Store) RemoveListener(sub bus.Subscription) {
	s.events.RemoveListener(sub)
}

// Observe registers fn to receive every change. Observers may be called from
// any goroutine that writes to the store.
func (s *Store) Observe(fn func(Change)) {
	s.obsMu.Lock()
	s.observers = append(s.observers[:len(s.observers):len(s.observers)], fn)
	s.obsMu.Unlock()
}

func (s *Store) notify(c Change) {
	s.obsMu.RLock()
	observers := s.observers
	s.obsMu.RUnlock()

	for _, fn := range observers {
		fn(c)
	}
}
