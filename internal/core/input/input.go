// Package input routes key events to prioritised handlers.
package input

import (
	"slices"
	"sync"

	"github.com/zeusync/outpost/internal/core/observability/log"
)

// Key is a keyboard key code.
type Key uint16

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyE
	KeyQ
	KeySpace
	KeyEscape
	KeyEnter
	KeyG
	KeyC
	KeyV
	KeyB
)

// Priorities used by the built-in handlers.
const (
	PriorityDefault  = 10
	PriorityOverride = 100
)

// Handler receives key events. Returning true stops propagation.
type Handler interface {
	Priority() int
	KeyDown(k Key) bool
	KeyUp(k Key) bool
}

// Service dispatches key events to registered handlers in descending
// priority. Handlers with equal priority keep registration order.
type Service struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   log.Log
}

func NewService(logger log.Log) *Service {
	return &Service{logger: log.OrNop(logger).With(log.Component("input"))}
}

// Register adds h. Registering the same handler twice is a no-op.
func (s *Service) Register(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.handlers, h) {
		return
	}
	next := append(slices.Clone(s.handlers), h)
	slices.SortStableFunc(next, func(a, b Handler) int { return b.Priority() - a.Priority() })
	s.handlers = next
}

// Unregister removes h.
func (s *Service) Unregister(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.handlers, h); i >= 0 {
		s.handlers = slices.Delete(slices.Clone(s.handlers), i, i+1)
	}
}

// Len returns the number of registered handlers.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers)
}

// KeyDown dispatches a press and reports whether a handler consumed it.
func (s *Service) KeyDown(k Key) bool {
	return s.dispatch(func(h Handler) bool { return h.KeyDown(k) })
}

// KeyUp dispatches a release and reports whether a handler consumed it.
func (s *Service) KeyUp(k Key) bool {
	return s.dispatch(func(h Handler) bool { return h.KeyUp(k) })
}

func (s *Service) dispatch(fn func(Handler) bool) bool {
	s.mu.RLock()
	handlers := s.handlers
	s.mu.RUnlock()

	for _, h := range handlers {
		if fn(h) {
			return true
		}
	}
	return false
}

// Override swallows every key while registered. Modal windows register one
// to block gameplay input.
type Override struct {
	priority int
}

func NewOverride() *Override { return &Override{priority: PriorityOverride} }

func (o *Override) Priority() int    { return o.priority }
func (o *Override) KeyDown(Key) bool { return true }
func (o *Override) KeyUp(Key) bool   { return true }
