package timer

import (
	"container/heap"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/outpost/internal/core/observability/log"
)

// Scheduler runs callbacks once after a delay.
//
// Callbacks never run on a background goroutine. The owner of the frame loop
// calls RunDue once per tick, so due callbacks execute on the loop and may
// mutate entity state without locking. After, AfterKeyed and Cancel are safe
// to call from any goroutine.
type Scheduler struct {
	mu     sync.Mutex
	clock  Clock
	queue  taskHeap
	keyed  map[string]*task
	seq    uint64
	report func(error)
	logger log.Log

	fired atomic.Uint64
}

type task struct {
	at        time.Time
	seq       uint64
	key       string
	fn        func()
	index     int
	cancelled atomic.Bool
	done      atomic.Bool
}

// Handle is the cancellation handle of a scheduled callback.
type Handle struct {
	t *task
	s *Scheduler
}

// Cancel prevents the callback from running. It reports whether the callback
// was still pending. Safe on a nil handle.
func (h *Handle) Cancel() bool {
	if h == nil || h.t == nil {
		return false
	}
	if h.t.done.Load() || !h.t.cancelled.CompareAndSwap(false, true) {
		return false
	}
	h.s.forget(h.t)
	return true
}

// Pending reports whether the callback has neither run nor been cancelled.
func (h *Handle) Pending() bool {
	return h != nil && h.t != nil && !h.t.done.Load() && !h.t.cancelled.Load()
}

// Due returns the time the callback is scheduled for.
func (h *Handle) Due() time.Time {
	if h == nil || h.t == nil {
		return time.Time{}
	}
	return h.t.at
}

type Option func(*Scheduler)

// WithReporter routes panics raised by callbacks to report.
func WithReporter(report func(error)) Option {
	return func(s *Scheduler) { s.report = report }
}

func WithLogger(l log.Log) Option {
	return func(s *Scheduler) { s.logger = log.OrNop(l) }
}

// NewScheduler creates a scheduler reading time from clock.
func NewScheduler(clock Clock, opts ...Option) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	s := &Scheduler{
		clock:  clock,
		keyed:  make(map[string]*task),
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() Clock { return s.clock }

// After schedules fn to run once, no earlier than d from now.
func (s *Scheduler) After(d time.Duration, fn func()) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushLocked("", d, fn)
}

// AfterKeyed schedules fn under key, cancelling any callback still pending
// under the same key. Used for effects whose duration restarts on re-apply.
func (s *Scheduler) AfterKeyed(key string, d time.Duration, fn func()) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.keyed[key]; ok {
		prev.cancelled.Store(true)
		delete(s.keyed, key)
	}
	return s.pushLocked(key, d, fn)
}

func (s *Scheduler) pushLocked(key string, d time.Duration, fn func()) *Handle {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &task{at: s.clock.Now().Add(d), seq: s.seq, key: key, fn: fn}
	heap.Push(&s.queue, t)
	if key != "" {
		s.keyed[key] = t
	}
	return &Handle{t: t, s: s}
}

// RunDue executes every callback whose deadline has passed, in deadline
// order, and returns how many ran. Callbacks scheduled by a running callback
// with zero delay run on the next call, not this one.
func (s *Scheduler) RunDue() int {
	now := s.clock.Now()

	s.mu.Lock()
	var due []*task
	for s.queue.Len() > 0 && !s.queue[0].at.After(now) {
		t := heap.Pop(&s.queue).(*task)
		if t.key != "" && s.keyed[t.key] == t {
			delete(s.keyed, t.key)
		}
		if t.cancelled.Load() {
			continue
		}
		due = append(due, t)
	}
	s.mu.Unlock()

	ran := 0
	for _, t := range due {
		if t.cancelled.Load() {
			// cancelled by an earlier callback in this batch
			continue
		}
		t.done.Store(true)
		s.run(t)
		ran++
	}
	s.fired.Add(uint64(ran))
	return ran
}

func (s *Scheduler) run(t *task) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("timed effect panicked: %v", r)
			s.logger.Error("timed effect failed", log.Error(err))
			if s.report != nil {
				s.report(err)
			}
		}
	}()
	t.fn()
}

// Next returns the earliest pending deadline.
func (s *Scheduler) Next() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.queue.Len() > 0 {
		if !s.queue[0].cancelled.Load() {
			return s.queue[0].at, true
		}
		heap.Pop(&s.queue)
	}
	return time.Time{}, false
}

// Pending returns the number of callbacks that are still scheduled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.queue {
		if !t.cancelled.Load() {
			n++
		}
	}
	return n
}

// Fired returns the total number of callbacks executed.
func (s *Scheduler) Fired() uint64 { return s.fired.Load() }

// Clear cancels everything. Called on session teardown.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.queue {
		t.cancelled.Store(true)
	}
	s.queue = s.queue[:0]
	clear(s.keyed)
}

func (s *Scheduler) forget(t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.key != "" && s.keyed[t.key] == t {
		delete(s.keyed, t.key)
	}
	if t.index >= 0 && t.index < s.queue.Len() && s.queue[t.index] == t {
		heap.Remove(&s.queue, t.index)
	}
}

// taskHeap orders by deadline, then by scheduling order.
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
