// Package resource loads assets in bounded, time-boxed batches so scene setup
// can poll progress between frames.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"
	"time"

	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/pkg/concurrent"
)

var ErrNotLoaded = errors.New("asset not loaded")

// Loader reads one asset.
type Loader func(ctx context.Context, path string) ([]byte, error)

// FSLoader reads assets from fsys.
func FSLoader(fsys fs.FS) Loader {
	return func(ctx context.Context, path string) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fs.ReadFile(fsys, path)
	}
}

type Option func(*Service)

// WithParallelism bounds concurrent loads per batch.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

func WithLogger(l log.Log) Option {
	return func(s *Service) { s.logger = log.OrNop(l) }
}

// Service keeps a queue of requested assets and the set already loaded.
type Service struct {
	mu     sync.Mutex
	queue  []string
	assets map[string][]byte
	failed int

	load        Loader
	parallelism int
	logger      log.Log
}

func NewService(load Loader, opts ...Option) *Service {
	s := &Service{
		assets:      make(map[string][]byte),
		load:        load,
		parallelism: 4,
		logger:      log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.Component("resource"))
	return s
}

// Load queues paths that are neither loaded nor queued.
func (s *Service) Load(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		if _, ok := s.assets[p]; ok || slices.Contains(s.queue, p) {
			continue
		}
		s.queue = append(s.queue, p)
	}
}

// LoadForMillis loads queued assets in batches until the queue is empty or
// the budget is spent, and reports whether the queue is empty. Failed assets
// are dropped from the queue and their errors joined.
func (s *Service) LoadForMillis(ctx context.Context, ms int64) (bool, error) {
	deadline := time.Now().Add(time.Duration(ms) * time.Millisecond)
	var errs []error
	for {
		batch := s.take()
		if len(batch) == 0 {
			return true, errors.Join(errs...)
		}

		type result struct {
			data []byte
			err  error
		}
		results, _ := concurrent.Map(ctx, batch, s.parallelism, func(ctx context.Context, p string) (result, error) {
			data, err := s.load(ctx, p)
			return result{data: data, err: err}, nil
		})

		s.mu.Lock()
		for i, p := range batch {
			if r := results[i]; r.err != nil {
				s.failed++
				errs = append(errs, fmt.Errorf("load %s: %w", p, r.err))
				continue
			}
			s.assets[p] = results[i].data
		}
		s.mu.Unlock()

		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			return s.Done(), errors.Join(errs...)
		}
		if !time.Now().Before(deadline) {
			return s.Done(), errors.Join(errs...)
		}
	}
}

// FinishLoading blocks until the queue is drained.
func (s *Service) FinishLoading(ctx context.Context) error {
	for {
		done, err := s.LoadForMillis(ctx, 50)
		if err != nil {
			s.logger.Warn("asset load failed", log.Error(err))
			return err
		}
		if done {
			return nil
		}
	}
}

func (s *Service) take() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(len(s.queue), s.parallelism)
	batch := slices.Clone(s.queue[:n])
	s.queue = s.queue[n:]
	return batch
}

// Done reports whether nothing is queued.
func (s *Service) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) == 0
}

// Progress is the loaded share of everything requested, 0..100.
func (s *Service) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.assets) + len(s.queue)
	if total == 0 {
		return 100
	}
	return len(s.assets) * 100 / total
}

// Asset returns a loaded asset.
func (s *Service) Asset(path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.assets[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotLoaded)
	}
	return data, nil
}

// Loaded reports whether path is loaded.
func (s *Service) Loaded(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.assets[path]
	return ok
}

// Unload forgets loaded or queued paths.
func (s *Service) Unload(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.assets, p)
		if i := slices.Index(s.queue, p); i >= 0 {
			s.queue = slices.Delete(s.queue, i, i+1)
		}
	}
}

// Failed returns how many assets failed to load.
func (s *Service) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}
