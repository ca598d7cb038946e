// Package game runs one play session: it owns the service table, drives the
// frame loop and reports every failure raised by timed effects or entities.
package game

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/outpost/internal/core/area"
	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/input"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/physics"
	"github.com/zeusync/outpost/internal/core/resource"
	"github.com/zeusync/outpost/internal/core/services"
	"github.com/zeusync/outpost/internal/core/structures"
	"github.com/zeusync/outpost/internal/core/timer"
	"github.com/zeusync/outpost/internal/telemetry"
)

// Session is a single game session. Tick, EnterArea and every callback
// posted through Post run on one goroutine; Post, KeyDown, KeyUp and Report
// are safe from any goroutine.
type Session struct {
	id     uuid.UUID
	config Config
	logger log.Log

	locator   *services.Locator
	registry  *entity.Registry
	scheduler *timer.Scheduler
	world     *physics.World
	input     *input.Service
	store     *gamestate.Store
	resources *resource.Service
	screens   *Screens
	travel    *PlanetTravel
	feed      *telemetry.Feed
	listener  net.Listener

	inboxMu sync.Mutex
	inbox   []func()

	area *area.GameArea

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	frames  atomic.Uint64
	errors  atomic.Uint64
	lastErr atomic.Value
	running atomic.Bool
	closed  atomic.Bool
}

// reported boxes errors so lastErr always stores one concrete type.
type reported struct{ err error }

// NewSession builds every session service and registers it with a fresh
// locator.
func NewSession(cfg Config, logger log.Log, clock timer.Clock, loader resource.Loader) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	logger = log.OrNop(logger).With(log.Component("session"), log.String("session", id.String()))

	s := &Session{
		id:      id,
		config:  cfg,
		logger:  logger,
		locator: services.NewLocator(logger),
		inbox:   make([]func(), 0, cfg.InboxSize),
	}
	s.registry = entity.NewRegistry(entity.WithReporter(s.Report), entity.WithRegistryLogger(logger))
	s.scheduler = timer.NewScheduler(clock, timer.WithReporter(s.Report), timer.WithLogger(logger))
	s.world = physics.NewWorld(logger)
	s.input = input.NewService(logger)
	s.store = gamestate.New(gamestate.WithClock(clock.Now), gamestate.WithLogger(logger))
	s.resources = resource.NewService(loader,
		resource.WithParallelism(cfg.LoadParallelism),
		resource.WithLogger(logger),
	)
	s.screens = NewScreens(s.store, logger)
	s.travel = NewPlanetTravel(s.screens, s.store, cfg.Planets...)
	s.feed = telemetry.NewFeed(s.store, telemetry.WithLogger(logger))

	s.locator.Register(services.RoleEntity, s.registry)
	s.locator.Register(services.RoleScheduler, s.scheduler)
	s.locator.Register(services.RolePhysics, s.world)
	s.locator.Register(services.RoleInput, s.input)
	s.locator.Register(services.RoleGameState, s.store)
	s.locator.Register(services.RoleResource, s.resources)
	s.locator.Register(services.RoleScreens, services.Screens(s.screens))
	return s, nil
}

func (s *Session) ID() uuid.UUID               { return s.id }
func (s *Session) Config() Config              { return s.config }
func (s *Session) Locator() *services.Locator  { return s.locator }
func (s *Session) Registry() *entity.Registry  { return s.registry }
func (s *Session) Scheduler() *timer.Scheduler { return s.scheduler }
func (s *Session) Store() *gamestate.Store     { return s.store }
func (s *Session) Screens() *Screens           { return s.screens }
func (s *Session) Travel() *PlanetTravel       { return s.travel }
func (s *Session) Feed() *telemetry.Feed       { return s.feed }
func (s *Session) Area() *area.GameArea        { return s.area }
func (s *Session) Frames() uint64              { return s.frames.Load() }
func (s *Session) Errors() uint64              { return s.errors.Load() }
func (s *Session) Running() bool               { return s.running.Load() }

// LastError returns the most recent reported error, if any.
func (s *Session) LastError() error {
	r, _ := s.lastErr.Load().(reported)
	return r.err
}

// Report logs and counts a failure from a timed effect, an entity update or a
// posted callback.
func (s *Session) Report(err error) {
	if err == nil {
		return
	}
	s.errors.Add(1)
	s.lastErr.Store(reported{err})
	s.logger.Error("session error", log.Error(err), log.Uint64("frame", s.frames.Load()))
}

// ServeTelemetryOn makes Run serve the feed on ln instead of
// Config.TelemetryAddr.
func (s *Session) ServeTelemetryOn(ln net.Listener) {
	s.listener = ln
}

// Post queues fn to run at the start of the next tick.
func (s *Session) Post(fn func()) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.inboxMu.Lock()
	s.inbox = append(s.inbox, fn)
	s.inboxMu.Unlock()
	return nil
}

// KeyDown delivers a key press on the next tick.
func (s *Session) KeyDown(k input.Key) error {
	return s.Post(func() { s.input.KeyDown(k) })
}

// KeyUp delivers a key release on the next tick.
func (s *Session) KeyUp(k input.Key) error {
	return s.Post(func() { s.input.KeyUp(k) })
}

func (s *Session) drain() []func() {
	s.inboxMu.Lock()
	defer s.inboxMu.Unlock()
	if len(s.inbox) == 0 {
		return nil
	}
	fns := s.inbox
	s.inbox = make([]func(), 0, cap(fns))
	return fns
}

// Tick advances one frame: posted callbacks, collisions, due timed effects,
// then entity updates and deferred disposals.
func (s *Session) Tick() {
	for _, fn := range s.drain() {
		s.call(fn)
	}
	s.world.Step()
	s.scheduler.RunDue()
	s.registry.Update()
	s.frames.Add(1)
}

func (s *Session) call(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			s.Report(fmt.Errorf("posted callback panicked: %v", rec))
		}
	}()
	fn()
}

// EnterArea replaces the current area with one built from src. On success
// the planet screen for the map is shown and recorded as the current planet.
func (s *Session) EnterArea(ctx context.Context, src area.Source, opts ...area.Option) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.area != nil {
		s.area.Dispose()
		s.area = nil
	}

	a := area.New(s.locator, src, append([]area.Option{area.WithLogger(s.logger)}, opts...)...)
	if err := a.Create(ctx); err != nil {
		return err
	}
	s.area = a

	name := a.Config().MapName
	s.store.Trigger(EventUpdatePlanet, KeyCurrentPlanet, name)
	s.screens.SetPlanet(name)
	s.logger.Info("area entered", log.String("map", name), log.Int("entities", len(a.Entities())))
	return nil
}

// LoadMap enters the area at Config.MapPath, with the tool belt from
// Config.ToolsPath when one is set.
func (s *Session) LoadMap(ctx context.Context) error {
	if s.config.MapPath == "" {
		return ErrNoArea
	}
	var opts []area.Option
	if s.config.ToolsPath != "" {
		tools, err := structures.LoadToolConfigsFile(s.config.ToolsPath)
		if err != nil {
			return fmt.Errorf("load tools: %w", err)
		}
		opts = append(opts, area.WithTools(tools))
	}
	return s.EnterArea(ctx, area.FromFile(s.config.MapPath), opts...)
}

// Run ticks every Config.TickInterval until ctx is done or Close is called.
// The telemetry feed is served alongside when an address or listener is set.
func (s *Session) Run(ctx context.Context) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrSessionRunning
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithCancel(log.WithSession(ctx, s.id.String()))
	done := make(chan struct{})
	defer close(done)
	defer cancel()

	s.runMu.Lock()
	s.cancel, s.done = cancel, done
	s.runMu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.loop(gctx) })
	switch {
	case s.listener != nil:
		g.Go(func() error { return s.feed.ServeListener(gctx, s.listener) })
	case s.config.TelemetryAddr != "":
		g.Go(func() error { return s.feed.Serve(gctx, s.config.TelemetryAddr) })
	}

	s.logger.WithContext(ctx).Info("session running", log.Duration("tick", s.config.TickInterval))
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Session) loop(ctx context.Context) error {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Close stops Run, disposes the area and every entity, cancels pending timed
// effects and clears the locator. It must not be called from the frame loop.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.runMu.Lock()
	cancel, done := s.cancel, s.done
	s.runMu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}

	if s.area != nil {
		s.area.Dispose()
		s.area = nil
	}
	s.registry.Dispose()
	s.scheduler.Clear()
	s.feed.Close()
	s.locator.Clear()

	s.inboxMu.Lock()
	s.inbox = nil
	s.inboxMu.Unlock()

	s.logger.Info("session closed", log.Uint64("frames", s.frames.Load()), log.Uint64("errors", s.errors.Load()))
	return nil
}
