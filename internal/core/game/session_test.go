package game

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/outpost/internal/core/area"
	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/input"
	"github.com/zeusync/outpost/internal/core/resource"
	"github.com/zeusync/outpost/internal/core/services"
	"github.com/zeusync/outpost/internal/core/timer"
	"github.com/zeusync/outpost/internal/telemetry"
)

const smallMap = `
mapName: Verdant
terrain:
  width: 40
  height: 30
textures:
  - images/ship.png
entities:
  walls:
    - {x: 3, y: 3}
`

func newSession(t *testing.T, mutate ...func(*Config)) (*Session, *timer.ManualClock) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TickInterval = time.Millisecond
	for _, m := range mutate {
		m(&cfg)
	}
	clock := timer.NewManualClock(time.Unix(0, 0))
	assets := fstest.MapFS{"images/ship.png": {Data: []byte("ship")}}
	s, err := NewSession(cfg, nil, clock, resource.FSLoader(assets))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func TestNewSessionValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = 0
	_, err := NewSession(cfg, nil, timer.SystemClock{}, nil)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.Planets = nil
	_, err = NewSession(cfg, nil, timer.SystemClock{}, nil)
	require.Error(t, err)
}

func TestSessionRegistersServices(t *testing.T) {
	s, _ := newSession(t)

	for _, role := range []services.Role{
		services.RoleEntity, services.RoleScheduler, services.RolePhysics, services.RoleInput,
		services.RoleGameState, services.RoleResource, services.RoleScreens,
	} {
		assert.True(t, s.Locator().Has(role), role.String())
	}
	scr, err := s.Locator().Screens()
	require.NoError(t, err)
	assert.Same(t, s.Screens(), scr)
}

func TestTickOrder(t *testing.T) {
	s, clock := newSession(t)

	var order []string
	e := entity.New(entity.TypeObstacle)
	require.NoError(t, s.Registry().Register(e))

	require.NoError(t, s.Post(func() {
		order = append(order, "posted")
		e.DisposeLater()
	}))
	s.Scheduler().After(time.Second, func() { order = append(order, "timer") })

	s.Tick()
	assert.Equal(t, []string{"posted"}, order)
	assert.True(t, e.IsDisposed())
	assert.Equal(t, 0, s.Registry().Count())

	clock.Advance(time.Second)
	s.Tick()
	assert.Equal(t, []string{"posted", "timer"}, order)
	assert.Equal(t, uint64(2), s.Frames())
}

func TestPostedDuringTickRunsNextFrame(t *testing.T) {
	s, _ := newSession(t)

	ran := 0
	require.NoError(t, s.Post(func() {
		ran++
		_ = s.Post(func() { ran++ })
	}))

	s.Tick()
	assert.Equal(t, 1, ran)
	s.Tick()
	assert.Equal(t, 2, ran)
}

func TestReportCountsPanics(t *testing.T) {
	s, _ := newSession(t)

	s.Scheduler().After(0, func() { panic("effect") })
	require.NoError(t, s.Post(func() { panic("posted") }))

	s.Tick()
	assert.Equal(t, uint64(2), s.Errors())
	require.Error(t, s.LastError())

	s.Report(nil)
	assert.Equal(t, uint64(2), s.Errors())

	s.Report(errors.New("boom"))
	assert.EqualError(t, s.LastError(), "boom")
}

type recorder struct{ downs []input.Key }

func (r *recorder) Priority() int        { return input.PriorityDefault }
func (r *recorder) KeyUp(input.Key) bool { return false }

func (r *recorder) KeyDown(k input.Key) bool {
	r.downs = append(r.downs, k)
	return true
}

func TestKeysArriveOnTick(t *testing.T) {
	s, _ := newSession(t)

	rec := &recorder{}
	in, err := s.Locator().Input()
	require.NoError(t, err)
	in.Register(rec)

	require.NoError(t, s.KeyDown(input.KeyE))
	assert.Empty(t, rec.downs)
	s.Tick()
	assert.Equal(t, []input.Key{input.KeyE}, rec.downs)
}

func TestEnterArea(t *testing.T) {
	s, _ := newSession(t)

	cfg, err := area.LoadYAML(strings.NewReader(smallMap))
	require.NoError(t, err)
	require.NoError(t, s.EnterArea(context.Background(), area.FromConfig(cfg)))

	require.NotNil(t, s.Area())
	screen, planet := s.Screens().Current()
	assert.Equal(t, services.ScreenPlanet, screen)
	assert.Equal(t, "Verdant", planet)

	cur, err := s.Travel().Current()
	require.NoError(t, err)
	assert.Equal(t, "Verdant", cur)

	t.Run("replacing the area disposes the old one", func(t *testing.T) {
		old := s.Area().Entities()
		require.NotEmpty(t, old)
		require.NoError(t, s.EnterArea(context.Background(), area.FromConfig(cfg)))
		for _, e := range old {
			assert.True(t, e.IsDisposed())
		}
	})
}

func TestEnterAreaFailureFallsBack(t *testing.T) {
	s, _ := newSession(t)

	cfg, err := area.LoadYAML(strings.NewReader(smallMap))
	require.NoError(t, err)
	cfg.Textures = append(cfg.Textures, "images/missing.png")

	require.Error(t, s.EnterArea(context.Background(), area.FromConfig(cfg)))
	assert.Nil(t, s.Area())
	screen, _ := s.Screens().Current()
	assert.Equal(t, services.ScreenMainMenu, screen)
}

func TestLoadMapRequiresPath(t *testing.T) {
	s, _ := newSession(t)
	assert.ErrorIs(t, s.LoadMap(context.Background()), ErrNoArea)
}

func TestRunStopsWithContext(t *testing.T) {
	s, _ := newSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Frames() > 2 }, time.Second, time.Millisecond)
	assert.ErrorIs(t, s.Run(context.Background()), ErrSessionRunning)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
	assert.False(t, s.Running())
}

func TestCloseStopsRun(t *testing.T) {
	s, _ := newSession(t)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(context.Background()) }()
	require.Eventually(t, s.Running, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return s.Frames() > 0 }, time.Second, time.Millisecond)

	require.NoError(t, s.Close())
	assert.NoError(t, <-errCh)
	assert.False(t, s.Locator().Has(services.RoleEntity))

	t.Run("closed session rejects work", func(t *testing.T) {
		assert.ErrorIs(t, s.Post(func() {}), ErrSessionClosed)
		assert.ErrorIs(t, s.Run(context.Background()), ErrSessionClosed)
		assert.NoError(t, s.Close())
	})
}

func TestRunServesTelemetry(t *testing.T) {
	s, _ := newSession(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s.ServeTelemetryOn(ln)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	u := url.URL{Scheme: "ws", Host: ln.Addr().String(), Path: telemetry.Path}
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, time.Second, 10*time.Millisecond)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.Feed().Clients() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Post(func() { s.Screens().SetScreen(services.ScreenSpaceMap) }))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var frame telemetry.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, EventUpdateScreen, frame.Event)
	assert.Equal(t, KeyCurrentScreen, frame.Key)
	assert.Equal(t, "SPACE_MAP", frame.Value)
}
