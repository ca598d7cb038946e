// Package telemetry mirrors game state changes to websocket spectators.
package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/observability/log"
)

// Path is where the feed is served.
const Path = "/feed"

var ErrFeedClosed = errors.New("telemetry feed is closed")

// Frame is one state change as sent to clients.
type Frame struct {
	Event string    `json:"event"`
	Key   string    `json:"key"`
	Value any       `json:"value"`
	At    time.Time `json:"at"`
}

func frameOf(c gamestate.Change) Frame {
	return Frame{Event: c.Event, Key: c.Key, Value: c.Value, At: c.At}
}

type Option func(*Feed)

// WithBuffer sets how many frames a client may lag before it is dropped.
func WithBuffer(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.buffer = n
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(f *Feed) { f.writeTimeout = d }
}

func WithLogger(l log.Log) Option {
	return func(f *Feed) { f.logger = log.OrNop(l) }
}

type client struct {
	conn *websocket.Conn
	send chan Frame
	once sync.Once
}

// Feed broadcasts every change of a store to connected websocket clients.
// Publishing never blocks: a client whose buffer is full is disconnected.
type Feed struct {
	upgrader     websocket.Upgrader
	buffer       int
	writeTimeout time.Duration
	logger       log.Log

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewFeed creates a feed and subscribes it to store. store may be nil when
// frames are published by hand.
func NewFeed(store *gamestate.Store, opts ...Option) *Feed {
	f := &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		buffer:       64,
		writeTimeout: 5 * time.Second,
		logger:       log.NewNop(),
		clients:      make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(log.Component("telemetry"))
	if store != nil {
		store.Observe(f.Publish)
	}
	return f
}

// ServeHTTP upgrades the request and streams frames until the client leaves.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan Frame, f.buffer)}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ErrFeedClosed.Error()))
		_ = conn.Close()
		return
	}
	f.clients[c] = struct{}{}
	n := len(f.clients)
	f.mu.Unlock()
	f.logger.Debug("spectator connected", log.String("remote", r.RemoteAddr), log.Int("clients", n))

	go f.write(c)
	// spectators only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.drop(c)
}

func (f *Feed) write(c *client) {
	for frame := range c.send {
		if f.writeTimeout > 0 {
			_ = c.conn.SetWriteDeadline(time.Now().Add(f.writeTimeout))
		}
		if err := c.conn.WriteJSON(frame); err != nil {
			f.logger.Debug("spectator write failed", log.Error(err))
			f.drop(c)
			_ = c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

// drop unregisters c and stops its writer.
func (f *Feed) drop(c *client) {
	c.once.Do(func() {
		f.mu.Lock()
		delete(f.clients, c)
		f.mu.Unlock()
		close(c.send)
	})
}

// Publish sends c to every client.
func (f *Feed) Publish(c gamestate.Change) {
	frame := frameOf(c)
	var slow []*client

	f.mu.Lock()
	for cl := range f.clients {
		select {
		case cl.send <- frame:
		default:
			slow = append(slow, cl)
		}
	}
	f.mu.Unlock()

	for _, cl := range slow {
		f.logger.Warn("dropping slow spectator", log.String("remote", cl.conn.RemoteAddr().String()))
		f.drop(cl)
	}
}

// Clients returns the number of connected spectators.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Handler serves the feed on Path.
func (f *Feed) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Path, f)
	return mux
}

// Serve listens on addr until ctx is done, then disconnects every client.
func (f *Feed) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return f.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (f *Feed) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: f.Handler(), ReadHeaderTimeout: 5 * time.Second}
	f.logger.Info("telemetry listening", log.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		f.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	f.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close disconnects every client and rejects new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	clients := make([]*client, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
	}
	f.mu.Unlock()

	for _, c := range clients {
		f.drop(c)
	}
}
