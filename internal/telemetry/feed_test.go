package telemetry

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/outpost/internal/core/gamestate"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+Path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitClients(t *testing.T, f *Feed, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.Clients() == n }, time.Second, 5*time.Millisecond)
}

func TestFeedMirrorsStore(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := gamestate.New(gamestate.WithClock(func() time.Time { return at }))
	feed := NewFeed(store)
	srv := httptest.NewServer(feed.Handler())
	defer srv.Close()

	conn := dial(t, srv.URL)
	waitClients(t, feed, 1)

	_, err := store.UpdateResource("Solstite", 5)
	require.NoError(t, err)
	store.Put("currentPlanet", "Earth")

	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, gamestate.EventUpdateResource, frame.Event)
	assert.Equal(t, "resource/Solstite", frame.Key)
	assert.Equal(t, float64(5), frame.Value)
	assert.True(t, at.Equal(frame.At))

	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "currentPlanet", frame.Key)
	assert.Equal(t, "Earth", frame.Value)
}

func TestFeedDropsSlowClients(t *testing.T) {
	feed := NewFeed(nil, WithBuffer(1))
	srv := httptest.NewServer(feed.Handler())
	defer srv.Close()

	dial(t, srv.URL)
	waitClients(t, feed, 1)

	// the client never reads, so its buffer and socket fill up
	big := strings.Repeat("x", 64*1024)
	require.Eventually(t, func() bool {
		feed.Publish(gamestate.Change{Event: "put", Key: "k", Value: big})
		return feed.Clients() == 0
	}, 5*time.Second, time.Millisecond)
}

func TestFeedClientLeaves(t *testing.T) {
	feed := NewFeed(nil)
	srv := httptest.NewServer(feed.Handler())
	defer srv.Close()

	conn := dial(t, srv.URL)
	waitClients(t, feed, 1)
	require.NoError(t, conn.Close())
	waitClients(t, feed, 0)
}

func TestServeListenerStopsWithContext(t *testing.T) {
	feed := NewFeed(nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.ServeListener(ctx, ln) }()

	conn := dial(t, "http://"+ln.Addr().String())
	waitClients(t, feed, 1)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("feed did not stop")
	}
	assert.Zero(t, feed.Clients())

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "the server closed the connection")
}
