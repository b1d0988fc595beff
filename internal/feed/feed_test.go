package feed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/colonysim/colony/internal/core/event"
	"github.com/colonysim/colony/internal/system"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type chanSink struct {
	ch chan system.Command
}

func (s *chanSink) Submit(cmd system.Command) bool {
	select {
	case s.ch <- cmd:
		return true
	default:
		return false
	}
}

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	h := NewHub(1, zaptest.NewLogger(t))
	id, ch := h.Register()
	assert.Equal(t, 1, h.SubscriberCount())

	h.Broadcast([]byte("a"))
	h.Broadcast([]byte("b"))
	assert.Equal(t, uint64(1), h.Dropped())
	assert.Equal(t, []byte("a"), <-ch)

	h.Unregister(id)
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, h.SubscriberCount())
	h.Unregister(id)
}

func TestHubPublishFrame(t *testing.T) {
	h := NewHub(4, zaptest.NewLogger(t))
	h.Publish(event.JobCompleted{Tick: 1}) // no subscribers: nothing to do

	_, ch := h.Register()
	h.Publish(event.TileTypeChanged{Tick: 9, X: 1, Y: 2, Type: "Floor"})

	var f Frame
	require.NoError(t, json.Unmarshal(<-ch, &f))
	assert.Equal(t, "tile_type_changed", f.Kind)
	assert.Equal(t, uint64(9), f.Tick)
	assert.JSONEq(t, `{"tick":9,"x":1,"y":2,"type":"Floor"}`, string(f.Data))
}

func TestServerStreamsEventsAndForwardsCommands(t *testing.T) {
	log := zaptest.NewLogger(t)
	hub := NewHub(16, log)
	sink := &chanSink{ch: make(chan system.Command, 4)}
	srv := httptest.NewServer(NewServer(hub, sink, log).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(event.ObjectPlaced{Tick: 4, Type: "Wall", X: 3, Y: 2})
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "object_placed", f.Kind)
	assert.Equal(t, uint64(4), f.Tick)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(system.Command{Op: system.OpBuild, Type: "wall", X1: 3, Y1: 2, X2: 3, Y2: 2}))
	select {
	case cmd := <-sink.ch:
		assert.Equal(t, system.OpBuild, cmd.Op)
		assert.Equal(t, "wall", cmd.Type)
		assert.Equal(t, 3, cmd.X1)
	case <-time.After(2 * time.Second):
		t.Fatal("command not forwarded")
	}

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServerKeepsListenOnlyClient(t *testing.T) {
	log := zaptest.NewLogger(t)
	hub := NewHub(16, log)
	fs := NewServer(hub, &chanSink{ch: make(chan system.Command, 1)}, log)
	fs.readWait = 150 * time.Millisecond
	fs.pingPeriod = 50 * time.Millisecond
	srv := httptest.NewServer(fs.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Reading answers pings; the client never writes a data frame.
	frames := make(chan Frame, 4)
	go func() {
		for {
			var f Frame
			if err := conn.ReadJSON(&f); err != nil {
				close(frames)
				return
			}
			frames <- f
		}
	}()

	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(4 * fs.readWait)
	assert.Equal(t, 1, hub.SubscriberCount(), "idle listener dropped")

	hub.Publish(event.ObjectPlaced{Tick: 7, Type: "Wall", X: 1, Y: 1})
	select {
	case f, ok := <-frames:
		require.True(t, ok, "connection closed")
		assert.Equal(t, "object_placed", f.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("frame not delivered")
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	for addr, want := range map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:5000":     true,
		"::1":            true,
		"10.0.0.8:5000":  false,
		"example.com:80": false,
		"":               false,
	} {
		assert.Equal(t, want, isLoopbackRemote(addr), addr)
	}
}
