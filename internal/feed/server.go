package feed

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/colonysim/colony/internal/system"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 5 * time.Second
	readWait       = 60 * time.Second
	pingPeriod     = readWait * 9 / 10
	maxMessageSize = 4096
)

// CommandSink accepts commands from feed clients. Must be goroutine-safe.
type CommandSink interface {
	Submit(cmd system.Command) bool
}

// Server streams bus events to WebSocket clients and forwards their commands.
// Only loopback peers are accepted.
type Server struct {
	hub      *Hub
	sink     CommandSink
	log      *zap.Logger
	upgrader websocket.Upgrader

	readWait   time.Duration
	pingPeriod time.Duration
}

func NewServer(hub *Hub, sink CommandSink, log *zap.Logger) *Server {
	return &Server{
		hub:        hub,
		sink:       sink,
		log:        log,
		readWait:   readWait,
		pingPeriod: pingPeriod,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // loopback only anyway
		},
	}
}

// Handler returns the HTTP handler serving the /ws endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

// ListenAndServe serves the feed on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("feed listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) serveWS(rw http.ResponseWriter, r *http.Request) {
	if !isLoopbackRemote(r.RemoteAddr) {
		http.Error(rw, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id, out := s.hub.Register()
	defer s.hub.Unregister(id)
	s.log.Info("feed client connected", zap.Uint64("id", id), zap.String("remote", r.RemoteAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Writer goroutine. Pings keep listen-only clients past the read deadline.
	writeErr := make(chan error, 1)
	go func() {
		ping := time.NewTicker(s.pingPeriod)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					writeErr <- err
					return
				}
			case b, ok := <-out:
				if !ok {
					writeErr <- nil
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	// Reader loop: commands.
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.readWait))
	})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.readWait))
		var cmd system.Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			s.log.Debug("feed: bad command frame", zap.Uint64("id", id), zap.Error(err))
			continue
		}
		if !s.sink.Submit(cmd) {
			s.log.Warn("feed: command queue full, dropping", zap.Uint64("id", id), zap.String("op", cmd.Op))
		}
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	// Best-effort wait for the writer to stop so it doesn't outlive conn.
	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
	s.log.Info("feed client disconnected", zap.Uint64("id", id))
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
