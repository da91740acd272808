package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/logger"
	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/nirlob/obision-status/internal/poller"
)

// Message types.
const (
	TypeSnapshot = "snapshot"
	TypeError    = "error"
	TypePong     = "pong"
	TypePing     = "ping"
	TypeLatest   = "latest"
	TypeRefresh  = "refresh"
)

// ClientMessage is what clients send over /ws.
type ClientMessage struct {
	Type string `json:"type"`
}

// ServerMessage is what the server sends over /ws.
type ServerMessage struct {
	Type     string            `json:"type"`
	Snapshot *metrics.Snapshot `json:"snapshot,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// Health is the /health response body.
type Health struct {
	Status      string `json:"status"`
	Subscribers int    `json:"subscribers"`
	Cycle       uint64 `json:"cycle"`
}

const (
	writeTimeout   = 10 * time.Second
	shutdownPeriod = 5 * time.Second
)

// Server streams snapshots from a hub to websocket clients.
type Server struct {
	hub      *poller.Hub
	log      logger.Logger
	refresh  func(ctx context.Context)
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithRefresh lets clients trigger an immediate poll.
func WithRefresh(fn func(ctx context.Context)) Option {
	return func(s *Server) { s.refresh = fn }
}

// NewServer creates a server over hub.
func NewServer(hub *poller.Hub, opts ...Option) *Server {
	s := &Server{
		hub: hub,
		log: logger.Noop(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving snapshots on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't listen on "+addr,
			"Pick another address with --addr or serve.addr")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server shutdown")
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := Health{Status: "ok", Subscribers: s.hub.Subscribers()}
	if latest := s.hub.Latest(); latest != nil {
		h.Cycle = latest.Cycle
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sources, err := parseSources(r.URL.Query().Get("sources"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ServerMessage{Type: TypeError, Message: err.Error()})
		return
	}

	latest := s.hub.Latest()
	if latest == nil {
		writeJSON(w, http.StatusServiceUnavailable, ServerMessage{Type: TypeError, Message: "no snapshot yet"})
		return
	}
	writeJSON(w, http.StatusOK, Filter(latest, sources))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sources, err := parseSources(r.URL.Query().Get("sources"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	snapshots, cancel := s.hub.Subscribe(1)
	defer cancel()

	c := &client{conn: conn}
	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	s.log.Debug("client %s connected", r.RemoteAddr)
	go s.readLoop(ctx, stop, c, sources)

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("client %s disconnected", r.RemoteAddr)
			return
		case snap, ok := <-snapshots:
			if !ok {
				_ = c.close("poller stopped")
				return
			}
			if err := c.send(ServerMessage{Type: TypeSnapshot, Snapshot: Filter(snap, sources)}); err != nil {
				s.log.Debug("write to %s: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}

// readLoop handles client requests until the connection drops, then stops
// the writer.
func (s *Server) readLoop(ctx context.Context, stop context.CancelFunc, c *client, sources []metrics.Source) {
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = c.send(ServerMessage{Type: TypeError, Message: "invalid message"})
			continue
		}

		switch msg.Type {
		case TypePing:
			_ = c.send(ServerMessage{Type: TypePong})
		case TypeLatest:
			if latest := s.hub.Latest(); latest != nil {
				_ = c.send(ServerMessage{Type: TypeSnapshot, Snapshot: Filter(latest, sources)})
			} else {
				_ = c.send(ServerMessage{Type: TypeError, Message: "no snapshot yet"})
			}
		case TypeRefresh:
			if s.refresh == nil {
				_ = c.send(ServerMessage{Type: TypeError, Message: "refresh not supported"})
				continue
			}
			// The new snapshot reaches every client through the hub.
			go s.refresh(ctx)
		default:
			_ = c.send(ServerMessage{Type: TypeError, Message: "unknown message type: " + msg.Type})
		}
	}
}

// client serializes writes; gorilla connections allow one writer at a time.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) send(msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(msg)
}

func (c *client) close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)
	return c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parseSources parses a comma-separated source list. Empty means all.
func parseSources(raw string) ([]metrics.Source, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []metrics.Source
	for _, name := range strings.Split(raw, ",") {
		src, ok := metrics.ParseSource(strings.TrimSpace(name))
		if !ok {
			return nil, errors.New(errors.ErrConfig, "unknown source "+name, "")
		}
		out = append(out, src)
	}
	return out, nil
}
