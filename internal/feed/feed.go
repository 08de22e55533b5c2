// Package feed broadcasts accepted detection events to scoreboard clients
// over websockets.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ironsheep/goalhorn/internal/pipeline"
)

// Defaults.
const (
	DefaultClientBuffer = 32
	writeTimeout        = 5 * time.Second
	shutdownTimeout     = 3 * time.Second
)

// Message types.
const (
	TypeHello = "hello"
	TypeEvent = "event"
)

// Message is the JSON frame sent to clients.
type Message struct {
	Type  string          `json:"type"`
	Event *pipeline.Event `json:"event,omitempty"`
}

type client struct {
	remote string
	send   chan Message
}

// Hub fans events out to connected clients. A client whose buffer fills
// up is disconnected instead of slowing down the pipeline.
type Hub struct {
	buffer int
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	dropped uint64
}

// NewHub returns a hub with the given per-client buffer. Zero uses
// DefaultClientBuffer; a nil logger discards output.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{buffer: buffer, logger: logger, clients: make(map[*client]struct{})}
}

// Publish queues ev for every client. It never blocks.
func (h *Hub) Publish(ev pipeline.Event) {
	msg := Message{Type: TypeEvent, Event: &ev}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
			h.dropped++
			h.logger.Warn("dropping slow feed client", "remote", c.remote)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many clients were disconnected for falling behind.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

func (h *Hub) add(remote string) *client {
	c := &client{remote: remote, send: make(chan Message, h.buffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Handler serves /events (websocket) and /healthz. status, when non-nil,
// is included in the health response.
func (h *Hub) Handler(status func() pipeline.Status) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", h.handleEvents)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"status":  "ok",
			"clients": h.Clients(),
		}
		if status != nil {
			resp["pipeline"] = status()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	return mux
}

func (h *Hub) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	c := h.add(r.RemoteAddr)
	defer h.remove(c)
	h.logger.Info("feed client connected", "remote", r.RemoteAddr)

	// Clients only listen; CloseRead handles control frames and cancels ctx
	// when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	if err := h.write(ctx, conn, Message{Type: TypeHello}); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("feed client disconnected", "remote", r.RemoteAddr)
			return
		case msg, ok := <-c.send:
			if !ok {
				_ = conn.Close(websocket.StatusPolicyViolation, "client too slow")
				return
			}
			if err := h.write(ctx, conn, msg); err != nil {
				h.logger.Debug("feed write error", "remote", r.RemoteAddr, "error", err)
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

// ListenAndServe serves Handler on addr until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string, status func() pipeline.Status) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(status),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	h.logger.Info("event feed listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
