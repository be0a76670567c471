// Package server streams simulation frames to browser viewers over
// WebSocket and relays their commands back to the simulation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/render"
	"github.com/pthm-cable/trophic/species"
)

// commandBuffer is how many client commands may queue between drains.
const commandBuffer = 64

// Hub is a render.Sink that broadcasts frames to every connected client.
// Present is called from the simulation goroutine; connections are served
// from net/http goroutines.
type Hub struct {
	cfg      config.ServerConfig
	table    *species.Table
	clients  *ClientManager
	upgrader websocket.Upgrader
	commands chan render.Command

	mu     sync.RWMutex // protects the fields below
	last   []byte       // most recent encoded frame
	width  float64
	height float64
}

// NewHub creates a hub for the given species table.
func NewHub(cfg config.ServerConfig, table *species.Table) *Hub {
	if cfg.FrameInterval < 1 {
		cfg.FrameInterval = 1
	}
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	return &Hub{
		cfg:     cfg,
		table:   table,
		clients: NewClientManager(),
		upgrader: websocket.Upgrader{
			CheckOrigin:       func(r *http.Request) bool { return true },
			ReadBufferSize:    1024,
			WriteBufferSize:   4096,
			EnableCompression: true,
		},
		commands: make(chan render.Command, commandBuffer),
	}
}

// Present encodes the frame and broadcasts it. Running frames are thinned
// to every FrameInterval-th tick; frames before the start signal, while
// paused, or at a trial boundary always go out.
func (h *Hub) Present(f *render.Frame) {
	running := f.Started && !f.Paused && f.Tick > 0
	if running && f.Total%int64(h.cfg.FrameInterval) != 0 {
		return
	}

	data, err := json.Marshal(EncodeFrame(f))
	if err != nil {
		slog.Error("failed to encode frame", "error", err)
		return
	}

	h.mu.Lock()
	h.last = data
	h.width, h.height = f.Width, f.Height
	h.mu.Unlock()

	for _, c := range h.clients.Snapshot() {
		if !c.Queue(data) {
			slog.Debug("frame dropped", "client", c.ID)
		}
	}
}

// Commands returns the channel of decoded client commands.
func (h *Hub) Commands() <-chan render.Command {
	return h.commands
}

// Drain applies every queued command without blocking. Rejected commands
// are logged and dropped.
func (h *Hub) Drain(ctrl render.Controls) {
	for {
		select {
		case cmd := <-h.commands:
			if err := ctrl.Apply(cmd); err != nil {
				slog.Warn("command rejected", "kind", cmd.Kind.String(), "error", err)
			}
		default:
			return
		}
	}
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	return h.clients.Count()
}

// ServeHTTP upgrades the request and serves one viewer until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "error", err)
		return
	}

	c := NewClient(ws)
	go c.WritePump()

	// The welcome and latest frame are queued before the client joins the
	// broadcast set so they arrive first.
	h.mu.RLock()
	welcome := NewWelcome(c.ID, h.width, h.height, h.table)
	last := h.last
	if err := c.Send(welcome); err != nil {
		h.mu.RUnlock()
		slog.Warn("welcome send failed", "client", c.ID, "error", err)
		c.Close()
		return
	}
	if last != nil {
		c.Queue(last)
	}
	h.clients.Add(c)
	h.mu.RUnlock()
	slog.Info("client_connected", "client", c.ID, "remote", r.RemoteAddr, "clients", h.clients.Count())

	defer func() {
		h.clients.Remove(c.ID)
		c.Close()
		slog.Info("client_disconnected", "client", c.ID, "clients", h.clients.Count())
	}()

	c.ReadLoop(h.handleMessage)
}

func (h *Hub) handleMessage(c *Client, raw []byte) {
	cmd, err := DecodeCommand(raw)
	if err != nil {
		slog.Debug("bad client message", "client", c.ID, "error", err)
		_ = c.Send(ErrorMsg{Type: MsgError, Message: err.Error()})
		return
	}
	select {
	case h.commands <- cmd:
	default:
		slog.Warn("command queue full, dropping", "client", c.ID, "kind", cmd.Kind.String())
	}
}

// Handler returns a mux serving the hub at the configured path.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(h.cfg.Path, h)
	return mux
}

// ListenAndServe serves viewers on the configured address until ctx is
// cancelled.
func (h *Hub) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              h.cfg.Addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", h.cfg.Addr, "path", h.cfg.Path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, c := range h.clients.Snapshot() {
			c.Close()
		}
		return srv.Shutdown(shutdownCtx)
	}
}
