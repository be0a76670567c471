package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrClientBacklogged is returned when a client's outbound queue is full or
// the client has closed.
var ErrClientBacklogged = errors.New("client backlogged")

const (
	// writeWait bounds a single socket write.
	writeWait = 2 * time.Second
	// sendBuffer is how many outbound messages a client may fall behind by
	// before further frames are dropped.
	sendBuffer = 16
)

// Client manages a single WebSocket viewer session. Writes go through a
// per-client queue drained by WritePump, so a slow viewer never blocks the
// caller.
type Client struct {
	ID   string
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewClient wraps an upgraded connection.
func NewClient(ws *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New().String(),
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Send serializes msg to JSON and queues it.
func (c *Client) Send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if !c.Queue(data) {
		return ErrClientBacklogged
	}
	return nil
}

// Queue hands an encoded text message to the writer without blocking.
// It reports false when the client is closed or its queue is full.
func (c *Client) Queue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// WritePump writes queued messages until the client closes. A write that
// misses its deadline closes the client.
func (c *Client) WritePump() {
	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("ws write failed", "client", c.ID, "error", err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close stops the writer and closes the socket. Safe to call repeatedly.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		if c.ws != nil {
			c.ws.Close()
		}
	})
}

// ReadLoop handles incoming messages until the client disconnects.
// onMessage is called with every raw text message.
func (c *Client) ReadLoop(onMessage func(c *Client, raw []byte)) {
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("ws read error", "client", c.ID, "error", err)
			}
			return
		}
		onMessage(c, raw)
	}
}

// ClientManager tracks all active clients.
type ClientManager struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewClientManager creates an empty client manager.
func NewClientManager() *ClientManager {
	return &ClientManager{clients: make(map[string]*Client)}
}

// Add registers a client.
func (m *ClientManager) Add(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
}

// Remove unregisters a client.
func (m *ClientManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, id)
}

// Count returns the number of active clients.
func (m *ClientManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Snapshot returns a copy of all current clients.
func (m *ClientManager) Snapshot() []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		list = append(list, c)
	}
	return list
}
