package webview

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/fakestore/productctl/pkg/logging"
	"github.com/fakestore/productctl/pkg/productsync"
)

// Message types pushed to WebSocket clients.
const (
	MessageState  = "state"
	MessageNotice = "notice"
)

const (
	// clientBuffer is the number of messages queued per client before the
	// client is dropped as too slow.
	clientBuffer = 32
	writeTimeout = 5 * time.Second
)

// Message is a server-to-client WebSocket message.
type Message struct {
	Type   string              `json:"type"`
	State  *productsync.State  `json:"state,omitempty"`
	Notice *productsync.Notice `json:"notice,omitempty"`
}

// Hub fans controller snapshots and notices out to WebSocket clients. It is
// a productsync.Reporter and its Publish method is a productsync.Observer.
type Hub struct {
	log     *slog.Logger
	mu      sync.RWMutex
	clients map[uint64]*client
	nextID  atomic.Uint64
}

var errSlowClient = errors.New("websocket client too slow")

type client struct {
	id   uint64
	conn *websocket.Conn
	send chan Message
	done chan struct{}
	once sync.Once

	// sent is the newest state version written; owned by the writer.
	sent uint64
}

func (c *client) seen(version uint64) {
	if version > c.sent {
		c.sent = version
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// NewHub creates a hub with no clients.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = logging.Nop()
	}
	return &Hub{
		log:     log,
		clients: make(map[uint64]*client),
	}
}

// Publish queues a state snapshot for every client.
func (h *Hub) Publish(s productsync.State) {
	h.broadcast(Message{Type: MessageState, State: &s})
}

// Report queues a notice for every client.
func (h *Hub) Report(n productsync.Notice) {
	h.broadcast(Message{Type: MessageNotice, Notice: &n})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("dropping slow websocket client", "client", c.id)
			c.close()
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) *client {
	c := &client{
		id:   h.nextID.Add(1),
		conn: conn,
		send: make(chan Message, clientBuffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Debug("websocket client connected", "client", c.id)
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.close()
	h.log.Debug("websocket client disconnected", "client", c.id)
}

// serve writes queued messages to c until ctx ends, the peer goes away or
// the client is dropped. State snapshots older than one already sent are
// skipped.
func (h *Hub) serve(ctx context.Context, c *client) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return errSlowClient
		case msg := <-c.send:
			if msg.Type == MessageState {
				if msg.State.Version <= c.sent {
					continue
				}
				c.seen(msg.State.Version)
			}
			if err := h.write(ctx, c.conn, msg); err != nil {
				return err
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
