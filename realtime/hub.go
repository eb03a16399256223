package realtime

import (
	"log"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Event is a cache-invalidation hint pushed to connected dashboards after a
// mutation commits. It carries the table, the event type and the row ID and
// nothing else; clients refetch, the feed is never authoritative.
type Event struct {
	Table string `json:"table"`
	Event string `json:"event"` // insert, update, delete
	ID    uint   `json:"id"`
}

type client struct {
	conn   *websocket.Conn
	tables map[string]struct{} // empty = all tables
	send   chan Event
}

func (c *client) wants(table string) bool {
	if len(c.tables) == 0 {
		return true
	}
	_, ok := c.tables[table]
	return ok
}

// Hub fans invalidation events out to websocket subscribers.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Broadcast queues an event for every subscriber interested in the table.
// A slow consumer drops events rather than blocking the request path; a
// missed invalidation only means a stale cache until the next fetch.
func (h *Hub) Broadcast(table, event string, id uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if !c.wants(table) {
			continue
		}
		select {
		case c.send <- Event{Table: table, Event: event, ID: id}:
		default:
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Handler returns the websocket handler for the realtime feed. Clients may
// narrow the feed with ?tables=leads,conversations.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		c := &client{
			conn:   conn,
			tables: make(map[string]struct{}),
			send:   make(chan Event, 64),
		}

		if raw := conn.Query("tables"); raw != "" {
			for _, t := range strings.Split(raw, ",") {
				if t = strings.TrimSpace(t); t != "" {
					c.tables[t] = struct{}{}
				}
			}
		}

		h.register(c)
		defer func() {
			h.unregister(c)
			conn.Close()
		}()

		go func() {
			for ev := range c.send {
				if err := c.conn.WriteJSON(ev); err != nil {
					return
				}
			}
		}()

		// Read loop exists only to detect the close frame.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.logger.Printf("realtime client disconnected: %v", err)
				return
			}
		}
	}
}
