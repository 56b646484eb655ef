// Package stream pushes board snapshots to WebSocket clients and accepts
// filter changes from them.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/kiranshivaraju/logpulse/internal/board"
	"github.com/kiranshivaraju/logpulse/internal/filter"
)

// Message types exchanged over the socket.
const (
	TypeBoard  = "board"
	TypeFilter = "filter"
	TypePing   = "ping"
	TypeStatus = "status"
)

// FilterSetter applies filter criteria received from a client.
type FilterSetter interface {
	SetCriteria(c filter.Criteria) error
}

// Message is the envelope of every frame in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Status is the payload of a status frame.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Hub tracks connected clients and fans board snapshots out to them.
type Hub struct {
	board   *board.Board
	filters FilterSetter
	origins []string

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a hub streaming b. origins lists the Origin header values
// accepted on upgrade; "*" accepts any.
func NewHub(b *board.Board, filters FilterSetter, origins []string) *Hub {
	return &Hub{
		board:      b,
		filters:    filters,
		origins:    origins,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	sub := h.board.Subscribe()
	defer sub.Close()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			slog.Info("stream client connected", "client_id", c.id)

			if msg, err := encode(TypeBoard, h.board.Snapshot()); err == nil {
				c.send <- msg
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				slog.Info("stream client disconnected", "client_id", c.id)
			}
			h.mu.Unlock()

		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			msg, err := encode(TypeBoard, snap)
			if err != nil {
				slog.Error("failed to encode board snapshot", "error", err)
				continue
			}
			h.broadcast(msg)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slog.Warn("stream client too slow, dropping", "client_id", c.id)
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func encode(typ string, data any) ([]byte, error) {
	return json.Marshal(outbound{Type: typ, Data: data})
}
