// Package ws fans committed domain events out to connected front ends.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscription registers a connection. An empty Store receives every event;
// otherwise only events for that store and events without a store.
type Subscription struct {
	Conn  Conn
	Store string
}

const broadcastBuffer = 64

type envelope struct {
	store string
	raw   []byte
}

type Hub struct {
	clients    map[Conn]string
	Register   chan Subscription
	Unregister chan Conn
	broadcast  chan envelope
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Conn]string),
		Register:   make(chan Subscription),
		Unregister: make(chan Conn),
		broadcast:  make(chan envelope, broadcastBuffer),
	}
}

// Publish marshals payload with its event type and queues it. A top-level
// "store" entry scopes delivery. It never blocks the caller: when the queue
// is full the event is dropped.
func (h *Hub) Publish(event string, payload map[string]interface{}) {
	msg := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["type"] = event
	store, _ := payload["store"].(string)

	raw, err := json.Marshal(msg)
	if err != nil {
		slog.Error("ws marshal failed", slog.String("type", event), slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- envelope{store: store, raw: raw}:
	default:
		slog.Warn("ws event dropped", slog.String("type", event), slog.String("store", store))
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Run dispatches until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case sub := <-h.Register:
			h.mutex.Lock()
			h.clients[sub.Conn] = sub.Store
			h.mutex.Unlock()
			slog.Info("ws client connected", slog.String("store", sub.Store))

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for conn, store := range h.clients {
				if store != "" && msg.store != "" && store != msg.store {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg.raw); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()

		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return
		}
	}
}
