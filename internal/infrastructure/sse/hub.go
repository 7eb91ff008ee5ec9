package sse

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/event"
)

// Hub manages SSE clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*event.Client
	dropped int
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*event.Client),
		logger:  logger.With().Str("component", "sse").Logger(),
	}
}

// Register adds client, replacing and closing any client with the same id.
func (h *Hub) Register(client *event.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[client.ClientID]; ok {
		old.Close()
	}
	h.clients[client.ClientID] = client
}

func (h *Hub) Unregister(client *event.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[client.ClientID]; ok && c == client {
		c.Close()
		delete(h.clients, client.ClientID)
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped counts events discarded because a client was not draining.
func (h *Hub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Publish broadcasts e to every client subscribed to its type.
func (h *Hub) Publish(e *event.Event) {
	if e == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		if !c.Wants(e.Type) {
			continue
		}
		if !trySend(c, e) {
			h.dropped++
			h.logger.Debug().Str("clientId", c.ClientID).Str("event", string(e.Type)).Msg("client too slow, event dropped")
		}
	}
}

// PublishToUID sends e only to clients registered for uid.
func (h *Hub) PublishToUID(uid int, e *event.Event) {
	if e == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		if c.UID == nil || *c.UID != uid || !c.Wants(e.Type) {
			continue
		}
		if !trySend(c, e) {
			h.dropped++
			h.logger.Debug().Str("clientId", c.ClientID).Int("uid", uid).Str("event", string(e.Type)).Msg("client too slow, event dropped")
		}
	}
}

func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
}

func trySend(c *event.Client, e *event.Event) bool {
	select {
	case c.Messages <- e:
		return true
	default:
		return false
	}
}
