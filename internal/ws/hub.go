package ws

import (
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Conn is the transport handle the hub fans messages out to. It is satisfied
// by *session and, in tests, by fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub owns the registry of live push sessions keyed by logical client
// identity. One client may hold several concurrent sessions (browser tabs);
// the registry is the only shared mutable state in the push layer and every
// mutation or iteration happens under the lock or on a snapshot.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]map[Conn]struct{}
	logger hclog.Logger
}

// NewHub creates an empty session registry.
func NewHub(logger hclog.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[Conn]struct{}),
		logger: logger,
	}
}

// Register adds a session handle under the client identity.
func (h *Hub) Register(clientID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[clientID]
	if !ok {
		set = make(map[Conn]struct{})
		h.conns[clientID] = set
	}
	set[c] = struct{}{}
	h.logger.Debug("client connected", "client_id", clientID, "sessions", len(set))
}

// Unregister removes a session handle. An emptied client entry is removed
// entirely so the registry never holds dangling empty sets.
func (h *Hub) Unregister(clientID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[clientID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, clientID)
	}
	h.logger.Debug("client disconnected", "client_id", clientID)
}

// SendToOne delivers a message to a single handle, best effort. A failure is
// reported to the caller and does not mutate the registry.
func (h *Hub) SendToOne(c Conn, message interface{}) error {
	return c.WriteJSON(message)
}

// Broadcast delivers the message to every live session of the client. The
// handle set is snapshotted before iterating, a failed send on one handle
// never blocks the others, and failed handles are pruned afterwards.
func (h *Hub) Broadcast(clientID string, message interface{}) {
	h.mu.RLock()
	snapshot := make([]Conn, 0, len(h.conns[clientID]))
	for c := range h.conns[clientID] {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	var dead []Conn
	for _, c := range snapshot {
		if err := c.WriteJSON(message); err != nil {
			h.logger.Warn("dropping dead session", "client_id", clientID, "error", err)
			dead = append(dead, c)
		}
	}

	for _, c := range dead {
		h.Unregister(clientID, c)
		_ = c.Close()
	}
}

// BroadcastAll delivers the message to every registered client independently.
func (h *Hub) BroadcastAll(message interface{}) {
	h.mu.RLock()
	clients := make([]string, 0, len(h.conns))
	for clientID := range h.conns {
		clients = append(clients, clientID)
	}
	h.mu.RUnlock()

	for _, clientID := range clients {
		h.Broadcast(clientID, message)
	}
}

// Stats reports the number of registered clients and total live sessions.
func (h *Hub) Stats() (clients, connections int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients = len(h.conns)
	for _, set := range h.conns {
		connections += len(set)
	}
	return clients, connections
}
