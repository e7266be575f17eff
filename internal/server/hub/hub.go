// Package hub fans realtime change events out to subscribed connections.
//
// Topics follow the "<table>" or "<table>:<row id>" convention, so a device
// guarding its own session subscribes to "users:<its user id>" while every
// device interested in new documents subscribes to "documents".
package hub

import "sync"

// Writer is the minimal connection surface the hub needs. Implementations
// wrap a websocket connection.
type Writer interface {
	Write(message []byte) error
	Close() error
}

type Connection struct {
	Topics []string
	Writer Writer
}

type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{}
}

func New() *Hub {
	return &Hub{connections: make(map[string]map[*Connection]struct{})}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range conn.Topics {
		if h.connections[topic] == nil {
			h.connections[topic] = make(map[*Connection]struct{})
		}
		h.connections[topic][conn] = struct{}{}
	}
}

func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(conn)
}

func (h *Hub) unregisterLocked(conn *Connection) {
	for _, topic := range conn.Topics {
		set := h.connections[topic]
		if set == nil {
			continue
		}
		delete(set, conn)
		if len(set) == 0 {
			delete(h.connections, topic)
		}
	}
}

// Broadcast delivers message to every connection subscribed to topic.
// Connections whose writer fails are closed and dropped from all topics.
func (h *Hub) Broadcast(topic string, message []byte) {
	h.mu.RLock()
	set := h.connections[topic]
	conns := make([]*Connection, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	var failed []*Connection
	for _, c := range conns {
		if err := c.Writer.Write(message); err != nil {
			failed = append(failed, c)
		}
	}
	if len(failed) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range failed {
		_ = c.Writer.Close()
		h.unregisterLocked(c)
	}
}

// Subscribers reports how many connections are registered for topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[topic])
}
