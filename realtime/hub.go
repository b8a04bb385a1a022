// file: realtime/hub.go

// Package realtime fans server-originated events out to every live
// connection of a user over two transports: bidirectional websockets and
// unidirectional server-sent event streams. Registries are keyed by logical
// user identity, not physical connection; a user may hold many of each.
package realtime

import "time"

// Event is the framed payload delivered on both transports.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub owns both connection registries. It is constructed once in app wiring
// and injected into every consumer; there is no package-level instance.
type Hub struct {
	Sockets *SocketRegistry
	Streams *StreamRegistry
}

// NewHub creates a Hub with empty registries. heartbeat is the keep-alive
// interval for long-lived streams.
func NewHub(heartbeat time.Duration) *Hub {
	return &Hub{
		Sockets: NewSocketRegistry(),
		Streams: NewStreamRegistry(heartbeat),
	}
}

// SendToUser delivers the event to every live connection of the user on
// both transports. Delivery order is FIFO per handle only.
func (h *Hub) SendToUser(userID int, event string, data interface{}) {
	h.Sockets.SendToUser(userID, event, data)
	h.Streams.SendToUser(userID, event, data)
}

// BroadcastToAll delivers the event to every registered connection.
func (h *Hub) BroadcastToAll(event string, data interface{}) {
	h.Sockets.BroadcastToAll(event, data)
	h.Streams.BroadcastToAll(event, data)
}
