// file: realtime/socket_registry.go

package realtime

import (
	"go-campus-api/logger"
	"sync"

	"github.com/gorilla/websocket"
)

// Socket wraps one registered websocket connection. Writes are serialized
// per connection because the underlying websocket permits one writer at a
// time; removal happens exactly once even when a send failure and the read
// pump race to unregister.
type Socket struct {
	userID  int
	conn    *websocket.Conn
	writeMu sync.Mutex
	once    sync.Once
}

func (s *Socket) writeEvent(event string, data interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(Event{Event: event, Data: data})
}

// SocketRegistry tracks authenticated websocket connections per user.
// Authentication happens during the HTTP handshake, before Register is
// called; a connection that fails it is never registered.
type SocketRegistry struct {
	mu    sync.Mutex
	conns map[int]map[*Socket]struct{}
}

// NewSocketRegistry creates an empty SocketRegistry.
func NewSocketRegistry() *SocketRegistry {
	return &SocketRegistry{
		conns: make(map[int]map[*Socket]struct{}),
	}
}

// Register adds the connection to the user's set and starts its read pump.
// The pump discards inbound frames; its job is to detect the close and
// unregister the socket.
func (r *SocketRegistry) Register(userID int, conn *websocket.Conn) *Socket {
	socket := &Socket{userID: userID, conn: conn}

	r.mu.Lock()
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[*Socket]struct{})
		r.conns[userID] = set
	}
	set[socket] = struct{}{}
	r.mu.Unlock()

	logger.Log.WithField("user_id", userID).Info("User connected via WebSocket")

	go r.readPump(socket)
	return socket
}

func (r *SocketRegistry) readPump(s *Socket) {
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			r.Unregister(s)
			return
		}
	}
}

// Unregister removes the socket from its owner's set, closing the
// connection. The user entry is deleted when its set becomes empty.
func (r *SocketRegistry) Unregister(s *Socket) {
	s.once.Do(func() {
		r.mu.Lock()
		if set, ok := r.conns[s.userID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(r.conns, s.userID)
			}
		}
		r.mu.Unlock()

		s.conn.Close()
		logger.Log.WithField("user_id", s.userID).Info("User disconnected from WebSocket")
	})
}

// snapshot copies a user's socket set so fan-out never iterates a set that
// a concurrent connect or disconnect is mutating.
func (r *SocketRegistry) snapshot(userID int) []*Socket {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.conns[userID]
	sockets := make([]*Socket, 0, len(set))
	for s := range set {
		sockets = append(sockets, s)
	}
	return sockets
}

// SendToUser fans the event out to every socket of the user. A socket whose
// write fails is unregistered; the rest of the user's sockets are untouched.
func (r *SocketRegistry) SendToUser(userID int, event string, data interface{}) {
	for _, s := range r.snapshot(userID) {
		if err := s.writeEvent(event, data); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID).Warn("WebSocket write failed, dropping connection")
			r.Unregister(s)
		}
	}
}

// BroadcastToAll fans the event out to every registered socket.
func (r *SocketRegistry) BroadcastToAll(event string, data interface{}) {
	r.mu.Lock()
	sockets := make([]*Socket, 0)
	for _, set := range r.conns {
		for s := range set {
			sockets = append(sockets, s)
		}
	}
	r.mu.Unlock()

	for _, s := range sockets {
		if err := s.writeEvent(event, data); err != nil {
			r.Unregister(s)
		}
	}
}

// UserConnectionCount reports how many sockets a user currently holds.
func (r *SocketRegistry) UserConnectionCount(userID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns[userID])
}
