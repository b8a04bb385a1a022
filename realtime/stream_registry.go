// file: realtime/stream_registry.go

package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"go-campus-api/logger"
	"net/http"
	"sync"
	"time"
)

// Stream is one long-lived server-sent-events response. Writes from
// heartbeats and fan-outs are serialized per stream; closing is signalled
// exactly once via done.
type Stream struct {
	userID  int
	w       http.ResponseWriter
	flusher http.Flusher
	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

func (s *Stream) write(frame string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := fmt.Fprint(s.w, frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *Stream) writeEvent(event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.write(fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload))
}

func (s *Stream) close() {
	s.once.Do(func() { close(s.done) })
}

// StreamRegistry tracks authenticated SSE streams per user and emits a
// periodic keep-alive on each so idle proxies do not cut them off.
type StreamRegistry struct {
	mu        sync.Mutex
	streams   map[int]map[*Stream]struct{}
	heartbeat time.Duration
}

// NewStreamRegistry creates an empty StreamRegistry with the given
// keep-alive interval.
func NewStreamRegistry(heartbeat time.Duration) *StreamRegistry {
	return &StreamRegistry{
		streams:   make(map[int]map[*Stream]struct{}),
		heartbeat: heartbeat,
	}
}

// Serve registers the response as a stream for the user, writes the SSE
// initiation headers and blocks, emitting heartbeats, until the client
// disconnects or a write fails. It must be called from the HTTP handler
// goroutine: returning ends the response.
func (r *StreamRegistry) Serve(userID int, w http.ResponseWriter, req *http.Request) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errors.New("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := &Stream{
		userID:  userID,
		w:       w,
		flusher: flusher,
		done:    make(chan struct{}),
	}

	r.mu.Lock()
	set, ok := r.streams[userID]
	if !ok {
		set = make(map[*Stream]struct{})
		r.streams[userID] = set
	}
	set[stream] = struct{}{}
	r.mu.Unlock()

	logger.Log.WithField("user_id", userID).Debug("New SSE client connected")

	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()
	defer r.remove(stream)

	for {
		select {
		case <-req.Context().Done():
			logger.Log.WithField("user_id", userID).Debug("SSE client disconnected")
			return nil
		case <-stream.done:
			return nil
		case <-ticker.C:
			frame := fmt.Sprintf("event: heartbeat\ndata: %s\n\n", time.Now().Format(time.RFC3339))
			if err := stream.write(frame); err != nil {
				logger.Log.WithError(err).WithField("user_id", userID).Warn("SSE heartbeat failed, dropping stream")
				return nil
			}
		}
	}
}

// remove deletes the stream from its owner's set exactly once, dropping the
// user entry when the set empties.
func (r *StreamRegistry) remove(s *Stream) {
	s.close()

	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.streams[s.userID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(r.streams, s.userID)
		}
	}
}

func (r *StreamRegistry) snapshot(userID int) []*Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.streams[userID]
	streams := make([]*Stream, 0, len(set))
	for s := range set {
		streams = append(streams, s)
	}
	return streams
}

// SendToUser writes a framed event to every open stream of the user. A
// failing stream is removed on its own; the rest keep receiving. Failures
// are logged, never retried.
func (r *StreamRegistry) SendToUser(userID int, event string, data interface{}) {
	for _, s := range r.snapshot(userID) {
		if err := s.writeEvent(event, data); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID).Warn("SSE write failed, dropping stream")
			r.remove(s)
		}
	}
}

// BroadcastToAll writes the event to every registered stream.
func (r *StreamRegistry) BroadcastToAll(event string, data interface{}) {
	r.mu.Lock()
	userIDs := make([]int, 0, len(r.streams))
	for userID := range r.streams {
		userIDs = append(userIDs, userID)
	}
	r.mu.Unlock()

	for _, userID := range userIDs {
		r.SendToUser(userID, event, data)
	}
}

// UserStreamCount reports how many open streams a user currently holds.
func (r *StreamRegistry) UserStreamCount(userID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams[userID])
}
