// file: realtime/hub_test.go

package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestHub_FanOutAcrossTransports covers the mixed-transport scenario: two
// sockets plus one stream for the same user all observe a send, and closing
// one socket leaves the remaining two connections receiving.
func TestHub_FanOutAcrossTransports(t *testing.T) {
	hub := NewHub(time.Minute)

	socketA := dialSocket(t, hub.Sockets, 1)
	socketB := dialSocket(t, hub.Sockets, 1)
	waitForCount(t, func() int { return hub.Sockets.UserConnectionCount(1) }, 2)

	streamRec, cancelStream, streamDone := openStream(t, hub.Streams, 1)

	hub.SendToUser(1, "x", map[string]interface{}{"v": 1})

	assert.Equal(t, "x", readEvent(t, socketA).Event)
	assert.Equal(t, "x", readEvent(t, socketB).Event)

	// Drop one socket; the other two connections keep receiving.
	socketA.Close()
	waitForCount(t, func() int { return hub.Sockets.UserConnectionCount(1) }, 1)

	hub.SendToUser(1, "x", map[string]interface{}{"v": 2})
	event := readEvent(t, socketB)
	assert.Equal(t, "x", event.Event)
	assert.Equal(t, map[string]interface{}{"v": float64(2)}, event.Data)

	cancelStream()
	select {
	case <-streamDone:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close")
	}

	body := streamRec.Body.String()
	assert.Contains(t, body, `data: {"v":1}`)
	assert.Contains(t, body, `data: {"v":2}`)
}
