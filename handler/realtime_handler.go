// file: handler/realtime_handler.go

package handler

import (
	"go-campus-api/common"
	"go-campus-api/logger"
	"go-campus-api/realtime"
	"net/http"

	"github.com/gorilla/websocket"
)

// RealtimeHandler upgrades and registers live connections on both
// transports. Authentication happens before registration: a handshake that
// fails it is rejected and the connection never reaches a registry.
type RealtimeHandler struct {
	auth     AccessValidator
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(auth AccessValidator, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{
		auth: auth,
		hub:  hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the deployment edge.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Socket authenticates the handshake and registers a websocket connection.
// Browsers cannot set headers on websocket requests, so the token travels
// in the query string.
func (h *RealtimeHandler) Socket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		common.NewAppError(http.StatusUnauthorized, "Authentication token is required", nil).Send(w)
		return
	}

	claims, err := h.auth.ValidateAccess(token)
	if err != nil {
		common.FromError(err).Send(w)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.hub.Sockets.Register(claims.UserID, conn)
}

// Stream serves a long-lived SSE response for the authenticated user. It
// runs behind AuthMiddleware and blocks until the client disconnects.
func (h *RealtimeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		appErr.Send(w)
		return
	}

	if err := h.hub.Streams.Serve(userID, w, r); err != nil {
		common.NewAppError(http.StatusInternalServerError, "Streaming unsupported", err).Send(w)
	}
}
