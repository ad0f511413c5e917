package progress

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Access is gated by the auth middleware in front of this handler.
		return true
	},
}

// Handler handles WebSocket upgrade requests for the progress feed
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new progress feed handler
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// ServeHTTP upgrades the connection and attaches it to the hub
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := NewClient(h.hub, conn, h.logger)
	h.hub.register <- client
	client.Start()
}
