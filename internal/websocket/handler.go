package websocket

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
	"github.com/ytsafecheck/backend/internal/session"
)

// Sessions looks up sessions by ID. *session.Store implements it.
type Sessions interface {
	Get(id string) (*session.Session, bool)
}

// Handler handles WebSocket connections.
type Handler struct {
	hub      *Hub
	sessions Sessions
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. allowedOrigins lists the
// origins that may connect; "*" or an empty list allows any.
func NewHandler(hub *Hub, sessions Sessions, allowedOrigins []string) *Handler {
	return &Handler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ServeWS handles GET /api/v1/sessions/{id}/ws. The current session state
// is sent first, then every notice the session emits.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) error {
	sessionID := r.PathValue("id")
	s, ok := h.sessions.Get(sessionID)
	if !ok {
		return apperrors.SessionNotFound().WithDetails(map[string]any{"session_id": sessionID})
	}

	// Upgrade writes its own error response
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.Warn(r.Context(), "websocket upgrade failed", map[string]any{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil
	}

	client := NewClient(h.hub, conn, sessionID)
	state := s.State()
	client.send <- &Message{Type: TypeState, SessionID: sessionID, State: &state}
	if !h.hub.Register(client) {
		conn.Close()
		return nil
	}

	// Start the client's read and write pumps
	go client.WritePump()
	go client.ReadPump()
	return nil
}

// GetHub returns the hub instance for external access.
func (h *Handler) GetHub() *Hub {
	return h.hub
}
