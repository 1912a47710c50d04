package websocket

import "github.com/ytsafecheck/backend/internal/session"

// Notifier forwards session notices to the session's websocket clients.
type Notifier struct {
	hub *Hub
}

// NewNotifier creates a notifier publishing through hub.
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// Notify implements session.Notifier.
func (n *Notifier) Notify(sessionID string, notice session.Notice) {
	n.hub.Publish(&Message{
		Type:      TypeNotice,
		SessionID: sessionID,
		Notice:    &notice,
	})
}

// HasConnectedClients reports whether a session has any open connections.
func (n *Notifier) HasConnectedClients(sessionID string) bool {
	return n.hub.ClientCount(sessionID) > 0
}
