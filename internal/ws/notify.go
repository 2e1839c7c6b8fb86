package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is the JSON frame written to clients.
type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NotifyUser sends an event to every open connection of the user.
func (h *Hub) NotifyUser(userID uuid.UUID, event string, payload any) {
	if h == nil {
		return
	}
	b, err := json.Marshal(Event{
		Type:      event,
		Data:      payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Warn("ws encode failed", "event", event, "error", err)
		return
	}
	h.Send(userID, b)
}
