package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/gxmovies/storefront-client/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionChanged       EventType = "session_changed"
	EventNoticeRaised         EventType = "notice_raised"
	EventNotificationReceived EventType = "notification_received"
)

// Event represents something the mounted views may react to.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SessionChangedPayload carries the session state after a login, logout or name update.
type SessionChangedPayload struct {
	Identity    *domain.Identity `json:"identity,omitempty"`
	DisplayName string           `json:"display_name,omitempty"`
}

// NotificationReceivedPayload carries one server-pushed message.
type NotificationReceivedPayload struct {
	Message string `json:"message"`
}
