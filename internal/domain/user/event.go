package user

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeCreated         EventType = "user.created"
	EventTypeUpdated         EventType = "user.updated"
	EventTypeDeleted         EventType = "user.deleted"
	EventTypeRestored        EventType = "user.restored"
	EventTypeSettingsUpdated EventType = "user.settings_updated"
)

// Event announces a committed lifecycle transition.
type Event struct {
	ID         uuid.UUID `json:"event_id"`
	Type       EventType `json:"event_type"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(t EventType, userID int64, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		UserID:     userID,
		OccurredAt: at.UTC(),
	}
}
