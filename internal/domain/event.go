package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTaskCreated    EventType = "task.created"
	EventTaskEnriched   EventType = "task.enriched"
	EventTaskUpdated    EventType = "task.updated"
	EventTaskDeleted    EventType = "task.deleted"
	EventSubtaskUpdated EventType = "subtask.updated"
)

// Event is a change notification delivered to the owning user's listeners.
type Event struct {
	Type    EventType `json:"type"`
	UserID  uuid.UUID `json:"-"`
	TaskID  uuid.UUID `json:"task_id"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

func NewEvent(t EventType, userID, taskID uuid.UUID, payload any) Event {
	return Event{Type: t, UserID: userID, TaskID: taskID, Payload: payload, At: time.Now().UTC()}
}
