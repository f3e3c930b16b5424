package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a change inside a project.
type EventType string

const (
	EventTaskCreated    EventType = "task.created"
	EventTaskUpdated    EventType = "task.updated"
	EventTaskDeleted    EventType = "task.deleted"
	EventTaskStatus     EventType = "task.status"
	EventNoteCreated    EventType = "note.created"
	EventNoteDeleted    EventType = "note.deleted"
	EventTeamAdded      EventType = "team.added"
	EventTeamRemoved    EventType = "team.removed"
	EventProjectDeleted EventType = "project.deleted"
)

// Event is sent to the subscribers of a project.
type Event struct {
	Type      EventType `json:"type"`
	ProjectID uuid.UUID `json:"projectId"`
	ActorID   uuid.UUID `json:"actorId"`
	Payload   any       `json:"payload,omitempty"`
	At        time.Time `json:"at"`

	// Subject is the user a team event is about.
	Subject uuid.UUID `json:"-"`
}
