package service

import (
	"time"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
)

// EventPublisher receives project changes after they are committed.
type EventPublisher interface {
	Publish(event domain.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.Event) {}

func orNoop(events EventPublisher) EventPublisher {
	if events == nil {
		return noopPublisher{}
	}
	return events
}

func newEvent(t domain.EventType, projectID, actorID uuid.UUID, payload any) domain.Event {
	return domain.Event{
		Type:      t,
		ProjectID: projectID,
		ActorID:   actorID,
		Payload:   payload,
		At:        time.Now(),
	}
}
