package websocket

import (
	"encoding/json"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
)

// Message is the frame written to subscribers.
type Message struct {
	Type      domain.EventType `json:"type"`
	ProjectID uuid.UUID        `json:"projectId"`
	ActorID   uuid.UUID        `json:"actorId"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

func NewEventMessage(event domain.Event) (*Message, error) {
	msg := &Message{
		Type:      event.Type,
		ProjectID: event.ProjectID,
		ActorID:   event.ActorID,
		Timestamp: event.At.UnixMilli(),
	}
	if event.Payload != nil {
		payload, err := json.Marshal(event.Payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = payload
	}
	return msg, nil
}
