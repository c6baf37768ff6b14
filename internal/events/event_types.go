package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventContentCreated EventType = "content_created"
	EventContentUpdated EventType = "content_updated"
	EventContentDeleted EventType = "content_deleted"
)

// Event represents a change to a stored document.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Collection string    `json:"collection"`
	DocumentID string    `json:"document_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewContentEvent stamps a new event for a document change.
func NewContentEvent(eventType EventType, collection, documentID, actorID string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Collection: collection,
		DocumentID: documentID,
		ActorID:    actorID,
		Timestamp:  time.Now().UTC(),
	}
}
