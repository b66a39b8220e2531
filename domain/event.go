// Package domain holds the aggregate and event primitives that bridge business code to the
// mediator's publisher.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable fact raised by an aggregate. It is published as a notification
// keyed by its concrete type.
type Event interface {
	EventID() uuid.UUID
	OccurredAt() time.Time
}

// EventBase carries the identity and occurrence time of an event. Embed it in event structs.
type EventBase struct {
	ID uuid.UUID
	At time.Time
}

func NewEventBase() EventBase {
	return EventBase{ID: uuid.New(), At: time.Now().UTC()}
}

func (e EventBase) EventID() uuid.UUID    { return e.ID }
func (e EventBase) OccurredAt() time.Time { return e.At }
