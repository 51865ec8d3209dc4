package shared

import (
	"fmt"
	"time"
)

// DomainEvent is an observable fact recorded by an aggregate. Events are
// persisted to the outbox table in the same transaction as the state
// change and relayed to the external notification dispatcher by the
// worker binary.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	AggregateID() string
}

// EventPayloader is implemented by events that expose extra fields for
// outbox serialization beyond the DomainEvent contract.
type EventPayloader interface {
	Payload() map[string]any
}

// ValidateEvent rejects structurally broken events before they reach the
// outbox table.
func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if event.AggregateID() == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}
	if event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}
	return nil
}

// BaseEvent provides the common event fields; subdomain events embed it.
type BaseEvent struct {
	name        string
	aggregateID string
	occurredOn  time.Time
	payload     map[string]any
}

// NewBaseEvent creates the embedded event core. payload may be nil.
func NewBaseEvent(name, aggregateID string, payload map[string]any) BaseEvent {
	return BaseEvent{
		name:        name,
		aggregateID: aggregateID,
		occurredOn:  time.Now(),
		payload:     payload,
	}
}

func (e BaseEvent) EventName() string       { return e.name }
func (e BaseEvent) OccurredOn() time.Time   { return e.occurredOn }
func (e BaseEvent) AggregateID() string     { return e.aggregateID }
func (e BaseEvent) Payload() map[string]any { return e.payload }
