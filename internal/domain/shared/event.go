package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about one aggregate, published after the change
// that raised it has committed.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent carries the envelope fields; concrete events embed it and
// add their payload.
type BaseDomainEvent struct {
	ID       uuid.UUID `json:"id"`
	Kind     string    `json:"type"`
	At       time.Time `json:"occurred_at"`
	Root     uuid.UUID `json:"aggregate_id"`
	RootType string    `json:"aggregate_type"`
}

func NewBaseDomainEvent(kind, rootType string, root uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{ID: uuid.New(), Kind: kind, At: time.Now(), Root: root, RootType: rootType}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Kind }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Root }
func (e *BaseDomainEvent) AggregateType() string  { return e.RootType }

// EventHandler reacts to published events. EventTypes lists the types it
// wants; an empty list means all of them.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

type EventBus interface {
	EventPublisher
	EventSubscriber
}
