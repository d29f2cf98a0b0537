package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// TestEvent is an event no ledger handler subscribes to.
type TestEvent struct {
	shared.BaseDomainEvent
}

func NewTestEvent(eventType string, aggregateID uuid.UUID) *TestEvent {
	return &TestEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", aggregateID)}
}

// RecordingPublisher keeps whatever services publish so tests can assert on
// the events raised by a command.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

// SetError makes every later Publish fail with err.
func (p *RecordingPublisher) SetError(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

// Types lists the published event types in publish order.
func (p *RecordingPublisher) Types() []string {
	events := p.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

var _ shared.EventPublisher = (*RecordingPublisher)(nil)
