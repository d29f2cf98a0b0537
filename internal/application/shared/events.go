package shared

import (
	"context"

	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// EventCollector gathers the events raised by aggregates during a
// transaction so they can be published once it has committed.
type EventCollector struct {
	events []shared.DomainEvent
}

// Collect takes the pending events of each aggregate and clears them
func (c *EventCollector) Collect(aggregates ...shared.AggregateRoot) {
	for _, a := range aggregates {
		if a == nil {
			continue
		}
		c.events = append(c.events, a.PendingEvents()...)
		a.ClearEvents()
	}
}

// Add appends events that are not attached to an aggregate
func (c *EventCollector) Add(events ...shared.DomainEvent) {
	c.events = append(c.events, events...)
}

// Events returns the collected events in raise order
func (c *EventCollector) Events() []shared.DomainEvent {
	return c.events
}

// Reset drops collected events, used when a transaction body is retried
// or rolled back
func (c *EventCollector) Reset() {
	c.events = nil
}

// Publish sends the collected events. A nil publisher is allowed. Failures
// are logged: the ledger change is already committed.
func (c *EventCollector) Publish(ctx context.Context, publisher shared.EventPublisher) {
	if publisher == nil || len(c.events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, c.events...); err != nil {
		logger.FromContext(ctx).Warn("failed to publish domain events",
			zap.Int("count", len(c.events)),
			zap.Error(err),
		)
	}
	c.events = nil
}
