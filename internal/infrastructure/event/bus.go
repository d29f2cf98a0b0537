package event

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sahelbuild/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// allEvents keys the handlers that receive every event type.
const allEvents = "*"

// Bus delivers domain events to in-process handlers, synchronously and in
// subscription order. A failing or panicking handler is logged and skipped;
// Publish itself never fails.
type Bus struct {
	log *zap.Logger

	mu     sync.RWMutex
	byType map[string][]shared.EventHandler
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{log: log, byType: map[string][]shared.EventHandler{}}
}

// Subscribe routes the given event types to handler, or the types the
// handler declares when none are given. A handler declaring none receives
// everything.
func (b *Bus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	if len(eventTypes) == 0 {
		eventTypes = []string{allEvents}
	}

	b.mu.Lock()
	for _, t := range eventTypes {
		b.byType[t] = append(b.byType[t], handler)
	}
	b.mu.Unlock()
	b.log.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *Bus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t, hs := range b.byType {
		hs = slices.DeleteFunc(hs, func(h shared.EventHandler) bool { return h == handler })
		if len(hs) == 0 {
			delete(b.byType, t)
			continue
		}
		b.byType[t] = hs
	}
}

// handlersFor lists the handlers of eventType, then the catch-all ones.
func (b *Bus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Concat(b.byType[eventType], b.byType[allEvents])
}

func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		for _, h := range b.handlersFor(e.EventType()) {
			if err := deliver(ctx, h, e); err != nil {
				b.log.Error("Event handler failed",
					zap.String("event_type", e.EventType()),
					zap.Stringer("event_id", e.EventID()),
					zap.Stringer("aggregate_id", e.AggregateID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func deliver(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*Bus)(nil)
