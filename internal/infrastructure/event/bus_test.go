package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubEvent struct {
	shared.BaseDomainEvent
	Note string `json:"note"`
}

func stub(eventType string) *stubEvent {
	return &stubEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Shipment", uuid.New()), Note: "posted"}
}

// recorder counts deliveries and can be told to fail or panic.
type recorder struct {
	types []string
	err   error
	panic bool

	mu   sync.Mutex
	seen []shared.DomainEvent
}

func (r *recorder) Handle(_ context.Context, e shared.DomainEvent) error {
	r.mu.Lock()
	r.seen = append(r.seen, e)
	r.mu.Unlock()
	if r.panic {
		panic("printer on fire")
	}
	return r.err
}

func (r *recorder) EventTypes() []string { return r.types }

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestBus_DeclaredTypes(t *testing.T) {
	bus := NewBus(zap.NewNop())
	h := &recorder{types: []string{"ReceptionConfirmed"}}
	bus.Subscribe(h)

	first := stub("ReceptionConfirmed")
	require.NoError(t, bus.Publish(context.Background(), first, stub("ReceptionConfirmed"), stub("SaleRecorded")))

	assert.Equal(t, 2, h.count())
	assert.Same(t, first, h.seen[0])
}

func TestBus_Routing(t *testing.T) {
	bus := NewBus(zap.NewNop())
	sales, payments, everything := &recorder{}, &recorder{}, &recorder{}
	bus.Subscribe(everything)
	bus.Subscribe(sales, "SaleRecorded", "SaleDeleted")
	bus.Subscribe(payments, "PaymentApplied")

	require.NoError(t, bus.Publish(context.Background(), stub("SaleRecorded"), stub("SaleDeleted")))

	assert.Equal(t, 2, sales.count())
	assert.Zero(t, payments.count())
	assert.Equal(t, 2, everything.count())

	hs := bus.handlersFor("PaymentApplied")
	require.Len(t, hs, 2)
	assert.Same(t, payments, hs[0], "typed handlers run before catch-all ones")
	assert.Same(t, everything, hs[1])
}

func TestBus_FailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewBus(zap.New(core))

	failing := &recorder{types: []string{"SaleRecorded"}, err: errors.New("journal unavailable")}
	panicking := &recorder{types: []string{"SaleRecorded"}, panic: true}
	healthy := &recorder{types: []string{"SaleRecorded"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), stub("SaleRecorded")))

	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())

	entries := logs.FilterMessage("Event handler failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "journal unavailable", entries[0].ContextMap()["error"])
	assert.Equal(t, "handler panicked: printer on fire", entries[1].ContextMap()["error"])
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())
	h := &recorder{}
	other := &recorder{}
	bus.Subscribe(h, "SaleRecorded", "PaymentApplied")
	bus.Subscribe(h)
	bus.Subscribe(other, "SaleRecorded")

	bus.Unsubscribe(h)
	require.NoError(t, bus.Publish(context.Background(), stub("SaleRecorded"), stub("PaymentApplied")))

	assert.Zero(t, h.count())
	assert.Equal(t, 1, other.count())
	assert.NotContains(t, bus.byType, "PaymentApplied")
	assert.NotContains(t, bus.byType, allEvents)
}
