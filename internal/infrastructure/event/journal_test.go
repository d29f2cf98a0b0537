package event

import (
	"context"
	"testing"
	"time"

	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newJournalDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&JournalEntry{}))
	return db
}

func TestJournalHandler_RecordsEventsThroughBus(t *testing.T) {
	db := newJournalDB(t)
	journal := NewJournalHandler(db, zap.NewNop())
	bus := NewBus(zap.NewNop())
	bus.Subscribe(journal)

	ctx, _ := logger.WithActor(context.Background(), zap.NewNop(), "ngozi")
	first := stub("ShipmentCreated")
	second := stub("ShipmentExpenseAdded")
	second.Root = first.Root
	second.At = first.At.Add(time.Second)

	require.NoError(t, bus.Publish(ctx, first, second, stub("SaleRecorded")))

	history, err := journal.History(context.Background(), first.Root)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "ShipmentCreated", history[0].EventType)
	assert.Equal(t, "ShipmentExpenseAdded", history[1].EventType)
	assert.Equal(t, "Shipment", history[0].AggregateType)
	assert.Equal(t, "ngozi", history[0].Actor)
	assert.Contains(t, history[0].Payload, `"note":"posted"`)
}

func TestJournalHandler_DuplicateEventFails(t *testing.T) {
	db := newJournalDB(t)
	journal := NewJournalHandler(db, zap.NewNop())
	event := stub("PaymentApplied")

	require.NoError(t, journal.Handle(context.Background(), event))
	assert.Error(t, journal.Handle(context.Background(), event))
	assert.Nil(t, journal.EventTypes())
}
