package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JournalEntry is one committed ledger event, kept as an append-only audit trail
type JournalEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType     string    `gorm:"type:varchar(64);not null;index"`
	AggregateType string    `gorm:"type:varchar(32);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Actor         string    `gorm:"type:varchar(100)"`
	Payload       string    `gorm:"type:text;not null"`
	OccurredAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JournalEntry) TableName() string {
	return "event_journal"
}

// JournalHandler records every published event in the event_journal table
type JournalHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewJournalHandler creates a wildcard handler writing to db
func NewJournalHandler(db *gorm.DB, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{db: db, logger: logger.Named("journal")}
}

// EventTypes returns nil so the handler receives all events
func (h *JournalHandler) EventTypes() []string {
	return nil
}

// Handle serializes the event and appends it to the journal
func (h *JournalHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", event.EventType(), err)
	}

	entry := &JournalEntry{
		ID:            event.EventID(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		Actor:         logger.GetActor(ctx),
		Payload:       string(payload),
		OccurredAt:    event.OccurredAt(),
	}
	if err := h.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}

	logger.Enrich(ctx, h.logger).Info("ledger event",
		zap.String("event_type", entry.EventType),
		zap.String("aggregate_type", entry.AggregateType),
		zap.String("aggregate_id", entry.AggregateID.String()),
	)
	return nil
}

// History returns the journal of one aggregate, oldest first
func (h *JournalHandler) History(ctx context.Context, aggregateID uuid.UUID) ([]JournalEntry, error) {
	var entries []JournalEntry
	err := h.db.WithContext(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("occurred_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return entries, nil
}
