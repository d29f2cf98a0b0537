package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeSale is the aggregate type for sales
const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSaleRecorded = "SaleRecorded"
	EventTypeSaleDeleted  = "SaleDeleted"
)

// SaleRecordedEvent is raised when an invoice is recorded
type SaleRecordedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	Number     string          `json:"number"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	SaleDate   time.Time       `json:"sale_date"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
	SoldBy     string          `json:"sold_by"`
}

// NewSaleRecordedEvent creates a new SaleRecordedEvent
func NewSaleRecordedEvent(s *Sale) *SaleRecordedEvent {
	return &SaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRecorded, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Number:          s.Number,
		CustomerID:      s.CustomerID,
		SaleDate:        s.SaleDate,
		Total:           s.Total,
		ItemCount:       len(s.Items),
		SoldBy:          s.SoldBy,
	}
}

// SaleDeletedEvent is raised after an admin removed a sale
type SaleDeletedEvent struct {
	shared.BaseDomainEvent
	SaleID    uuid.UUID       `json:"sale_id"`
	Number    string          `json:"number"`
	Total     decimal.Decimal `json:"total"`
	DeletedBy string          `json:"deleted_by"`
}

// NewSaleDeletedEvent creates a new SaleDeletedEvent
func NewSaleDeletedEvent(s *Sale, deletedBy string) *SaleDeletedEvent {
	return &SaleDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleDeleted, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Number:          s.Number,
		Total:           s.Total,
		DeletedBy:       deletedBy,
	}
}
