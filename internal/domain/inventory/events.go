package inventory

import (
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// AggregateTypeStockUnit is the aggregate type of stock unit events
const AggregateTypeStockUnit = "StockUnit"

// EventTypeStockUnitDepleted is raised when the last quantity of a unit is sold
const EventTypeStockUnitDepleted = "StockUnitDepleted"

// StockUnitDepletedEvent is raised when a stock unit runs out
type StockUnitDepletedEvent struct {
	shared.BaseDomainEvent
	StockUnitID  uuid.UUID `json:"stock_unit_id"`
	ShipmentID   uuid.UUID `json:"shipment_id"`
	ShipmentCode string    `json:"shipment_code"`
	Key          string    `json:"key"`
	QuantitySold string    `json:"quantity_sold"`
}

// NewStockUnitDepletedEvent creates a new StockUnitDepletedEvent
func NewStockUnitDepletedEvent(u *StockUnit) *StockUnitDepletedEvent {
	return &StockUnitDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockUnitDepleted, AggregateTypeStockUnit, u.ID),
		StockUnitID:     u.ID,
		ShipmentID:      u.ShipmentID,
		ShipmentCode:    u.ShipmentCode,
		Key:             u.Key,
		QuantitySold:    u.QuantitySold.String(),
	}
}
