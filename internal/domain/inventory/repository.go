package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// StockUnitFilter narrows stock unit listings
type StockUnitFilter struct {
	shared.Filter
	ShipmentID *uuid.UUID
	Category   string
	Status     StockUnitStatus
	Key        string
}

// StockUnitRepository defines persistence for stock units
type StockUnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockUnit, error)
	FindAll(ctx context.Context, filter StockUnitFilter) ([]StockUnit, int64, error)
	FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]StockUnit, error)
	Save(ctx context.Context, unit *StockUnit) error
	SaveBatch(ctx context.Context, units []*StockUnit) error
}
