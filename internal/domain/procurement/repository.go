package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// ShipmentFilter narrows shipment listings
type ShipmentFilter struct {
	shared.Filter
	Category Category
	Status   ShipmentStatus
	Origin   string
}

// ShipmentRepository persists shipments together with their lines,
// expenses and reception.
type ShipmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindByCode(ctx context.Context, code string) (*Shipment, error)
	FindAll(ctx context.Context, filter ShipmentFilter) ([]Shipment, int64, error)
	// Save inserts or updates the shipment. Expenses missing from the
	// aggregate are deleted, so removal round-trips.
	Save(ctx context.Context, shipment *Shipment) error
	// NextCode returns the next free code for origin, category and day
	NextCode(ctx context.Context, origin string, category Category, date time.Time) (string, error)
}
