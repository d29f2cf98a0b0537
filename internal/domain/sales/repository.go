package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// SaleFilter narrows sale listings
type SaleFilter struct {
	shared.Filter
	CustomerID    *uuid.UUID
	VehicleID     *uuid.UUID
	PaymentStatus PaymentStatus
	From          *time.Time
	To            *time.Time
}

// SaleRepository defines persistence for sales
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByNumber(ctx context.Context, number string) (*Sale, error)
	FindAll(ctx context.Context, filter SaleFilter) ([]Sale, int64, error)
	// FindOpenByCustomer returns unpaid and partial sales, oldest sale date
	// first, ties broken by creation time.
	FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]Sale, error)
	ExistsBySource(ctx context.Context, sourceType SourceType, sourceID uuid.UUID) (bool, error)
	Save(ctx context.Context, sale *Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextNumber(ctx context.Context, date time.Time) (string, error)
}
