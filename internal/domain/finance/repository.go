package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	SaleID     *uuid.UUID
	Method     PaymentMethod
	From       *time.Time
	To         *time.Time
}

// PaymentRepository defines persistence for payment records
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentRecord, error)
	FindAll(ctx context.Context, filter PaymentFilter) ([]PaymentRecord, int64, error)
	// FindByAllocatedSale returns every payment with an allocation to the sale
	FindByAllocatedSale(ctx context.Context, saleID uuid.UUID) ([]PaymentRecord, error)
	Save(ctx context.Context, payment *PaymentRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextNumber(ctx context.Context, date time.Time) (string, error)
}
