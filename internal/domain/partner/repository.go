package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// CustomerFilter narrows customer listings
type CustomerFilter struct {
	shared.Filter
	Type     CustomerType
	Status   CustomerStatus
	Country  string
	OwesOnly bool
}

// CustomerRepository defines persistence for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByCode(ctx context.Context, code string) (*Customer, error)
	FindAll(ctx context.Context, filter CustomerFilter) ([]Customer, int64, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Save(ctx context.Context, customer *Customer) error
	NextCode(ctx context.Context) (string, error)
}

// VehicleFilter narrows vehicle listings
type VehicleFilter struct {
	shared.Filter
	Status VehicleStatus
}

// VehicleRepository defines persistence for partner vehicles
type VehicleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PartnerVehicle, error)
	FindByCode(ctx context.Context, code string) (*PartnerVehicle, error)
	FindAll(ctx context.Context, filter VehicleFilter) ([]PartnerVehicle, int64, error)
	Save(ctx context.Context, vehicle *PartnerVehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextCode(ctx context.Context) (string, error)
}
