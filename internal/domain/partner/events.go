package partner

import (
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCustomer = "Customer"
	AggregateTypeVehicle  = "PartnerVehicle"
)

// Event type constants
const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeVehicleCreated  = "VehicleCreated"
	EventTypeVehicleClosed   = "VehicleClosed"
)

// CustomerCreatedEvent is raised when a customer is registered
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID    `json:"customer_id"`
	Code       string       `json:"code"`
	Name       string       `json:"name"`
	Type       CustomerType `json:"type"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		Code:            c.Code,
		Name:            c.Name,
		Type:            c.Type,
	}
}

// VehicleCreatedEvent is raised when a consignment vehicle is registered
type VehicleCreatedEvent struct {
	shared.BaseDomainEvent
	VehicleID   uuid.UUID `json:"vehicle_id"`
	Code        string    `json:"code"`
	PlateNumber string    `json:"plate_number"`
	TotalBags   string    `json:"total_bags"`
}

// NewVehicleCreatedEvent creates a new VehicleCreatedEvent
func NewVehicleCreatedEvent(v *PartnerVehicle) *VehicleCreatedEvent {
	return &VehicleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVehicleCreated, AggregateTypeVehicle, v.ID),
		VehicleID:       v.ID,
		Code:            v.Code,
		PlateNumber:     v.PlateNumber,
		TotalBags:       v.TotalBags.String(),
	}
}

// VehicleClosedEvent is raised when a consignment ends
type VehicleClosedEvent struct {
	shared.BaseDomainEvent
	VehicleID     uuid.UUID `json:"vehicle_id"`
	Code          string    `json:"code"`
	SoldBags      string    `json:"sold_bags"`
	RemainingBags string    `json:"remaining_bags"`
}

// NewVehicleClosedEvent creates a new VehicleClosedEvent
func NewVehicleClosedEvent(v *PartnerVehicle) *VehicleClosedEvent {
	return &VehicleClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVehicleClosed, AggregateTypeVehicle, v.ID),
		VehicleID:       v.ID,
		Code:            v.Code,
		SoldBags:        v.SoldBags.String(),
		RemainingBags:   v.RemainingBags().String(),
	}
}
