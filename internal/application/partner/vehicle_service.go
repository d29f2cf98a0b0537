package partner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appshared "github.com/sahelbuild/backend/internal/application/shared"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ActorRevoker invalidates every token already issued to an actor
type ActorRevoker interface {
	InvalidateActor(ctx context.Context, actor string, ttl time.Duration) error
}

// VehicleService is the admin side of consignment vehicles
type VehicleService struct {
	vehicleRepo    partner.VehicleRepository
	saleRepo       sales.SaleRepository
	defaultCountry valueobject.Country
	eventPublisher shared.EventPublisher
	revoker        ActorRevoker
	tokenTTL       time.Duration
}

// NewVehicleService creates a new VehicleService
func NewVehicleService(vehicleRepo partner.VehicleRepository, saleRepo sales.SaleRepository, defaultCountry valueobject.Country) *VehicleService {
	return &VehicleService{
		vehicleRepo:    vehicleRepo,
		saleRepo:       saleRepo,
		defaultCountry: defaultCountry,
	}
}

// SetEventPublisher sets the event publisher
func (s *VehicleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRevoker sets how outstanding portal tokens are revoked. ttl is the
// portal token lifetime.
func (s *VehicleService) SetRevoker(revoker ActorRevoker, ttl time.Duration) {
	s.revoker = revoker
	s.tokenTTL = ttl
}

// Create registers a vehicle and its portal PIN
func (s *VehicleService) Create(ctx context.Context, req CreateVehicleRequest) (*VehicleResponse, error) {
	country := s.defaultCountry
	if req.Country != "" {
		parsed, err := valueobject.ParseCountry(req.Country)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_COUNTRY", err.Error())
		}
		country = parsed
	}

	code, err := s.vehicleRepo.NextCode(ctx)
	if err != nil {
		return nil, err
	}
	vehicle, err := partner.NewPartnerVehicle(code, partner.VehicleInput{
		PlateNumber: req.PlateNumber,
		PartnerName: req.PartnerName,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
		Country:     country,
		ShipmentID:  req.ShipmentID,
		TotalBags:   req.TotalBags,
		UnitPrice:   req.UnitPrice,
		PIN:         req.PIN,
	})
	if err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, err
	}
	s.publish(ctx, vehicle)

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// GetByID retrieves a vehicle
func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// List retrieves vehicles with filtering and pagination
func (s *VehicleService) List(ctx context.Context, filter VehicleListFilter) ([]VehicleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	vehicles, total, err := s.vehicleRepo.FindAll(ctx, partner.VehicleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status: partner.VehicleStatus(filter.Status),
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]VehicleResponse, len(vehicles))
	for i := range vehicles {
		responses[i] = ToVehicleResponse(&vehicles[i])
	}
	return responses, total, nil
}

// ResetPIN replaces the portal PIN and signs the partner out
func (s *VehicleService) ResetPIN(ctx context.Context, id uuid.UUID, req ResetPINRequest) error {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := vehicle.ResetPIN(req.PIN); err != nil {
		return err
	}
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return err
	}
	s.revoke(ctx, vehicle)
	return nil
}

// Close ends the consignment; no further bags can be sold off the vehicle
func (s *VehicleService) Close(ctx context.Context, id uuid.UUID) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := vehicle.Close(); err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, err
	}
	s.publish(ctx, vehicle)
	s.revoke(ctx, vehicle)

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// Delete removes a vehicle no sale refers to
func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	used, err := s.saleRepo.ExistsBySource(ctx, sales.SourceVehicle, id)
	if err != nil {
		return err
	}
	if used {
		return shared.NewDomainError("VEHICLE_IN_USE",
			fmt.Sprintf("Vehicle %s has recorded sales and cannot be deleted", vehicle.Code))
	}
	if err := s.vehicleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.revoke(ctx, vehicle)
	return nil
}

// revoke signs the partner out. A revocation failure is logged; the change
// itself is already stored.
func (s *VehicleService) revoke(ctx context.Context, vehicle *partner.PartnerVehicle) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.InvalidateActor(ctx, vehicle.Actor(), s.tokenTTL); err != nil {
		logger.FromContext(ctx).Warn("failed to revoke portal tokens",
			zap.String("vehicle", vehicle.Code),
			zap.Error(err),
		)
	}
}

func (s *VehicleService) publish(ctx context.Context, vehicle *partner.PartnerVehicle) {
	var collector appshared.EventCollector
	collector.Collect(vehicle)
	collector.Publish(ctx, s.eventPublisher)
}
