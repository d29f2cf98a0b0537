package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appshared "github.com/sahelbuild/backend/internal/application/shared"
	"github.com/sahelbuild/backend/internal/domain/inventory"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// sourceSet loads each stock source of a sale once per transaction, so
// several lines drawing on the same source see each other's quantities.
type sourceSet struct {
	repos      appshared.TransactionalRepositories
	shipments  map[uuid.UUID]*procurement.Shipment
	stockUnits map[uuid.UUID]*inventory.StockUnit
	vehicles   map[uuid.UUID]*partner.PartnerVehicle
}

func newSourceSet(repos appshared.TransactionalRepositories) *sourceSet {
	return &sourceSet{
		repos:      repos,
		shipments:  make(map[uuid.UUID]*procurement.Shipment),
		stockUnits: make(map[uuid.UUID]*inventory.StockUnit),
		vehicles:   make(map[uuid.UUID]*partner.PartnerVehicle),
	}
}

func (s *sourceSet) shipment(ctx context.Context, id uuid.UUID) (*procurement.Shipment, error) {
	if found, ok := s.shipments[id]; ok {
		return found, nil
	}
	found, err := s.repos.Shipments().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.shipments[id] = found
	return found, nil
}

func (s *sourceSet) stockUnit(ctx context.Context, id uuid.UUID) (*inventory.StockUnit, error) {
	if found, ok := s.stockUnits[id]; ok {
		return found, nil
	}
	found, err := s.repos.StockUnits().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.stockUnits[id] = found
	return found, nil
}

func (s *sourceSet) vehicle(ctx context.Context, id uuid.UUID) (*partner.PartnerVehicle, error) {
	if found, ok := s.vehicles[id]; ok {
		return found, nil
	}
	found, err := s.repos.Vehicles().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.vehicles[id] = found
	return found, nil
}

// resolve turns a requested line into a priced sale line. Unit prices
// default to the stock unit list price for the buyer type, or the vehicle's
// consignment price. Shipment lines must be priced by the operator.
func (s *sourceSet) resolve(ctx context.Context, req SaleItemRequest, wholesale bool) (sales.ItemInput, error) {
	in := sales.ItemInput{
		SourceType:  sales.SourceType(req.SourceType),
		SourceID:    req.SourceID,
		Description: req.Description,
		Quantity:    req.Quantity,
	}
	if req.UnitPrice != nil {
		in.UnitPrice = *req.UnitPrice
	}

	switch in.SourceType {
	case sales.SourceShipment:
		shipment, err := s.shipment(ctx, req.SourceID)
		if err != nil {
			return in, err
		}
		if req.UnitPrice == nil {
			return in, shared.NewDomainError("PRICE_REQUIRED",
				fmt.Sprintf("A unit price is required for shipment %s", shipment.Code))
		}
		if in.Description == "" {
			in.Description = fmt.Sprintf("%s %s (%s)", shipment.Category, shipment.Category.QuantityUnit(), shipment.Code)
		}
	case sales.SourceStockUnit:
		unit, err := s.stockUnit(ctx, req.SourceID)
		if err != nil {
			return in, err
		}
		if req.UnitPrice == nil {
			in.UnitPrice = unit.DefaultPrice(wholesale)
		}
		if in.Description == "" {
			in.Description = fmt.Sprintf("%s %s (%s)", unit.Category, unit.Key, unit.ShipmentCode)
		}
	case sales.SourceVehicle:
		vehicle, err := s.vehicle(ctx, req.SourceID)
		if err != nil {
			return in, err
		}
		if req.UnitPrice == nil {
			in.UnitPrice = vehicle.UnitPrice
		}
		if in.Description == "" {
			in.Description = fmt.Sprintf("cement bag (%s %s)", vehicle.Code, vehicle.PlateNumber)
		}
	default:
		return in, shared.NewDomainError("INVALID_SOURCE", fmt.Sprintf("Unknown source type %q", req.SourceType))
	}
	return in, nil
}

// take books a recorded line on its source. Iron sold through a stock unit
// is also booked on its shipment so shipment revenue stays complete.
func (s *sourceSet) take(ctx context.Context, item sales.SaleItem, actor string) error {
	switch item.SourceType {
	case sales.SourceShipment:
		shipment, err := s.shipment(ctx, item.SourceID)
		if err != nil {
			return err
		}
		return shipment.RecordSale(item.Quantity, item.LineTotal, actor)
	case sales.SourceStockUnit:
		unit, err := s.stockUnit(ctx, item.SourceID)
		if err != nil {
			return err
		}
		if err := unit.Sell(item.Quantity); err != nil {
			return err
		}
		parent, err := s.shipment(ctx, unit.ShipmentID)
		if err != nil {
			return err
		}
		return parent.RecordStockUnitSale(item.Quantity, item.LineTotal, actor)
	case sales.SourceVehicle:
		vehicle, err := s.vehicle(ctx, item.SourceID)
		if err != nil {
			return err
		}
		return vehicle.SellBags(item.Quantity, item.LineTotal)
	}
	return shared.NewDomainError("INVALID_SOURCE", fmt.Sprintf("Unknown source type %q", item.SourceType))
}

// give reverses take for a deleted sale
func (s *sourceSet) give(ctx context.Context, item sales.SaleItem) error {
	switch item.SourceType {
	case sales.SourceShipment:
		shipment, err := s.shipment(ctx, item.SourceID)
		if err != nil {
			return err
		}
		return shipment.ReverseSale(item.Quantity, item.LineTotal)
	case sales.SourceStockUnit:
		unit, err := s.stockUnit(ctx, item.SourceID)
		if err != nil {
			return err
		}
		if err := unit.RestoreSale(item.Quantity); err != nil {
			return err
		}
		parent, err := s.shipment(ctx, unit.ShipmentID)
		if err != nil {
			return err
		}
		return parent.ReverseSale(item.Quantity, item.LineTotal)
	case sales.SourceVehicle:
		vehicle, err := s.vehicle(ctx, item.SourceID)
		if err != nil {
			return err
		}
		return vehicle.RestoreBags(item.Quantity, item.LineTotal)
	}
	return shared.NewDomainError("INVALID_SOURCE", fmt.Sprintf("Unknown source type %q", item.SourceType))
}

// save writes every touched source and collects their events
func (s *sourceSet) save(ctx context.Context, collector *appshared.EventCollector) error {
	for _, shipment := range s.shipments {
		if err := s.repos.Shipments().Save(ctx, shipment); err != nil {
			return err
		}
		collector.Collect(shipment)
	}
	for _, unit := range s.stockUnits {
		if err := s.repos.StockUnits().Save(ctx, unit); err != nil {
			return err
		}
		collector.Collect(unit)
	}
	for _, vehicle := range s.vehicles {
		if err := s.repos.Vehicles().Save(ctx, vehicle); err != nil {
			return err
		}
		collector.Collect(vehicle)
	}
	return nil
}
