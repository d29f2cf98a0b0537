package inventory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Price multipliers applied to cost per unit when stock units are derived
var (
	WholesaleMultiplier = decimal.RequireFromString("1.15")
	RetailMultiplier    = decimal.RequireFromString("1.30")
)

// StockUnitStatus represents the status of a stock unit
type StockUnitStatus string

const (
	StockUnitStatusInStock  StockUnitStatus = "in_stock"
	StockUnitStatusDepleted StockUnitStatus = "depleted"
)

// IsValid checks if the status is valid
func (s StockUnitStatus) IsValid() bool {
	return s == StockUnitStatusInStock || s == StockUnitStatusDepleted
}

// StockUnit is sellable inventory derived from one received line of a
// shipment (one iron diameter). Prices are fixed at derivation time.
type StockUnit struct {
	shared.BaseAggregateRoot
	ShipmentID     uuid.UUID
	ShipmentCode   string
	Category       procurement.Category
	Key            string
	Quantity       decimal.Decimal
	QuantitySold   decimal.Decimal
	CostPerUnit    decimal.Decimal
	WholesalePrice decimal.Decimal
	RetailPrice    decimal.Decimal
	Status         StockUnitStatus
}

// NewStockUnit creates a stock unit priced from costPerUnit
func NewStockUnit(shipmentID uuid.UUID, shipmentCode string, category procurement.Category, key string, quantity, costPerUnit decimal.Decimal) (*StockUnit, error) {
	if shipmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHIPMENT", "Shipment ID cannot be empty")
	}
	if strings.TrimSpace(key) == "" {
		return nil, shared.NewDomainError("INVALID_KEY", "Stock unit key cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Stock unit quantity must be positive")
	}
	if costPerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost per unit cannot be negative")
	}

	return &StockUnit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShipmentID:        shipmentID,
		ShipmentCode:      shipmentCode,
		Category:          category,
		Key:               key,
		Quantity:          quantity,
		QuantitySold:      decimal.Zero,
		CostPerUnit:       costPerUnit,
		WholesalePrice:    valueobject.ApplyMultiplier(costPerUnit, WholesaleMultiplier),
		RetailPrice:       valueobject.ApplyMultiplier(costPerUnit, RetailMultiplier),
		Status:            StockUnitStatusInStock,
	}, nil
}

// DeriveFromReception creates one stock unit per reception row that
// received goods. Every unit uses the shipment-wide cost per unit computed
// after the reception, so the offloading expense is already included.
func DeriveFromReception(s *procurement.Shipment) ([]*StockUnit, error) {
	if !s.Category.SellsThroughInventory() {
		return nil, nil
	}
	if s.Reception == nil {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Shipment %s has no reception", s.Code))
	}

	costPerUnit := s.CostPerUnit()
	rows := s.Reception.ReceivedRows()
	units := make([]*StockUnit, 0, len(rows))
	for _, row := range rows {
		unit, err := NewStockUnit(s.ID, s.Code, s.Category, row.LineKey, row.ReceivedQuantity, costPerUnit)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

// Remaining returns quantity still on hand
func (u *StockUnit) Remaining() decimal.Decimal {
	return u.Quantity.Sub(u.QuantitySold)
}

// DefaultPrice returns the list price for a wholesale or retail buyer
func (u *StockUnit) DefaultPrice(wholesale bool) decimal.Decimal {
	if wholesale {
		return u.WholesalePrice
	}
	return u.RetailPrice
}

// Sell takes quantity out of the unit
func (u *StockUnit) Sell(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Sale quantity must be positive")
	}
	if quantity.GreaterThan(u.Remaining()) {
		return shared.NewDomainError("STOCK_EXCEEDED",
			fmt.Sprintf("Stock unit %s %s has %s left", u.ShipmentCode, u.Key, u.Remaining().String()))
	}
	u.QuantitySold = u.QuantitySold.Add(quantity)
	u.IncrementVersion()
	if !u.Remaining().IsPositive() {
		u.Status = StockUnitStatusDepleted
		u.Raise(NewStockUnitDepletedEvent(u))
	}
	return nil
}

// RestoreSale puts back quantity from a deleted sale
func (u *StockUnit) RestoreSale(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity.GreaterThan(u.QuantitySold) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot restore more than was sold")
	}
	u.QuantitySold = u.QuantitySold.Sub(quantity)
	u.Status = StockUnitStatusInStock
	u.IncrementVersion()
	return nil
}

// IsDepleted reports whether nothing is left
func (u *StockUnit) IsDepleted() bool {
	return u.Status == StockUnitStatusDepleted
}
