package models

import (
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/inventory"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

// StockUnitModel is the persistence model for a sellable stock unit
type StockUnitModel struct {
	AggregateModel
	ShipmentID     uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_stock_unit_shipment_key,priority:1"`
	ShipmentCode   string                    `gorm:"type:varchar(40);not null"`
	Category       procurement.Category      `gorm:"type:varchar(20);not null;index"`
	Key            string                    `gorm:"column:unit_key;type:varchar(50);not null;uniqueIndex:idx_stock_unit_shipment_key,priority:2"`
	Quantity       decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	QuantitySold   decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	CostPerUnit    decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	WholesalePrice decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	RetailPrice    decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Status         inventory.StockUnitStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (StockUnitModel) TableName() string {
	return "stock_units"
}

// ToDomain converts the persistence model to a domain StockUnit
func (m *StockUnitModel) ToDomain() *inventory.StockUnit {
	return &inventory.StockUnit{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ShipmentID:        m.ShipmentID,
		ShipmentCode:      m.ShipmentCode,
		Category:          m.Category,
		Key:               m.Key,
		Quantity:          m.Quantity,
		QuantitySold:      m.QuantitySold,
		CostPerUnit:       m.CostPerUnit,
		WholesalePrice:    m.WholesalePrice,
		RetailPrice:       m.RetailPrice,
		Status:            m.Status,
	}
}

// StockUnitModelFromDomain creates a persistence model from a domain StockUnit
func StockUnitModelFromDomain(u *inventory.StockUnit) *StockUnitModel {
	m := &StockUnitModel{
		ShipmentID:     u.ShipmentID,
		ShipmentCode:   u.ShipmentCode,
		Category:       u.Category,
		Key:            u.Key,
		Quantity:       u.Quantity,
		QuantitySold:   u.QuantitySold,
		CostPerUnit:    u.CostPerUnit,
		WholesalePrice: u.WholesalePrice,
		RetailPrice:    u.RetailPrice,
		Status:         u.Status,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}
