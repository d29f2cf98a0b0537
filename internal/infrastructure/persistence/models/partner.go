package models

import (
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate
type CustomerModel struct {
	AggregateModel
	Code           string                 `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name           string                 `gorm:"type:varchar(200);not null;index"`
	Phone          string                 `gorm:"type:varchar(20);not null;uniqueIndex"`
	Country        valueobject.Country    `gorm:"type:char(2);not null"`
	Type           partner.CustomerType   `gorm:"type:varchar(20);not null;default:'retail'"`
	Address        string                 `gorm:"type:text"`
	Notes          string                 `gorm:"type:text"`
	Balance        decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPurchases decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPaid      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	CreditLimit    decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	CreditAllowed  bool                   `gorm:"not null;default:false"`
	Status         partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Phone:             m.Phone,
		Country:           m.Country,
		Type:              m.Type,
		Address:           m.Address,
		Notes:             m.Notes,
		Balance:           m.Balance,
		TotalPurchases:    m.TotalPurchases,
		TotalPaid:         m.TotalPaid,
		CreditLimit:       m.CreditLimit,
		CreditAllowed:     m.CreditAllowed,
		Status:            m.Status,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Code:           c.Code,
		Name:           c.Name,
		Phone:          c.Phone,
		Country:        c.Country,
		Type:           c.Type,
		Address:        c.Address,
		Notes:          c.Notes,
		Balance:        c.Balance,
		TotalPurchases: c.TotalPurchases,
		TotalPaid:      c.TotalPaid,
		CreditLimit:    c.CreditLimit,
		CreditAllowed:  c.CreditAllowed,
		Status:         c.Status,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// VehicleModel is the persistence model for a consignment partner vehicle
type VehicleModel struct {
	AggregateModel
	Code        string                `gorm:"type:varchar(20);not null;uniqueIndex"`
	PlateNumber string                `gorm:"type:varchar(20);not null;index"`
	PartnerName string                `gorm:"type:varchar(200);not null"`
	DriverName  string                `gorm:"type:varchar(100)"`
	DriverPhone string                `gorm:"type:varchar(20)"`
	ShipmentID  *uuid.UUID            `gorm:"type:uuid;index"`
	TotalBags   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	SoldBags    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Revenue     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PINHash     string                `gorm:"column:pin_hash;type:varchar(100);not null"`
	Status      partner.VehicleStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (VehicleModel) TableName() string {
	return "partner_vehicles"
}

// ToDomain converts the persistence model to a domain PartnerVehicle
func (m *VehicleModel) ToDomain() *partner.PartnerVehicle {
	return &partner.PartnerVehicle{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		PlateNumber:       m.PlateNumber,
		PartnerName:       m.PartnerName,
		DriverName:        m.DriverName,
		DriverPhone:       m.DriverPhone,
		ShipmentID:        m.ShipmentID,
		TotalBags:         m.TotalBags,
		SoldBags:          m.SoldBags,
		UnitPrice:         m.UnitPrice,
		Revenue:           m.Revenue,
		PINHash:           m.PINHash,
		Status:            m.Status,
	}
}

// VehicleModelFromDomain creates a persistence model from a domain PartnerVehicle
func VehicleModelFromDomain(v *partner.PartnerVehicle) *VehicleModel {
	m := &VehicleModel{
		Code:        v.Code,
		PlateNumber: v.PlateNumber,
		PartnerName: v.PartnerName,
		DriverName:  v.DriverName,
		DriverPhone: v.DriverPhone,
		ShipmentID:  v.ShipmentID,
		TotalBags:   v.TotalBags,
		SoldBags:    v.SoldBags,
		UnitPrice:   v.UnitPrice,
		Revenue:     v.Revenue,
		PINHash:     v.PINHash,
		Status:      v.Status,
	}
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	return m
}
