package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate (an invoice)
type SaleModel struct {
	AggregateModel
	Number        string              `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerID    *uuid.UUID          `gorm:"type:uuid;index"`
	SaleDate      time.Time           `gorm:"not null;index"`
	Subtotal      decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Discount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Total         decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	AmountPaid    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	AmountDue     decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaymentStatus sales.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	SoldBy        string              `gorm:"type:varchar(100);not null"`
	Notes         string              `gorm:"type:text"`
	Items         []SaleItemModel     `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is one line of a sale
type SaleItemModel struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	SourceType  sales.SourceType `gorm:"type:varchar(20);not null;index:idx_sale_item_source,priority:1"`
	SourceID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_sale_item_source,priority:2"`
	Description string           `gorm:"type:varchar(300)"`
	Quantity    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Position    int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain Sale
func (m *SaleModel) ToDomain() *sales.Sale {
	s := &sales.Sale{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		CustomerID:        m.CustomerID,
		SaleDate:          m.SaleDate,
		Items:             make([]sales.SaleItem, len(m.Items)),
		Subtotal:          m.Subtotal,
		Discount:          m.Discount,
		Total:             m.Total,
		AmountPaid:        m.AmountPaid,
		AmountDue:         m.AmountDue,
		PaymentStatus:     m.PaymentStatus,
		SoldBy:            m.SoldBy,
		Notes:             m.Notes,
	}
	for i, it := range m.Items {
		s.Items[i] = sales.SaleItem{
			ID:          it.ID,
			SaleID:      it.SaleID,
			SourceType:  it.SourceType,
			SourceID:    it.SourceID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		}
	}
	return s
}

// SaleModelFromDomain creates a persistence model from a domain Sale
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{
		Number:        s.Number,
		CustomerID:    s.CustomerID,
		SaleDate:      s.SaleDate,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		AmountPaid:    s.AmountPaid,
		AmountDue:     s.AmountDue,
		PaymentStatus: s.PaymentStatus,
		SoldBy:        s.SoldBy,
		Notes:         s.Notes,
		Items:         make([]SaleItemModel, len(s.Items)),
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	for i, it := range s.Items {
		m.Items[i] = SaleItemModel{
			ID:          it.ID,
			SaleID:      s.ID,
			SourceType:  it.SourceType,
			SourceID:    it.SourceID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
			Position:    i,
		}
	}
	return m
}
