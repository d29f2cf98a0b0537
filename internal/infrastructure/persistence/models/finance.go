package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for a PaymentRecord
type PaymentModel struct {
	AggregateModel
	Number      string                `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	SaleID      *uuid.UUID            `gorm:"type:uuid;index"`
	Date        time.Time             `gorm:"not null;index"`
	Amount      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Method      finance.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference   string                `gorm:"type:varchar(100)"`
	Notes       string                `gorm:"type:text"`
	ReceivedBy  string                `gorm:"type:varchar(100);not null"`
	Allocations []AllocationModel     `gorm:"foreignKey:PaymentID"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// AllocationModel links part of a payment to one sale
type AllocationModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Position  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (AllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain PaymentRecord
func (m *PaymentModel) ToDomain() *finance.PaymentRecord {
	p := &finance.PaymentRecord{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		CustomerID:        m.CustomerID,
		SaleID:            m.SaleID,
		Date:              m.Date,
		Amount:            m.Amount,
		Method:            m.Method,
		Reference:         m.Reference,
		Notes:             m.Notes,
		ReceivedBy:        m.ReceivedBy,
		Allocations:       make([]finance.Allocation, len(m.Allocations)),
	}
	for i, a := range m.Allocations {
		p.Allocations[i] = finance.Allocation{
			ID:        a.ID,
			PaymentID: a.PaymentID,
			SaleID:    a.SaleID,
			Amount:    a.Amount,
		}
	}
	return p
}

// PaymentModelFromDomain creates a persistence model from a domain PaymentRecord
func PaymentModelFromDomain(p *finance.PaymentRecord) *PaymentModel {
	m := &PaymentModel{
		Number:      p.Number,
		CustomerID:  p.CustomerID,
		SaleID:      p.SaleID,
		Date:        p.Date,
		Amount:      p.Amount,
		Method:      p.Method,
		Reference:   p.Reference,
		Notes:       p.Notes,
		ReceivedBy:  p.ReceivedBy,
		Allocations: make([]AllocationModel, len(p.Allocations)),
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	for i, a := range p.Allocations {
		m.Allocations[i] = AllocationModel{
			ID:        a.ID,
			PaymentID: p.ID,
			SaleID:    a.SaleID,
			Amount:    a.Amount,
			Position:  i,
		}
	}
	return m
}
