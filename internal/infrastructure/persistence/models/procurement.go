package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

// ShipmentModel is the persistence model for the Shipment aggregate
type ShipmentModel struct {
	AggregateModel
	Code              string                     `gorm:"type:varchar(40);not null;uniqueIndex"`
	Category          procurement.Category       `gorm:"type:varchar(20);not null;index"`
	Origin            string                     `gorm:"type:char(2);not null"`
	Supplier          string                     `gorm:"type:varchar(200)"`
	BasePurchasePrice decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	TotalQuantity     decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	QuantitySold      decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	Revenue           decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	Status            procurement.ShipmentStatus `gorm:"type:varchar(30);not null;index"`
	OrderedAt         time.Time                  `gorm:"not null"`
	Notes             string                     `gorm:"type:text"`
	CreatedBy         string                     `gorm:"type:varchar(100);not null"`
	Lines             []ShipmentLineModel        `gorm:"foreignKey:ShipmentID"`
	Expenses          []ExpenseModel             `gorm:"foreignKey:ShipmentID"`
	Reception         *ReceptionModel            `gorm:"foreignKey:ShipmentID"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ShipmentLineModel is one ordered size of a shipment
type ShipmentLineModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	ShipmentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Key             string          `gorm:"column:line_key;type:varchar(50);not null"`
	OrderedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Position        int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ShipmentLineModel) TableName() string {
	return "shipment_lines"
}

// ExpenseModel is one entry of a shipment's cost ledger
type ExpenseModel struct {
	ID          uuid.UUID                `gorm:"type:uuid;primary_key"`
	ShipmentID  uuid.UUID                `gorm:"type:uuid;not null;index"`
	Date        time.Time                `gorm:"not null"`
	Stage       procurement.ExpenseStage `gorm:"type:varchar(20);not null"`
	Description string                   `gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Reference   string                   `gorm:"type:varchar(100)"`
	AddedBy     string                   `gorm:"type:varchar(100);not null"`
	Synthetic   bool                     `gorm:"not null;default:false"`
	CreatedAt   time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "shipment_expenses"
}

// ReceptionModel is the one-time reception record of a shipment
type ReceptionModel struct {
	ID                    uuid.UUID          `gorm:"type:uuid;primary_key"`
	ShipmentID            uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	ReceivedAt            time.Time          `gorm:"not null"`
	Location              string             `gorm:"type:varchar(200);not null"`
	ResponsiblePerson     string             `gorm:"type:varchar(100)"`
	ReceivedBy            string             `gorm:"type:varchar(100);not null"`
	CompensationRequested bool               `gorm:"not null;default:false"`
	DeductionApplied      bool               `gorm:"not null;default:false"`
	Notes                 string             `gorm:"type:text"`
	OffloadingCost        decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	WorkerCount           int                `gorm:"not null;default:0"`
	TotalReceived         decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	CreatedAt             time.Time          `gorm:"not null"`
	Discrepancies         []DiscrepancyModel `gorm:"foreignKey:ReceptionID"`
}

// TableName returns the table name for GORM
func (ReceptionModel) TableName() string {
	return "receptions"
}

// DiscrepancyModel compares ordered and received quantity for one line
type DiscrepancyModel struct {
	ID               uuid.UUID                     `gorm:"type:uuid;primary_key"`
	ReceptionID      uuid.UUID                     `gorm:"type:uuid;not null;index"`
	LineKey          string                        `gorm:"type:varchar(50);not null"`
	OrderedQuantity  decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	Difference       decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	Status           procurement.DiscrepancyStatus `gorm:"type:varchar(20);not null"`
	Position         int                           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DiscrepancyModel) TableName() string {
	return "reception_discrepancies"
}

// ShipmentModelFromDomain creates a persistence model with all children
func ShipmentModelFromDomain(s *procurement.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		Code:              s.Code,
		Category:          s.Category,
		Origin:            s.Origin,
		Supplier:          s.Supplier,
		BasePurchasePrice: s.Costs.BasePurchasePrice,
		TotalQuantity:     s.TotalQuantity,
		QuantitySold:      s.QuantitySold,
		Revenue:           s.Revenue,
		Status:            s.Status,
		OrderedAt:         s.OrderedAt,
		Notes:             s.Notes,
		CreatedBy:         s.CreatedBy,
		Lines:             make([]ShipmentLineModel, len(s.Lines)),
		Expenses:          make([]ExpenseModel, len(s.Costs.Expenses)),
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)

	for i, l := range s.Lines {
		m.Lines[i] = ShipmentLineModel{
			ID:              l.ID,
			ShipmentID:      s.ID,
			Key:             l.Key,
			OrderedQuantity: l.OrderedQuantity,
			UnitPrice:       l.UnitPrice,
			Amount:          l.Amount,
			Position:        i,
		}
	}
	for i, e := range s.Costs.Expenses {
		m.Expenses[i] = ExpenseModel{
			ID:          e.ID,
			ShipmentID:  s.ID,
			Date:        e.Date,
			Stage:       e.Stage,
			Description: e.Description,
			Amount:      e.Amount,
			Reference:   e.Reference,
			AddedBy:     e.AddedBy,
			Synthetic:   e.Synthetic,
			CreatedAt:   e.CreatedAt,
		}
	}
	if r := s.Reception; r != nil {
		rm := &ReceptionModel{
			ID:                    r.ID,
			ShipmentID:            s.ID,
			ReceivedAt:            r.ReceivedAt,
			Location:              r.Location,
			ResponsiblePerson:     r.ResponsiblePerson,
			ReceivedBy:            r.ReceivedBy,
			CompensationRequested: r.CompensationRequested,
			DeductionApplied:      r.DeductionApplied,
			Notes:                 r.Notes,
			OffloadingCost:        r.OffloadingCost,
			WorkerCount:           r.WorkerCount,
			TotalReceived:         r.TotalReceived,
			CreatedAt:             r.CreatedAt,
			Discrepancies:         make([]DiscrepancyModel, len(r.Discrepancies)),
		}
		for i, d := range r.Discrepancies {
			rm.Discrepancies[i] = DiscrepancyModel{
				ID:               d.ID,
				ReceptionID:      r.ID,
				LineKey:          d.LineKey,
				OrderedQuantity:  d.OrderedQuantity,
				ReceivedQuantity: d.ReceivedQuantity,
				Difference:       d.Difference,
				Status:           d.Status,
				Position:         i,
			}
		}
		m.Reception = rm
	}
	return m
}

// ToDomain converts the persistence model to a domain Shipment. Children
// must have been preloaded in display order.
func (m *ShipmentModel) ToDomain() *procurement.Shipment {
	s := &procurement.Shipment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Category:          m.Category,
		Origin:            m.Origin,
		Supplier:          m.Supplier,
		Lines:             make([]procurement.ShipmentLine, len(m.Lines)),
		Costs: procurement.CostLedger{
			BasePurchasePrice: m.BasePurchasePrice,
			Expenses:          make([]procurement.Expense, len(m.Expenses)),
		},
		TotalQuantity: m.TotalQuantity,
		QuantitySold:  m.QuantitySold,
		Revenue:       m.Revenue,
		Status:        m.Status,
		OrderedAt:     m.OrderedAt,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
	}
	for i, l := range m.Lines {
		s.Lines[i] = procurement.ShipmentLine{
			ID:              l.ID,
			ShipmentID:      l.ShipmentID,
			Key:             l.Key,
			OrderedQuantity: l.OrderedQuantity,
			UnitPrice:       l.UnitPrice,
			Amount:          l.Amount,
		}
	}
	for i, e := range m.Expenses {
		s.Costs.Expenses[i] = procurement.Expense{
			ID:          e.ID,
			ShipmentID:  e.ShipmentID,
			Date:        e.Date,
			Stage:       e.Stage,
			Description: e.Description,
			Amount:      e.Amount,
			Reference:   e.Reference,
			AddedBy:     e.AddedBy,
			Synthetic:   e.Synthetic,
			CreatedAt:   e.CreatedAt,
		}
	}
	if rm := m.Reception; rm != nil {
		r := &procurement.Reception{
			ID:                    rm.ID,
			ShipmentID:            rm.ShipmentID,
			ReceivedAt:            rm.ReceivedAt,
			Location:              rm.Location,
			ResponsiblePerson:     rm.ResponsiblePerson,
			ReceivedBy:            rm.ReceivedBy,
			CompensationRequested: rm.CompensationRequested,
			DeductionApplied:      rm.DeductionApplied,
			Notes:                 rm.Notes,
			OffloadingCost:        rm.OffloadingCost,
			WorkerCount:           rm.WorkerCount,
			TotalReceived:         rm.TotalReceived,
			CreatedAt:             rm.CreatedAt,
			Discrepancies:         make([]procurement.Discrepancy, len(rm.Discrepancies)),
		}
		for i, d := range rm.Discrepancies {
			r.Discrepancies[i] = procurement.Discrepancy{
				ID:               d.ID,
				ReceptionID:      d.ReceptionID,
				LineKey:          d.LineKey,
				OrderedQuantity:  d.OrderedQuantity,
				ReceivedQuantity: d.ReceivedQuantity,
				Difference:       d.Difference,
				Status:           d.Status,
			}
		}
		s.Reception = r
	}
	return s
}
