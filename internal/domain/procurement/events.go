package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeShipment = "Shipment"

// Event type constants
const (
	EventTypeShipmentCreated       = "ShipmentCreated"
	EventTypeShipmentStatusChanged = "ShipmentStatusChanged"
	EventTypeExpenseAdded          = "ShipmentExpenseAdded"
	EventTypeExpenseRemoved        = "ShipmentExpenseRemoved"
	EventTypeReceptionConfirmed    = "ReceptionConfirmed"
)

// ShipmentCreatedEvent is raised when a shipment is ordered
type ShipmentCreatedEvent struct {
	shared.BaseDomainEvent
	ShipmentID        uuid.UUID       `json:"shipment_id"`
	Code              string          `json:"code"`
	Category          Category        `json:"category"`
	BasePurchasePrice decimal.Decimal `json:"base_purchase_price"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
}

// NewShipmentCreatedEvent creates a new ShipmentCreatedEvent
func NewShipmentCreatedEvent(s *Shipment) *ShipmentCreatedEvent {
	return &ShipmentCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeShipmentCreated, AggregateTypeShipment, s.ID),
		ShipmentID:        s.ID,
		Code:              s.Code,
		Category:          s.Category,
		BasePurchasePrice: s.Costs.BasePurchasePrice,
		TotalQuantity:     s.TotalQuantity,
	}
}

// ShipmentStatusChangedEvent is raised on every status change. Automatic is
// set when the change came from a domain rule rather than an operator.
type ShipmentStatusChangedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID      `json:"shipment_id"`
	Code       string         `json:"code"`
	From       ShipmentStatus `json:"from"`
	To         ShipmentStatus `json:"to"`
	Actor      string         `json:"actor"`
	Automatic  bool           `json:"automatic"`
}

// NewShipmentStatusChangedEvent creates a new ShipmentStatusChangedEvent
func NewShipmentStatusChangedEvent(s *Shipment, from, to ShipmentStatus, actor string, automatic bool) *ShipmentStatusChangedEvent {
	return &ShipmentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentStatusChanged, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		Code:            s.Code,
		From:            from,
		To:              to,
		Actor:           actor,
		Automatic:       automatic,
	}
}

// ExpenseAddedEvent is raised when an operator adds an expense
type ExpenseAddedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID       `json:"shipment_id"`
	ExpenseID  uuid.UUID       `json:"expense_id"`
	Stage      ExpenseStage    `json:"stage"`
	Amount     decimal.Decimal `json:"amount"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

// NewExpenseAddedEvent creates a new ExpenseAddedEvent
func NewExpenseAddedEvent(s *Shipment, e *Expense) *ExpenseAddedEvent {
	return &ExpenseAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseAdded, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		ExpenseID:       e.ID,
		Stage:           e.Stage,
		Amount:          e.Amount,
		TotalCost:       s.TotalCost(),
	}
}

// ExpenseRemovedEvent is raised when an admin deletes an expense
type ExpenseRemovedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID       `json:"shipment_id"`
	ExpenseID  uuid.UUID       `json:"expense_id"`
	Amount     decimal.Decimal `json:"amount"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

// NewExpenseRemovedEvent creates a new ExpenseRemovedEvent
func NewExpenseRemovedEvent(s *Shipment, e *Expense) *ExpenseRemovedEvent {
	return &ExpenseRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseRemoved, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		ExpenseID:       e.ID,
		Amount:          e.Amount,
		TotalCost:       s.TotalCost(),
	}
}

// DiscrepancyInfo is a discrepancy row carried by ReceptionConfirmed
type DiscrepancyInfo struct {
	LineKey    string            `json:"line_key"`
	Ordered    decimal.Decimal   `json:"ordered"`
	Received   decimal.Decimal   `json:"received"`
	Difference decimal.Decimal   `json:"difference"`
	Status     DiscrepancyStatus `json:"status"`
}

// ReceptionConfirmedEvent is raised once goods have been received and
// reconciled. The shipment's cost ledger subscribes to it to book the
// offloading cost; stock derivation reads the discrepancy rows.
type ReceptionConfirmedEvent struct {
	shared.BaseDomainEvent
	ShipmentID     uuid.UUID         `json:"shipment_id"`
	ReceptionID    uuid.UUID         `json:"reception_id"`
	Code           string            `json:"code"`
	Category       Category          `json:"category"`
	ReceivedAt     time.Time         `json:"received_at"`
	ReceivedBy     string            `json:"received_by"`
	OffloadingCost decimal.Decimal   `json:"offloading_cost"`
	WorkerCount    int               `json:"worker_count"`
	TotalReceived  decimal.Decimal   `json:"total_received"`
	Discrepancies  []DiscrepancyInfo `json:"discrepancies"`
}

// NewReceptionConfirmedEvent creates a new ReceptionConfirmedEvent
func NewReceptionConfirmedEvent(s *Shipment, r *Reception) *ReceptionConfirmedEvent {
	rows := make([]DiscrepancyInfo, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		rows[i] = DiscrepancyInfo{
			LineKey:    d.LineKey,
			Ordered:    d.OrderedQuantity,
			Received:   d.ReceivedQuantity,
			Difference: d.Difference,
			Status:     d.Status,
		}
	}
	return &ReceptionConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceptionConfirmed, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		ReceptionID:     r.ID,
		Code:            s.Code,
		Category:        s.Category,
		ReceivedAt:      r.ReceivedAt,
		ReceivedBy:      r.ReceivedBy,
		OffloadingCost:  r.OffloadingCost,
		WorkerCount:     r.WorkerCount,
		TotalReceived:   r.TotalReceived,
		Discrepancies:   rows,
	}
}
