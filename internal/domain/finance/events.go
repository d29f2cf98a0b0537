package finance

import (
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypePayment is the aggregate type for payment records
const AggregateTypePayment = "PaymentRecord"

// Event type constants
const (
	EventTypePaymentApplied = "PaymentApplied"
	EventTypePaymentDeleted = "PaymentDeleted"
)

// PaymentAppliedEvent is raised once a payment has been allocated
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	Number     string          `json:"number"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"method"`
	SaleCount  int             `json:"sale_count"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(p *PaymentRecord) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		Number:          p.Number,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Method:          p.Method,
		SaleCount:       len(p.Allocations),
	}
}

// PaymentDeletedEvent is raised after an admin removed a payment
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	Number     string          `json:"number"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	DeletedBy  string          `json:"deleted_by"`
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(p *PaymentRecord, deletedBy string) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeleted, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		Number:          p.Number,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		DeletedBy:       deletedBy,
	}
}
