package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// ApplyPaymentRequest represents a payment received from a customer.
// Without SaleID the amount is spread oldest sale first.
type ApplyPaymentRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	SaleID     *uuid.UUID      `json:"sale_id"`
	Amount     decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Date       *time.Time      `json:"date"`
	Method     string          `json:"method" binding:"omitempty,oneof=cash mobile_money bank_transfer cheque"`
	Reference  string          `json:"reference" binding:"max=100"`
	Notes      string          `json:"notes"`
}

// PaymentListFilter represents filter options for the payment list
type PaymentListFilter struct {
	CustomerID *uuid.UUID `form:"-"`
	SaleID     *uuid.UUID `form:"-"`
	Method     string     `form:"method" binding:"omitempty,oneof=cash mobile_money bank_transfer cheque"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AllocationResponse is the part of a payment applied to one sale
type AllocationResponse struct {
	SaleID uuid.UUID       `json:"sale_id"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentResponse represents a payment record in API responses
type PaymentResponse struct {
	ID          uuid.UUID            `json:"id"`
	Number      string               `json:"number"`
	CustomerID  uuid.UUID            `json:"customer_id"`
	SaleID      *uuid.UUID           `json:"sale_id,omitempty"`
	Date        time.Time            `json:"date"`
	Amount      decimal.Decimal      `json:"amount"`
	Method      string               `json:"method"`
	Reference   string               `json:"reference,omitempty"`
	Notes       string               `json:"notes,omitempty"`
	ReceivedBy  string               `json:"received_by"`
	Allocations []AllocationResponse `json:"allocations"`
	CreatedAt   time.Time            `json:"created_at"`
}

// SettledSale describes how an applied payment left one sale
type SettledSale struct {
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	Amount     decimal.Decimal `json:"amount"`
	Settled    bool            `json:"settled"`
}

// ApplyPaymentResult is the outcome of ApplyPayment
type ApplyPaymentResult struct {
	Payment         PaymentResponse `json:"payment"`
	Sales           []SettledSale   `json:"sales"`
	CustomerBalance decimal.Decimal `json:"customer_balance"`
}

// ToPaymentResponse converts a domain PaymentRecord to its response
func ToPaymentResponse(p *finance.PaymentRecord) PaymentResponse {
	allocations := make([]AllocationResponse, len(p.Allocations))
	for i, a := range p.Allocations {
		allocations[i] = AllocationResponse{SaleID: a.SaleID, Amount: a.Amount}
	}
	return PaymentResponse{
		ID:          p.ID,
		Number:      p.Number,
		CustomerID:  p.CustomerID,
		SaleID:      p.SaleID,
		Date:        p.Date,
		Amount:      p.Amount,
		Method:      string(p.Method),
		Reference:   p.Reference,
		Notes:       p.Notes,
		ReceivedBy:  p.ReceivedBy,
		Allocations: allocations,
		CreatedAt:   p.CreatedAt,
	}
}
