package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// ReceiptSettings are the business details printed on receipts
type ReceiptSettings struct {
	Business string
	Currency string
}

// SaleItemRequest is one line of a sale. UnitPrice may be omitted for
// stock units and vehicles, which carry a default price.
type SaleItemRequest struct {
	SourceType  string           `json:"source_type" binding:"required,oneof=shipment stock_unit vehicle"`
	SourceID    uuid.UUID        `json:"source_id" binding:"required"`
	Description string           `json:"description" binding:"max=200"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"decimal_gt0"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// RecordSaleRequest represents a request to record a sale at the counter
type RecordSaleRequest struct {
	CustomerID     *uuid.UUID        `json:"customer_id"`
	SaleDate       *time.Time        `json:"sale_date"`
	Items          []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount       decimal.Decimal   `json:"discount" binding:"decimal_gte0"`
	InitialPayment decimal.Decimal   `json:"initial_payment" binding:"decimal_gte0"`
	Method         string            `json:"method" binding:"omitempty,oneof=cash mobile_money bank_transfer cheque"`
	Reference      string            `json:"reference" binding:"max=100"`
	Notes          string            `json:"notes"`
}

// SaleListFilter represents filter options for the sale list
type SaleListFilter struct {
	Search        string     `form:"search"`
	CustomerID    *uuid.UUID `form:"-"`
	VehicleID     *uuid.UUID `form:"-"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=paid partial unpaid"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	SourceType  string          `json:"source_type"`
	SourceID    uuid.UUID       `json:"source_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	Number        string             `json:"number"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	WalkIn        bool               `json:"walk_in"`
	SaleDate      time.Time          `json:"sale_date"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	AmountDue     decimal.Decimal    `json:"amount_due"`
	PaymentStatus string             `json:"payment_status"`
	SoldBy        string             `json:"sold_by"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// RecordSaleResult is the outcome of RecordSale. PaymentID is set when an
// initial payment produced a payment record.
type RecordSaleResult struct {
	Sale      SaleResponse `json:"sale"`
	PaymentID *uuid.UUID   `json:"payment_id,omitempty"`
}

// ToSaleResponse converts a domain Sale to its response
func ToSaleResponse(s *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse{
			ID:          item.ID,
			SourceType:  string(item.SourceType),
			SourceID:    item.SourceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}
	return SaleResponse{
		ID:            s.ID,
		Number:        s.Number,
		CustomerID:    s.CustomerID,
		WalkIn:        s.IsWalkIn(),
		SaleDate:      s.SaleDate,
		Items:         items,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		AmountPaid:    s.AmountPaid,
		AmountDue:     s.AmountDue,
		PaymentStatus: string(s.PaymentStatus),
		SoldBy:        s.SoldBy,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
