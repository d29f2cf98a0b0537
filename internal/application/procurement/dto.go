package procurement

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/report"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Shipment DTOs
// =============================================================================

// LineRequest is one ordered size of a new shipment
type LineRequest struct {
	Key       string          `json:"key" binding:"required,max=50"`
	Quantity  decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
}

// CreateShipmentRequest represents a request to order a shipment
type CreateShipmentRequest struct {
	Category  string        `json:"category" binding:"required,oneof=iron cement wood paint"`
	Origin    string        `json:"origin" binding:"required,len=2"`
	Supplier  string        `json:"supplier" binding:"max=200"`
	Lines     []LineRequest `json:"lines" binding:"required,min=1,dive"`
	OrderedAt *time.Time    `json:"ordered_at"`
	Notes     string        `json:"notes"`
}

// AdvanceStatusRequest moves a shipment forward on its lifecycle
type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddExpenseRequest represents an expense booked on a shipment
type AddExpenseRequest struct {
	Date        *time.Time      `json:"date"`
	Stage       string          `json:"stage" binding:"omitempty,oneof=purchase transport customs arrival storage other"`
	Description string          `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Reference   string          `json:"reference" binding:"max=100"`
}

// PreviewExpenseRequest asks for the impact of an expense without booking it
type PreviewExpenseRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"decimal_gt0"`
}

// RecordReceptionRequest represents the arrival of a shipment's goods.
// Received is keyed by line key; missing lines are taken as fully received.
type RecordReceptionRequest struct {
	ReceivedAt            *time.Time                 `json:"received_at"`
	Location              string                     `json:"location" binding:"required,max=200"`
	ResponsiblePerson     string                     `json:"responsible_person" binding:"max=100"`
	Received              map[string]decimal.Decimal `json:"received"`
	CompensationRequested bool                       `json:"compensation_requested"`
	DeductionApplied      bool                       `json:"deduction_applied"`
	Notes                 string                     `json:"notes"`
	OffloadingCost        decimal.Decimal            `json:"offloading_cost" binding:"decimal_gte0"`
	WorkerCount           int                        `json:"worker_count" binding:"min=0"`
}

// ShipmentListFilter represents filter options for the shipment list
type ShipmentListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category" binding:"omitempty,oneof=iron cement wood paint"`
	Status   string `form:"status"`
	Origin   string `form:"origin" binding:"omitempty,len=2"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineResponse is a shipment line in API responses
type LineResponse struct {
	Key             string          `json:"key"`
	OrderedQuantity decimal.Decimal `json:"ordered_quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Amount          decimal.Decimal `json:"amount"`
}

// ExpenseResponse is an expense in API responses
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Date        time.Time       `json:"date"`
	Stage       string          `json:"stage"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference,omitempty"`
	AddedBy     string          `json:"added_by"`
	Synthetic   bool            `json:"synthetic"`
}

// DiscrepancyResponse is one reconciled line of a reception
type DiscrepancyResponse struct {
	LineKey          string          `json:"line_key"`
	OrderedQuantity  decimal.Decimal `json:"ordered_quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	Difference       decimal.Decimal `json:"difference"`
	Status           string          `json:"status"`
}

// ReceptionResponse is the reception of a shipment in API responses
type ReceptionResponse struct {
	ID                    uuid.UUID             `json:"id"`
	ReceivedAt            time.Time             `json:"received_at"`
	Location              string                `json:"location"`
	ResponsiblePerson     string                `json:"responsible_person,omitempty"`
	ReceivedBy            string                `json:"received_by"`
	CompensationRequested bool                  `json:"compensation_requested"`
	DeductionApplied      bool                  `json:"deduction_applied"`
	Notes                 string                `json:"notes,omitempty"`
	OffloadingCost        decimal.Decimal       `json:"offloading_cost"`
	WorkerCount           int                   `json:"worker_count"`
	TotalReceived         decimal.Decimal       `json:"total_received"`
	HasDiscrepancy        bool                  `json:"has_discrepancy"`
	Discrepancies         []DiscrepancyResponse `json:"discrepancies"`
}

// ShipmentResponse represents a shipment with its cost ledger and derived metrics
type ShipmentResponse struct {
	ID                uuid.UUID          `json:"id"`
	Code              string             `json:"code"`
	Category          string             `json:"category"`
	Origin            string             `json:"origin"`
	Supplier          string             `json:"supplier"`
	Status            string             `json:"status"`
	QuantityUnit      string             `json:"quantity_unit"`
	Lines             []LineResponse     `json:"lines"`
	BasePurchasePrice decimal.Decimal    `json:"base_purchase_price"`
	Expenses          []ExpenseResponse  `json:"expenses"`
	ExpensesTotal     decimal.Decimal    `json:"expenses_total"`
	Metrics           report.Metrics     `json:"metrics"`
	Reception         *ReceptionResponse `json:"reception,omitempty"`
	OrderedAt         time.Time          `json:"ordered_at"`
	Notes             string             `json:"notes,omitempty"`
	CreatedBy         string             `json:"created_by"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Version           int                `json:"version"`
}

// ShipmentListResponse represents a shipment in list views
type ShipmentListResponse struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	Category      string          `json:"category"`
	Origin        string          `json:"origin"`
	Supplier      string          `json:"supplier"`
	Status        string          `json:"status"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	QuantitySold  decimal.Decimal `json:"quantity_sold"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	CostPerUnit   decimal.Decimal `json:"cost_per_unit"`
	Revenue       decimal.Decimal `json:"revenue"`
	Received      bool            `json:"received"`
	OrderedAt     time.Time       `json:"ordered_at"`
}

// AddExpenseResponse is the booked expense, the new totals and, when the
// shipment had already sold goods, the impact computed before booking.
type AddExpenseResponse struct {
	Expense     ExpenseResponse            `json:"expense"`
	TotalCost   decimal.Decimal            `json:"total_cost"`
	CostPerUnit decimal.Decimal            `json:"cost_per_unit"`
	Impact      *procurement.ExpenseImpact `json:"impact,omitempty"`
}

// StockUnitRef is a stock unit created by a reception
type StockUnitRef struct {
	ID             uuid.UUID       `json:"id"`
	Key            string          `json:"key"`
	Quantity       decimal.Decimal `json:"quantity"`
	CostPerUnit    decimal.Decimal `json:"cost_per_unit"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
}

// ReceptionResult is returned after a reception is recorded
type ReceptionResult struct {
	Shipment   ShipmentResponse `json:"shipment"`
	StockUnits []StockUnitRef   `json:"stock_units"`
}

// HistoryEntryResponse is one journaled event of a shipment
type HistoryEntryResponse struct {
	EventType  string          `json:"event_type"`
	Actor      string          `json:"actor,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// =============================================================================
// Converters
// =============================================================================

// ToShipmentResponse converts a domain shipment to a response DTO
func ToShipmentResponse(s *procurement.Shipment) ShipmentResponse {
	lines := make([]LineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = LineResponse{
			Key:             l.Key,
			OrderedQuantity: l.OrderedQuantity,
			UnitPrice:       l.UnitPrice,
			Amount:          l.Amount,
		}
	}
	expenses := make([]ExpenseResponse, len(s.Costs.Expenses))
	for i := range s.Costs.Expenses {
		expenses[i] = ToExpenseResponse(&s.Costs.Expenses[i])
	}

	resp := ShipmentResponse{
		ID:                s.ID,
		Code:              s.Code,
		Category:          string(s.Category),
		Origin:            s.Origin,
		Supplier:          s.Supplier,
		Status:            string(s.Status),
		QuantityUnit:      s.Category.QuantityUnit(),
		Lines:             lines,
		BasePurchasePrice: s.BasePurchasePrice(),
		Expenses:          expenses,
		ExpensesTotal:     s.Costs.ExpensesTotal(),
		Metrics:           s.Metrics(),
		OrderedAt:         s.OrderedAt,
		Notes:             s.Notes,
		CreatedBy:         s.CreatedBy,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Version:           s.Version,
	}
	if s.Reception != nil {
		r := toReceptionResponse(s.Reception)
		resp.Reception = &r
	}
	return resp
}

// ToShipmentListResponse converts a domain shipment to a list row
func ToShipmentListResponse(s *procurement.Shipment) ShipmentListResponse {
	return ShipmentListResponse{
		ID:            s.ID,
		Code:          s.Code,
		Category:      string(s.Category),
		Origin:        s.Origin,
		Supplier:      s.Supplier,
		Status:        string(s.Status),
		TotalQuantity: s.TotalQuantity,
		QuantitySold:  s.QuantitySold,
		TotalCost:     s.TotalCost(),
		CostPerUnit:   s.CostPerUnit(),
		Revenue:       s.Revenue,
		Received:      s.IsReceived(),
		OrderedAt:     s.OrderedAt,
	}
}

// ToExpenseResponse converts a domain expense to a response DTO
func ToExpenseResponse(e *procurement.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Date:        e.Date,
		Stage:       string(e.Stage),
		Description: e.Description,
		Amount:      e.Amount,
		Reference:   e.Reference,
		AddedBy:     e.AddedBy,
		Synthetic:   e.Synthetic,
	}
}

func toReceptionResponse(r *procurement.Reception) ReceptionResponse {
	rows := make([]DiscrepancyResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		rows[i] = DiscrepancyResponse{
			LineKey:          d.LineKey,
			OrderedQuantity:  d.OrderedQuantity,
			ReceivedQuantity: d.ReceivedQuantity,
			Difference:       d.Difference,
			Status:           string(d.Status),
		}
	}
	return ReceptionResponse{
		ID:                    r.ID,
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
		HasDiscrepancy:        r.HasDiscrepancy(),
		Discrepancies:         rows,
	}
}
