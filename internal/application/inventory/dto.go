package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockUnitResponse represents a stock unit in API responses
type StockUnitResponse struct {
	ID             uuid.UUID       `json:"id"`
	ShipmentID     uuid.UUID       `json:"shipment_id"`
	ShipmentCode   string          `json:"shipment_code"`
	Category       string          `json:"category"`
	Key            string          `json:"key"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantitySold   decimal.Decimal `json:"quantity_sold"`
	Remaining      decimal.Decimal `json:"remaining"`
	CostPerUnit    decimal.Decimal `json:"cost_per_unit"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	StockValue     decimal.Decimal `json:"stock_value"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// StockUnitListFilter represents filter options for the stock unit list
type StockUnitListFilter struct {
	Search     string     `form:"search"`
	ShipmentID *uuid.UUID `form:"-"`
	Category   string     `form:"category"`
	Status     string     `form:"status" binding:"omitempty,oneof=in_stock depleted"`
	Key        string     `form:"key"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToStockUnitResponse converts a domain StockUnit to its response
func ToStockUnitResponse(u *inventory.StockUnit) StockUnitResponse {
	return StockUnitResponse{
		ID:             u.ID,
		ShipmentID:     u.ShipmentID,
		ShipmentCode:   u.ShipmentCode,
		Category:       string(u.Category),
		Key:            u.Key,
		Quantity:       u.Quantity,
		QuantitySold:   u.QuantitySold,
		Remaining:      u.Remaining(),
		CostPerUnit:    u.CostPerUnit,
		WholesalePrice: u.WholesalePrice,
		RetailPrice:    u.RetailPrice,
		StockValue:     u.Remaining().Mul(u.CostPerUnit),
		Status:         string(u.Status),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
