package report

import (
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/report"
)

// PortfolioFilter narrows the shipments included in a portfolio report
type PortfolioFilter struct {
	Category string `form:"category" binding:"omitempty,oneof=iron cement wood paint"`
	Status   string `form:"status"`
	Origin   string `form:"origin" binding:"omitempty,len=2"`
}

// ShipmentMetricsResponse is one shipment with its derived figures
type ShipmentMetricsResponse struct {
	ShipmentID   uuid.UUID `json:"shipment_id"`
	Code         string    `json:"code"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	QuantityUnit string    `json:"quantity_unit"`
	report.Metrics
}

// CategorySummary is the portfolio summary of one category
type CategorySummary struct {
	Category string `json:"category"`
	report.Summary
}

// PortfolioResponse is the metrics of every matching shipment plus totals
type PortfolioResponse struct {
	Summary    report.Summary            `json:"summary"`
	ByCategory []CategorySummary         `json:"by_category"`
	Shipments  []ShipmentMetricsResponse `json:"shipments"`
}

// ToShipmentMetricsResponse derives the metrics of a shipment
func ToShipmentMetricsResponse(s *procurement.Shipment) ShipmentMetricsResponse {
	return ShipmentMetricsResponse{
		ShipmentID:   s.ID,
		Code:         s.Code,
		Category:     string(s.Category),
		Status:       string(s.Status),
		QuantityUnit: s.Category.QuantityUnit(),
		Metrics: report.Compute(report.Input{
			TotalQuantity: s.TotalQuantity,
			QuantitySold:  s.QuantitySold,
			TotalCost:     s.TotalCost(),
			Revenue:       s.Revenue,
			Markup:        s.Category.EstimateMarkup(),
		}),
	}
}
