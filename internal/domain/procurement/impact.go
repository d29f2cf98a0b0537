package procurement

import (
	"github.com/sahelbuild/backend/internal/domain/report"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ImpactSnapshot is the shipment economics at one point of an impact preview
type ImpactSnapshot struct {
	TotalCost       decimal.Decimal `json:"total_cost"`
	CostPerUnit     decimal.Decimal `json:"cost_per_unit"`
	RealizedProfit  decimal.Decimal `json:"realized_profit"`
	MarginPct       decimal.Decimal `json:"margin_pct"`
	PotentialProfit decimal.Decimal `json:"potential_profit"`
	NetProfit       decimal.Decimal `json:"net_profit"`
}

// ExpenseImpact projects what an extra expense does to a shipment that has
// already sold part of its quantity. The cost per unit increase hits units
// already sold (sunk) and units still on hand (future) alike.
type ExpenseImpact struct {
	Amount            decimal.Decimal `json:"amount"`
	QuantitySold      decimal.Decimal `json:"quantity_sold"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	Current           ImpactSnapshot  `json:"current"`
	Projected         ImpactSnapshot  `json:"projected"`
	CostPerUnitDelta  decimal.Decimal `json:"cost_per_unit_delta"`
	SunkLoss          decimal.Decimal `json:"sunk_loss"`
	FutureImpact      decimal.Decimal `json:"future_impact"`
	ProfitDelta       decimal.Decimal `json:"profit_delta"`
}

// PreviewExpense computes the impact of adding amount to the shipment's
// costs without touching the shipment.
func (s *Shipment) PreviewExpense(amount decimal.Decimal) (*ExpenseImpact, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}

	current := s.snapshot(s.TotalCost())
	projected := s.snapshot(s.TotalCost().Add(amount))
	delta := projected.CostPerUnit.Sub(current.CostPerUnit)
	sunk := s.QuantitySold.Mul(delta)
	future := s.Remaining().Mul(delta)

	return &ExpenseImpact{
		Amount:            amount,
		QuantitySold:      s.QuantitySold,
		QuantityRemaining: s.Remaining(),
		Current:           current,
		Projected:         projected,
		CostPerUnitDelta:  delta,
		SunkLoss:          sunk,
		FutureImpact:      future,
		ProfitDelta:       sunk.Add(future).Neg(),
	}, nil
}

func (s *Shipment) snapshot(totalCost decimal.Decimal) ImpactSnapshot {
	m := report.Compute(report.Input{
		TotalQuantity: s.TotalQuantity,
		QuantitySold:  s.QuantitySold,
		TotalCost:     totalCost,
		Revenue:       s.Revenue,
		Markup:        s.Category.EstimateMarkup(),
	})
	return ImpactSnapshot{
		TotalCost:       m.TotalCost,
		CostPerUnit:     m.CostPerUnit,
		RealizedProfit:  m.RealizedProfit,
		MarginPct:       report.MarginPct(m.RealizedProfit, m.Revenue),
		PotentialProfit: m.PotentialProfit,
		NetProfit:       m.NetProfit,
	}
}

// Metrics derives the read-only figures of the shipment
func (s *Shipment) Metrics() report.Metrics {
	return report.Compute(report.Input{
		TotalQuantity: s.TotalQuantity,
		QuantitySold:  s.QuantitySold,
		TotalCost:     s.TotalCost(),
		Revenue:       s.Revenue,
		Markup:        s.Category.EstimateMarkup(),
	})
}
