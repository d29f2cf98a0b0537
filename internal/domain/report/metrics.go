// Package report holds the read-only figures derived from shipments and
// sales. Nothing here is stored: every value is recomputed on each read,
// because any new expense or sale invalidates it.
package report

import (
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Remaining is total quantity minus quantity sold
func Remaining(total, sold decimal.Decimal) decimal.Decimal {
	return total.Sub(sold)
}

// NetProfit is revenue minus total cost
func NetProfit(revenue, totalCost decimal.Decimal) decimal.Decimal {
	return revenue.Sub(totalCost)
}

// MarginPct is netProfit / revenue * 100, or zero without revenue
func MarginPct(netProfit, revenue decimal.Decimal) decimal.Decimal {
	return valueobject.Percentage(netProfit, revenue)
}

// AverageSellingPrice is revenue per unit sold, zero when nothing is sold
func AverageSellingPrice(revenue, sold decimal.Decimal) decimal.Decimal {
	return valueobject.SafeDivide(revenue, sold)
}

// ExpectedSellingPrice is the average selling price when sales exist,
// otherwise cost per unit marked up by the category estimate.
func ExpectedSellingPrice(revenue, sold, costPerUnit, markup decimal.Decimal) decimal.Decimal {
	if sold.IsPositive() {
		return AverageSellingPrice(revenue, sold)
	}
	return costPerUnit.Mul(markup)
}

// PotentialProfit is what the remaining quantity would earn at price
func PotentialProfit(remaining, price, costPerUnit decimal.Decimal) decimal.Decimal {
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	return remaining.Mul(price.Sub(costPerUnit))
}

// Input carries the raw figures of one shipment
type Input struct {
	TotalQuantity decimal.Decimal
	QuantitySold  decimal.Decimal
	TotalCost     decimal.Decimal
	Revenue       decimal.Decimal
	Markup        decimal.Decimal
}

// Metrics are the derived figures shown next to a shipment
type Metrics struct {
	TotalQuantity        decimal.Decimal `json:"total_quantity"`
	QuantitySold         decimal.Decimal `json:"quantity_sold"`
	Remaining            decimal.Decimal `json:"remaining"`
	TotalCost            decimal.Decimal `json:"total_cost"`
	CostPerUnit          decimal.Decimal `json:"cost_per_unit"`
	Revenue              decimal.Decimal `json:"revenue"`
	NetProfit            decimal.Decimal `json:"net_profit"`
	MarginPct            decimal.Decimal `json:"margin_pct"`
	AverageSellingPrice  decimal.Decimal `json:"average_selling_price"`
	ExpectedSellingPrice decimal.Decimal `json:"expected_selling_price"`
	RealizedProfit       decimal.Decimal `json:"realized_profit"`
	PotentialProfit      decimal.Decimal `json:"potential_profit"`
}

// Compute derives all metrics from raw figures
func Compute(in Input) Metrics {
	costPerUnit := valueobject.SafeDivide(in.TotalCost, in.TotalQuantity)
	remaining := Remaining(in.TotalQuantity, in.QuantitySold)
	netProfit := NetProfit(in.Revenue, in.TotalCost)
	price := ExpectedSellingPrice(in.Revenue, in.QuantitySold, costPerUnit, in.Markup)

	return Metrics{
		TotalQuantity:        in.TotalQuantity,
		QuantitySold:         in.QuantitySold,
		Remaining:            remaining,
		TotalCost:            in.TotalCost,
		CostPerUnit:          costPerUnit,
		Revenue:              in.Revenue,
		NetProfit:            netProfit,
		MarginPct:            MarginPct(netProfit, in.Revenue),
		AverageSellingPrice:  AverageSellingPrice(in.Revenue, in.QuantitySold),
		ExpectedSellingPrice: price,
		RealizedProfit:       in.Revenue.Sub(in.QuantitySold.Mul(costPerUnit)),
		PotentialProfit:      PotentialProfit(remaining, price, costPerUnit),
	}
}

// Summary aggregates metrics over several shipments
type Summary struct {
	Shipments       int             `json:"shipments"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	Revenue         decimal.Decimal `json:"revenue"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	MarginPct       decimal.Decimal `json:"margin_pct"`
	PotentialProfit decimal.Decimal `json:"potential_profit"`
}

// Summarize folds per-shipment metrics into a portfolio summary
func Summarize(items []Metrics) Summary {
	s := Summary{
		Shipments:       len(items),
		TotalCost:       decimal.Zero,
		Revenue:         decimal.Zero,
		PotentialProfit: decimal.Zero,
	}
	for _, m := range items {
		s.TotalCost = s.TotalCost.Add(m.TotalCost)
		s.Revenue = s.Revenue.Add(m.Revenue)
		s.PotentialProfit = s.PotentialProfit.Add(m.PotentialProfit)
	}
	s.NetProfit = NetProfit(s.Revenue, s.TotalCost)
	s.MarginPct = MarginPct(s.NetProfit, s.Revenue)
	return s
}
