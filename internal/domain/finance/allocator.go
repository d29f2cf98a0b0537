package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OpenSale is a sale with an amount still due, as seen by the allocator
type OpenSale struct {
	SaleID    uuid.UUID
	Number    string
	SaleDate  time.Time
	CreatedAt time.Time
	AmountDue decimal.Decimal
}

// AllocationResult is the amount to apply to one sale
type AllocationResult struct {
	SaleID     uuid.UUID
	SaleNumber string
	Amount     decimal.Decimal
	Settles    bool // the sale will be fully paid
}

// AllocationPlan is the complete spread of a payment
type AllocationPlan struct {
	Allocations    []AllocationResult
	TotalAllocated decimal.Decimal
}

// AllocateToSale applies the whole amount to one sale
func AllocateToSale(amount decimal.Decimal, sale OpenSale) (*AllocationPlan, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(sale.AmountDue) {
		return nil, shared.NewDomainError("EXCEEDS_AMOUNT_DUE",
			fmt.Sprintf("Payment %s exceeds the amount due %s on %s", amount.String(), sale.AmountDue.String(), sale.Number))
	}
	return &AllocationPlan{
		Allocations: []AllocationResult{{
			SaleID:     sale.SaleID,
			SaleNumber: sale.Number,
			Amount:     amount,
			Settles:    amount.Equal(sale.AmountDue),
		}},
		TotalAllocated: amount,
	}, nil
}

// AllocateOldestFirst spreads amount across open sales, oldest sale date
// first and ties by creation time, each sale taking min(remaining, due).
// An amount larger than everything outstanding is rejected with
// OVERPAYMENT and nothing is allocated.
func AllocateOldestFirst(amount decimal.Decimal, sales []OpenSale) (*AllocationPlan, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	outstanding := decimal.Zero
	for _, s := range sales {
		if s.AmountDue.IsPositive() {
			outstanding = outstanding.Add(s.AmountDue)
		}
	}
	if amount.GreaterThan(outstanding) {
		return nil, shared.NewDomainError("OVERPAYMENT",
			fmt.Sprintf("Payment %s exceeds the total outstanding %s", amount.String(), outstanding.String()))
	}

	sorted := make([]OpenSale, len(sales))
	copy(sorted, sales)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].SaleDate.Equal(sorted[j].SaleDate) {
			return sorted[i].SaleDate.Before(sorted[j].SaleDate)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	plan := &AllocationPlan{
		Allocations:    make([]AllocationResult, 0),
		TotalAllocated: decimal.Zero,
	}
	remaining := amount
	for _, s := range sorted {
		if remaining.IsZero() {
			break
		}
		if !s.AmountDue.IsPositive() {
			continue
		}
		applied := decimal.Min(remaining, s.AmountDue)
		plan.Allocations = append(plan.Allocations, AllocationResult{
			SaleID:     s.SaleID,
			SaleNumber: s.Number,
			Amount:     applied,
			Settles:    applied.Equal(s.AmountDue),
		})
		plan.TotalAllocated = plan.TotalAllocated.Add(applied)
		remaining = remaining.Sub(applied)
	}
	return plan, nil
}
