package procurement

import (
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CostLedger accumulates the landed cost of a shipment: the base purchase
// price fixed at creation plus every expense appended since.
// Totals are always recomputed from the expense list.
type CostLedger struct {
	BasePurchasePrice decimal.Decimal
	Expenses          []Expense
}

// ExpensesTotal sums all recorded expenses
func (l *CostLedger) ExpensesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// TotalCost is base purchase price plus all expenses
func (l *CostLedger) TotalCost() decimal.Decimal {
	return l.BasePurchasePrice.Add(l.ExpensesTotal())
}

// CostPerUnit divides total cost across quantity. Zero when quantity is zero.
func (l *CostLedger) CostPerUnit(quantity decimal.Decimal) decimal.Decimal {
	return valueobject.SafeDivide(l.TotalCost(), quantity)
}

// Append adds an expense at the end of the ledger
func (l *CostLedger) Append(e Expense) {
	l.Expenses = append(l.Expenses, e)
}

// Remove deletes an expense by ID and returns it
func (l *CostLedger) Remove(id uuid.UUID) (Expense, bool) {
	for i, e := range l.Expenses {
		if e.ID == id {
			l.Expenses = append(l.Expenses[:i], l.Expenses[i+1:]...)
			return e, true
		}
	}
	return Expense{}, false
}

// Find returns the expense with the given ID
func (l *CostLedger) Find(id uuid.UUID) *Expense {
	for i := range l.Expenses {
		if l.Expenses[i].ID == id {
			return &l.Expenses[i]
		}
	}
	return nil
}

// When applies the events the ledger subscribes to and returns the expense
// it produced, if any. Today this is only ReceptionConfirmed: a positive
// offloading cost becomes a synthetic arrival expense.
func (l *CostLedger) When(event shared.DomainEvent) (*Expense, error) {
	switch e := event.(type) {
	case *ReceptionConfirmedEvent:
		if !e.OffloadingCost.IsPositive() {
			return nil, nil
		}
		expense, err := NewExpense(e.ShipmentID, e.ReceivedAt, StageArrival,
			offloadingDescription(e.WorkerCount), e.OffloadingCost, e.ReceptionID.String(), e.ReceivedBy)
		if err != nil {
			return nil, err
		}
		expense.Synthetic = true
		l.Append(*expense)
		return expense, nil
	}
	return nil, nil
}
