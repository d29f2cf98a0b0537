package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseStage tags when in the shipment's life an expense was incurred
type ExpenseStage string

const (
	StagePurchase  ExpenseStage = "purchase"
	StageTransport ExpenseStage = "transport"
	StageCustoms   ExpenseStage = "customs"
	StageArrival   ExpenseStage = "arrival"
	StageStorage   ExpenseStage = "storage"
	StageOther     ExpenseStage = "other"
)

// ParseExpenseStage validates a stage name. Empty input maps to StageOther.
func ParseExpenseStage(value string) (ExpenseStage, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return StageOther, nil
	}
	s := ExpenseStage(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown expense stage: %q", value)
	}
	return s, nil
}

// IsValid checks if the stage is known
func (s ExpenseStage) IsValid() bool {
	switch s {
	case StagePurchase, StageTransport, StageCustoms, StageArrival, StageStorage, StageOther:
		return true
	}
	return false
}

// Expense is a cost incurred on a shipment after purchase
type Expense struct {
	ID          uuid.UUID
	ShipmentID  uuid.UUID
	Date        time.Time
	Stage       ExpenseStage
	Description string
	Amount      decimal.Decimal
	Reference   string
	AddedBy     string
	Synthetic   bool // produced by a domain event rather than typed in
	CreatedAt   time.Time
}

// NewExpense creates an expense. Only the amount and the description are
// checked; free-text fields may be left partially filled at the counter.
func NewExpense(shipmentID uuid.UUID, date time.Time, stage ExpenseStage, description string, amount decimal.Decimal, reference, addedBy string) (*Expense, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Expense description is required")
	}
	if stage == "" {
		stage = StageOther
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Expense{
		ID:          uuid.New(),
		ShipmentID:  shipmentID,
		Date:        date,
		Stage:       stage,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Reference:   reference,
		AddedBy:     addedBy,
		CreatedAt:   time.Now(),
	}, nil
}

// offloadingDescription is the text of the synthetic arrival expense
func offloadingDescription(workers int) string {
	if workers == 1 {
		return "Offloading on reception (1 worker)"
	}
	return fmt.Sprintf("Offloading on reception (%d workers)", workers)
}
