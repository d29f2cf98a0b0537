package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a customer paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMobileMoney, PaymentMethodBankTransfer, PaymentMethodCheque:
		return true
	}
	return false
}

// Allocation records the part of a payment applied to one sale
type Allocation struct {
	ID        uuid.UUID
	PaymentID uuid.UUID
	SaleID    uuid.UUID
	Amount    decimal.Decimal
}

// PaymentRecord is one payment received from a customer. Allocations keep
// exactly how the amount was spread so that deletion can be reversed.
type PaymentRecord struct {
	shared.BaseAggregateRoot
	Number      string
	CustomerID  uuid.UUID
	SaleID      *uuid.UUID
	Date        time.Time
	Amount      decimal.Decimal
	Method      PaymentMethod
	Reference   string
	Notes       string
	ReceivedBy  string
	Allocations []Allocation
}

// PaymentInput is what the counter enters for a payment
type PaymentInput struct {
	CustomerID uuid.UUID
	Date       time.Time
	Amount     decimal.Decimal
	Method     PaymentMethod
	Reference  string
	Notes      string
	ReceivedBy string
}

// Validate checks the fields that do not depend on open sales
func (in PaymentInput) Validate() error {
	if in.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !in.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !in.Method.IsValid() {
		return shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Unknown payment method %q", in.Method))
	}
	if strings.TrimSpace(in.ReceivedBy) == "" {
		return shared.ErrInvalidActor
	}
	return nil
}

// FormatPaymentNumber builds PAY-YYYYMMDD-NNNN
func FormatPaymentNumber(date time.Time, seq int) string {
	return fmt.Sprintf("PAY-%s-%04d", date.Format("20060102"), seq)
}

// NewPaymentRecord records a payment together with its allocation plan.
// SaleID points at the first sale the payment touched.
func NewPaymentRecord(number string, in PaymentInput, plan *AllocationPlan) (*PaymentRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Payment number cannot be empty")
	}
	if plan == nil || !plan.TotalAllocated.Equal(in.Amount) {
		return nil, shared.NewDomainError("UNALLOCATED_PAYMENT", "Payment must be fully allocated to open sales")
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	p := &PaymentRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		CustomerID:        in.CustomerID,
		Date:              date,
		Amount:            in.Amount,
		Method:            in.Method,
		Reference:         strings.TrimSpace(in.Reference),
		Notes:             in.Notes,
		ReceivedBy:        in.ReceivedBy,
		Allocations:       make([]Allocation, 0, len(plan.Allocations)),
	}
	for _, a := range plan.Allocations {
		p.Allocations = append(p.Allocations, Allocation{
			ID:        uuid.New(),
			PaymentID: p.ID,
			SaleID:    a.SaleID,
			Amount:    a.Amount,
		})
	}
	if len(p.Allocations) > 0 {
		first := p.Allocations[0].SaleID
		p.SaleID = &first
	}

	p.Raise(NewPaymentAppliedEvent(p))
	return p, nil
}

// AllocatedTo returns the amount this payment applied to a sale
func (p *PaymentRecord) AllocatedTo(saleID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		if a.SaleID == saleID {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// DetachSale drops the allocations made to a deleted sale and shrinks the
// payment by the same amount. Returns the amount removed.
func (p *PaymentRecord) DetachSale(saleID uuid.UUID) decimal.Decimal {
	removed := decimal.Zero
	kept := make([]Allocation, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		if a.SaleID == saleID {
			removed = removed.Add(a.Amount)
			continue
		}
		kept = append(kept, a)
	}
	if removed.IsZero() {
		return removed
	}
	p.Allocations = kept
	p.Amount = p.Amount.Sub(removed)
	p.SaleID = nil
	if len(kept) > 0 {
		first := kept[0].SaleID
		p.SaleID = &first
	}
	p.IncrementVersion()
	return removed
}

// IsEmpty reports whether nothing of the payment is left
func (p *PaymentRecord) IsEmpty() bool {
	return !p.Amount.IsPositive()
}
