package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SourceType names where the goods of a sale line come from
type SourceType string

const (
	SourceShipment  SourceType = "shipment"
	SourceStockUnit SourceType = "stock_unit"
	SourceVehicle   SourceType = "vehicle"
)

// IsValid checks if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceShipment, SourceStockUnit, SourceVehicle:
		return true
	}
	return false
}

// PaymentStatus is derived from the amounts of a sale, never set directly
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
)

// DerivePaymentStatus maps total and paid amounts to a payment status
func DerivePaymentStatus(total, paid decimal.Decimal) PaymentStatus {
	switch {
	case !total.Sub(paid).IsPositive():
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

// SaleItem is one line of an invoice
type SaleItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	SourceType  SourceType
	SourceID    uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// ItemInput describes a line when recording a sale
type ItemInput struct {
	SourceType  SourceType
	SourceID    uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Validate checks a single line
func (in ItemInput) Validate() error {
	if !in.SourceType.IsValid() {
		return shared.NewDomainError("INVALID_SOURCE", fmt.Sprintf("Unknown source type %q", in.SourceType))
	}
	if in.SourceID == uuid.Nil {
		return shared.NewDomainError("INVALID_SOURCE", "Source ID cannot be empty")
	}
	if !in.Quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return nil
}

// Sale is an invoice. Walk-in sales have no customer.
type Sale struct {
	shared.BaseAggregateRoot
	Number        string
	CustomerID    *uuid.UUID
	SaleDate      time.Time
	Items         []SaleItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	AmountDue     decimal.Decimal
	PaymentStatus PaymentStatus
	SoldBy        string
	Notes         string
}

// FormatSaleNumber builds INV-YYYYMMDD-NNNN
func FormatSaleNumber(date time.Time, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", date.Format("20060102"), seq)
}

// NewSale builds an unpaid invoice from its lines. Unit prices must already
// be resolved; payment is applied afterwards through ApplyPayment.
func NewSale(number string, customerID *uuid.UUID, saleDate time.Time, items []ItemInput, discount decimal.Decimal, soldBy, notes string) (*Sale, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Sale number cannot be empty")
	}
	if strings.TrimSpace(soldBy) == "" {
		return nil, shared.ErrInvalidActor
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Sale must have at least one item")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		CustomerID:        customerID,
		SaleDate:          saleDate,
		Items:             make([]SaleItem, 0, len(items)),
		Subtotal:          decimal.Zero,
		Discount:          discount,
		AmountPaid:        decimal.Zero,
		SoldBy:            soldBy,
		Notes:             notes,
	}
	for _, in := range items {
		if err := in.Validate(); err != nil {
			return nil, err
		}
		lineTotal := in.Quantity.Mul(in.UnitPrice)
		s.Items = append(s.Items, SaleItem{
			ID:          uuid.New(),
			SaleID:      s.ID,
			SourceType:  in.SourceType,
			SourceID:    in.SourceID,
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			LineTotal:   lineTotal,
		})
		s.Subtotal = s.Subtotal.Add(lineTotal)
	}
	if discount.GreaterThan(s.Subtotal) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the subtotal")
	}
	s.Total = s.Subtotal.Sub(discount)
	s.recalculate()

	s.Raise(NewSaleRecordedEvent(s))
	return s, nil
}

// IsWalkIn returns true for a sale without a customer
func (s *Sale) IsWalkIn() bool {
	return s.CustomerID == nil
}

// BelongsTo reports whether the sale was made to the customer
func (s *Sale) BelongsTo(customerID uuid.UUID) bool {
	return s.CustomerID != nil && *s.CustomerID == customerID
}

// IsOpen returns true while an amount is still due
func (s *Sale) IsOpen() bool {
	return s.PaymentStatus != PaymentStatusPaid
}

// CheckInitialPayment validates the payment taken at the counter
func (s *Sale) CheckInitialPayment(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Initial payment cannot be negative")
	}
	if amount.GreaterThan(s.Total) {
		return shared.NewDomainError("EXCEEDS_AMOUNT_DUE",
			fmt.Sprintf("Initial payment %s exceeds the sale total %s", amount.String(), s.Total.String()))
	}
	if s.IsWalkIn() && amount.LessThan(s.Total) {
		return shared.NewDomainError("WALK_IN_MUST_PAY", "Walk-in sales must be paid in full")
	}
	return nil
}

// ApplyPayment credits amount against the sale
func (s *Sale) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(s.AmountDue) {
		return shared.NewDomainError("EXCEEDS_AMOUNT_DUE",
			fmt.Sprintf("Payment %s exceeds the amount due %s on %s", amount.String(), s.AmountDue.String(), s.Number))
	}
	s.AmountPaid = s.AmountPaid.Add(amount)
	s.recalculate()
	s.IncrementVersion()
	return nil
}

// ReversePayment removes a previously applied amount
func (s *Sale) ReversePayment(amount decimal.Decimal) error {
	if amount.GreaterThan(s.AmountPaid) {
		return shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Cannot reverse %s on %s, only %s was paid", amount.String(), s.Number, s.AmountPaid.String()))
	}
	s.AmountPaid = s.AmountPaid.Sub(amount)
	s.recalculate()
	s.IncrementVersion()
	return nil
}

// VehicleIDs returns the distinct vehicles sold from
func (s *Sale) VehicleIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, item := range s.Items {
		if item.SourceType != SourceVehicle {
			continue
		}
		if _, ok := seen[item.SourceID]; ok {
			continue
		}
		seen[item.SourceID] = struct{}{}
		ids = append(ids, item.SourceID)
	}
	return ids
}

func (s *Sale) recalculate() {
	s.AmountDue = s.Total.Sub(s.AmountPaid)
	s.PaymentStatus = DerivePaymentStatus(s.Total, s.AmountPaid)
}
