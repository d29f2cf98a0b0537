package procurement

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var originPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// ShipmentLine is one ordered size of a shipment (a diameter for iron)
type ShipmentLine struct {
	ID              uuid.UUID
	ShipmentID      uuid.UUID
	Key             string
	OrderedQuantity decimal.Decimal
	UnitPrice       decimal.Decimal
	Amount          decimal.Decimal
}

// LineInput describes a line when creating a shipment
type LineInput struct {
	Key       string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Shipment is the aggregate root for a procured lot of goods: a cement
// shipment, an iron command, a wood or paint shipment.
type Shipment struct {
	shared.BaseAggregateRoot
	Code          string
	Category      Category
	Origin        string
	Supplier      string
	Lines         []ShipmentLine
	Costs         CostLedger
	TotalQuantity decimal.Decimal
	QuantitySold  decimal.Decimal
	Revenue       decimal.Decimal
	Status        ShipmentStatus
	Reception     *Reception
	OrderedAt     time.Time
	Notes         string
	CreatedBy     string
}

// NewShipment creates a shipment in the ordered status. The base purchase
// price is fixed here from the lines and never changes afterwards.
func NewShipment(code string, category Category, origin, supplier string, lines []LineInput, orderedAt time.Time, createdBy string) (*Shipment, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Shipment code cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown category %q", category))
	}
	origin = strings.ToUpper(strings.TrimSpace(origin))
	if !originPattern.MatchString(origin) {
		return nil, shared.NewDomainError("INVALID_ORIGIN", "Origin must be a two-letter country code")
	}
	if strings.TrimSpace(createdBy) == "" {
		return nil, shared.ErrInvalidActor
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "A shipment needs at least one line")
	}
	if orderedAt.IsZero() {
		orderedAt = time.Now()
	}

	s := &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Category:          category,
		Origin:            origin,
		Supplier:          strings.TrimSpace(supplier),
		Lines:             make([]ShipmentLine, 0, len(lines)),
		TotalQuantity:     decimal.Zero,
		QuantitySold:      decimal.Zero,
		Revenue:           decimal.Zero,
		Status:            StatusOrdered,
		OrderedAt:         orderedAt,
		CreatedBy:         createdBy,
	}

	base := decimal.Zero
	seen := make(map[string]struct{}, len(lines))
	for _, in := range lines {
		key := strings.TrimSpace(in.Key)
		if key == "" {
			return nil, shared.NewDomainError("INVALID_LINE_KEY", "Line key cannot be empty")
		}
		if _, dup := seen[key]; dup {
			return nil, shared.NewDomainError("DUPLICATE_LINE_KEY", "Line key "+key+" appears twice")
		}
		seen[key] = struct{}{}
		if !in.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive for line "+key)
		}
		if in.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative for line "+key)
		}
		amount := in.Quantity.Mul(in.UnitPrice)
		s.Lines = append(s.Lines, ShipmentLine{
			ID:              uuid.New(),
			ShipmentID:      s.ID,
			Key:             key,
			OrderedQuantity: in.Quantity,
			UnitPrice:       in.UnitPrice,
			Amount:          amount,
		})
		base = base.Add(amount)
		s.TotalQuantity = s.TotalQuantity.Add(in.Quantity)
	}
	s.Costs = CostLedger{BasePurchasePrice: base, Expenses: make([]Expense, 0)}

	s.Raise(NewShipmentCreatedEvent(s))
	return s, nil
}

// FormatShipmentCode renders {ORIGIN}-{CAT}-{YYYYMMDD}-{NNN}
func FormatShipmentCode(origin string, category Category, date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%s-%03d", strings.ToUpper(origin), category.CodePrefix(), date.Format("20060102"), seq)
}

// BasePurchasePrice returns the price fixed at creation
func (s *Shipment) BasePurchasePrice() decimal.Decimal {
	return s.Costs.BasePurchasePrice
}

// TotalCost is base purchase price plus all expenses
func (s *Shipment) TotalCost() decimal.Decimal {
	return s.Costs.TotalCost()
}

// CostPerUnit recomputes cost per unit from the current quantity
func (s *Shipment) CostPerUnit() decimal.Decimal {
	return s.Costs.CostPerUnit(s.TotalQuantity)
}

// Remaining is total quantity minus quantity sold
func (s *Shipment) Remaining() decimal.Decimal {
	return s.TotalQuantity.Sub(s.QuantitySold)
}

// HasSales reports whether anything has been sold from this shipment
func (s *Shipment) HasSales() bool {
	return s.QuantitySold.IsPositive()
}

// IsReceived reports whether the reception has been recorded
func (s *Shipment) IsReceived() bool {
	return s.Reception != nil
}

// Line returns the line with the given key
func (s *Shipment) Line(key string) *ShipmentLine {
	for i := range s.Lines {
		if s.Lines[i].Key == key {
			return &s.Lines[i]
		}
	}
	return nil
}

// AddExpense appends an expense to the cost ledger
func (s *Shipment) AddExpense(date time.Time, stage ExpenseStage, description string, amount decimal.Decimal, reference, addedBy string) (*Expense, error) {
	if strings.TrimSpace(addedBy) == "" {
		return nil, shared.ErrInvalidActor
	}
	expense, err := NewExpense(s.ID, date, stage, description, amount, reference, addedBy)
	if err != nil {
		return nil, err
	}
	s.Costs.Append(*expense)
	s.IncrementVersion()
	s.Raise(NewExpenseAddedEvent(s, expense))
	return expense, nil
}

// RemoveExpense deletes an expense, restoring total cost to its prior value
func (s *Shipment) RemoveExpense(expenseID uuid.UUID) (*Expense, error) {
	removed, ok := s.Costs.Remove(expenseID)
	if !ok {
		return nil, ErrExpenseNotFound
	}
	s.IncrementVersion()
	s.Raise(NewExpenseRemovedEvent(s, &removed))
	return &removed, nil
}

// AdvanceStatus moves the shipment forward on an operator's request.
// Statuses reserved for automatic transitions cannot be chosen by hand.
func (s *Shipment) AdvanceStatus(target ShipmentStatus, actor string) error {
	if strings.TrimSpace(actor) == "" {
		return shared.ErrInvalidActor
	}
	if s.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Shipment %s is %s", s.Code, s.Status))
	}
	if !s.Category.HasStatus(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Status %s does not exist for %s shipments", target, s.Category))
	}
	if s.Category.IsAutomatic(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Status %s is set automatically and cannot be selected", target))
	}
	if !s.Category.CanTransition(s.Status, target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot move shipment from %s back to %s", s.Status, target))
	}
	s.setStatus(target, actor, false)
	return nil
}

// ConfirmReception records the one-time reception. It reconciles ordered
// against received quantities, replaces the total quantity with what was
// received and raises ReceptionConfirmed, which the cost ledger applies.
func (s *Shipment) ConfirmReception(in ReceptionInput) (*ReceptionConfirmedEvent, error) {
	if s.Reception != nil {
		return nil, ErrReceptionAlreadyRecorded
	}
	if !s.Category.CanReceiveIn(s.Status) {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot record reception for shipment in %s status", s.Status))
	}
	if err := in.Validate(s.Lines); err != nil {
		return nil, err
	}

	reception := in.reconcile(s.ID, s.Lines)
	s.Reception = reception
	s.TotalQuantity = reception.TotalReceived

	event := NewReceptionConfirmedEvent(s, reception)
	s.Raise(event)
	if _, err := s.Costs.When(event); err != nil {
		return nil, err
	}

	s.setStatus(s.Category.ReceptionStatus(), in.ReceivedBy, true)
	return event, nil
}

// RecordSale books a direct sale off the shipment (cement, wood, paint)
func (s *Shipment) RecordSale(quantity, amount decimal.Decimal, actor string) error {
	if !s.Category.IsSellable(s.Status) {
		return ErrNotSellable
	}
	if err := s.applySale(quantity, amount); err != nil {
		return err
	}
	if s.checkSoldOut(actor) {
		return nil
	}
	if s.Status == StatusAvailableForSale {
		s.setStatus(StatusSelling, actor, true)
	}
	return nil
}

// RecordStockUnitSale books a sale made through a stock unit derived from
// this shipment, so shipment level revenue and margin stay complete.
func (s *Shipment) RecordStockUnitSale(quantity, amount decimal.Decimal, actor string) error {
	if !s.Category.SellsThroughInventory() {
		return shared.NewDomainError("INVALID_STATE", "Shipment does not sell through stock units")
	}
	if err := s.applySale(quantity, amount); err != nil {
		return err
	}
	s.checkSoldOut(actor)
	return nil
}

// ReverseSale undoes the counters of a deleted sale. Status is left as is.
func (s *Shipment) ReverseSale(quantity, amount decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity.GreaterThan(s.QuantitySold) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot reverse more than was sold")
	}
	s.QuantitySold = s.QuantitySold.Sub(quantity)
	s.Revenue = s.Revenue.Sub(amount)
	s.IncrementVersion()
	return nil
}

func (s *Shipment) applySale(quantity, amount decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Sale quantity must be positive")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Sale amount cannot be negative")
	}
	if quantity.GreaterThan(s.Remaining()) {
		return shared.NewDomainError("STOCK_EXCEEDED",
			fmt.Sprintf("Shipment %s has %s %s left", s.Code, s.Remaining().String(), s.Category.QuantityUnit()))
	}
	s.QuantitySold = s.QuantitySold.Add(quantity)
	s.Revenue = s.Revenue.Add(amount)
	s.IncrementVersion()
	return nil
}

// checkSoldOut moves the shipment to sold once everything is sold, whatever
// its current status. Closed shipments stay closed. Reports whether the
// shipment is sold afterwards.
func (s *Shipment) checkSoldOut(actor string) bool {
	if !s.Category.HasStatus(StatusSold) || s.Status.IsTerminal() {
		return false
	}
	if s.Status == StatusSold {
		return true
	}
	if s.TotalQuantity.IsPositive() && s.QuantitySold.GreaterThanOrEqual(s.TotalQuantity) {
		s.setStatus(StatusSold, actor, true)
		return true
	}
	return false
}

func (s *Shipment) setStatus(target ShipmentStatus, actor string, automatic bool) {
	from := s.Status
	s.Status = target
	s.IncrementVersion()
	s.Raise(NewShipmentStatusChangedEvent(s, from, target, actor, automatic))
}
