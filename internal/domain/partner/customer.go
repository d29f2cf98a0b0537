package partner

import (
	"fmt"
	"strings"

	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CustomerType decides the default price list of a customer
type CustomerType string

const (
	CustomerTypeWholesale CustomerType = "wholesale"
	CustomerTypeRetail    CustomerType = "retail"
)

// IsValid checks if the customer type is valid
func (t CustomerType) IsValid() bool {
	return t == CustomerTypeWholesale || t == CustomerTypeRetail
}

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is a buyer with a running receivable balance.
// Balance is signed: positive means the customer owes the business.
type Customer struct {
	shared.BaseAggregateRoot
	Code           string
	Name           string
	Phone          string
	Country        valueobject.Country
	Type           CustomerType
	Address        string
	Notes          string
	Balance        decimal.Decimal
	TotalPurchases decimal.Decimal
	TotalPaid      decimal.Decimal
	CreditLimit    decimal.Decimal
	CreditAllowed  bool
	Status         CustomerStatus
}

// FormatCustomerCode builds CUS-NNNNN
func FormatCustomerCode(seq int) string {
	return fmt.Sprintf("CUS-%05d", seq)
}

// NewCustomer creates an active customer with a zero balance and no credit
func NewCustomer(code, name, phone string, country valueobject.Country, customerType CustomerType) (*Customer, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if !country.IsValid() {
		return nil, shared.NewDomainError("INVALID_COUNTRY", fmt.Sprintf("Unsupported country %q", country))
	}
	if !customerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("Unknown customer type %q", customerType))
	}
	normalized, err := NormalizePhone(phone, country)
	if err != nil {
		return nil, err
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(strings.TrimSpace(code)),
		Name:              strings.TrimSpace(name),
		Phone:             normalized,
		Country:           country,
		Type:              customerType,
		Balance:           decimal.Zero,
		TotalPurchases:    decimal.Zero,
		TotalPaid:         decimal.Zero,
		CreditLimit:       decimal.Zero,
		Status:            CustomerStatusActive,
	}
	c.Raise(NewCustomerCreatedEvent(c))
	return c, nil
}

// Update changes the contact details of the customer
func (c *Customer) Update(name, phone string, customerType CustomerType, address, notes string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if !customerType.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("Unknown customer type %q", customerType))
	}
	normalized, err := NormalizePhone(phone, c.Country)
	if err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Phone = normalized
	c.Type = customerType
	c.Address = strings.TrimSpace(address)
	c.Notes = notes
	c.IncrementVersion()
	return nil
}

// SetCredit sets whether the customer may leave sales unpaid and up to what
// balance. A zero limit means credit is not capped.
func (c *Customer) SetCredit(allowed bool, limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.CreditAllowed = allowed
	c.CreditLimit = limit
	c.IncrementVersion()
	return nil
}

// CheckCredit verifies the customer may take on an extra amount due
func (c *Customer) CheckCredit(due decimal.Decimal) error {
	if !due.IsPositive() {
		return nil
	}
	if !c.CreditAllowed {
		return shared.NewDomainError("CREDIT_NOT_ALLOWED",
			fmt.Sprintf("Customer %s must pay in full", c.Code))
	}
	if c.CreditLimit.IsPositive() && c.Balance.Add(due).GreaterThan(c.CreditLimit) {
		return shared.NewDomainError("CREDIT_LIMIT_EXCEEDED",
			fmt.Sprintf("Customer %s would owe %s over a limit of %s",
				c.Code, c.Balance.Add(due).String(), c.CreditLimit.String()))
	}
	return nil
}

// RecordPurchase adds a sale total to the customer's account
func (c *Customer) RecordPurchase(total decimal.Decimal) {
	c.TotalPurchases = c.TotalPurchases.Add(total)
	c.Balance = c.Balance.Add(total)
	c.IncrementVersion()
}

// ReversePurchase removes a deleted sale total from the account
func (c *Customer) ReversePurchase(total decimal.Decimal) {
	c.TotalPurchases = c.TotalPurchases.Sub(total)
	c.Balance = c.Balance.Sub(total)
	c.IncrementVersion()
}

// ApplyPayment credits a payment to the account
func (c *Customer) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	c.Balance = c.Balance.Sub(amount)
	c.TotalPaid = c.TotalPaid.Add(amount)
	c.IncrementVersion()
	return nil
}

// ReversePayment undoes a payment, fully or for the part that was removed
func (c *Customer) ReversePayment(amount decimal.Decimal) {
	c.Balance = c.Balance.Add(amount)
	c.TotalPaid = c.TotalPaid.Sub(amount)
	c.IncrementVersion()
}

// Activate reactivates the customer
func (c *Customer) Activate() {
	c.Status = CustomerStatusActive
	c.IncrementVersion()
}

// Deactivate hides the customer from the counter. History is kept.
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}
	c.Status = CustomerStatusInactive
	c.IncrementVersion()
	return nil
}

// IsActive returns true if the customer can buy
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// IsWholesale returns true for wholesale buyers
func (c *Customer) IsWholesale() bool {
	return c.Type == CustomerTypeWholesale
}

// Owes returns true when the customer has an outstanding balance
func (c *Customer) Owes() bool {
	return c.Balance.IsPositive()
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}
