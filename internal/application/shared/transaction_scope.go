package shared

import (
	"context"

	"github.com/sahelbuild/backend/internal/domain/finance"
	"github.com/sahelbuild/backend/internal/domain/inventory"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/sales"
)

// TransactionScope runs multi-record ledger operations atomically.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	Shipments() procurement.ShipmentRepository
	StockUnits() inventory.StockUnitRepository
	Customers() partner.CustomerRepository
	Vehicles() partner.VehicleRepository
	Sales() sales.SaleRepository
	Payments() finance.PaymentRepository
}

// Repositories is a plain set of repositories
type Repositories struct {
	ShipmentRepo  procurement.ShipmentRepository
	StockUnitRepo inventory.StockUnitRepository
	CustomerRepo  partner.CustomerRepository
	VehicleRepo   partner.VehicleRepository
	SaleRepo      sales.SaleRepository
	PaymentRepo   finance.PaymentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing with mocked repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Shipments returns the shipment repository.
func (s *NoOpTransactionScope) Shipments() procurement.ShipmentRepository {
	return s.repos.ShipmentRepo
}

// StockUnits returns the stock unit repository.
func (s *NoOpTransactionScope) StockUnits() inventory.StockUnitRepository {
	return s.repos.StockUnitRepo
}

// Customers returns the customer repository.
func (s *NoOpTransactionScope) Customers() partner.CustomerRepository {
	return s.repos.CustomerRepo
}

// Vehicles returns the vehicle repository.
func (s *NoOpTransactionScope) Vehicles() partner.VehicleRepository {
	return s.repos.VehicleRepo
}

// Sales returns the sale repository.
func (s *NoOpTransactionScope) Sales() sales.SaleRepository {
	return s.repos.SaleRepo
}

// Payments returns the payment repository.
func (s *NoOpTransactionScope) Payments() finance.PaymentRepository {
	return s.repos.PaymentRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
