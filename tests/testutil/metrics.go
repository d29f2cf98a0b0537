package testutil

import (
	"context"

	appshared "github.com/sahelbuild/backend/internal/application/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockLedgerRecorder is a testify mock of the business metrics recorder.
// Use Maybe() on expectations a test does not care about.
type MockLedgerRecorder struct {
	mock.Mock
}

func (m *MockLedgerRecorder) RecordShipmentCreated(ctx context.Context, category string) {
	m.Called(ctx, category)
}

func (m *MockLedgerRecorder) RecordExpense(ctx context.Context, category, stage string, amount decimal.Decimal) {
	m.Called(ctx, category, stage, amount)
}

func (m *MockLedgerRecorder) RecordReception(ctx context.Context, category string, hasDiscrepancy bool) {
	m.Called(ctx, category, hasDiscrepancy)
}

func (m *MockLedgerRecorder) RecordSale(ctx context.Context, paymentStatus string, total decimal.Decimal) {
	m.Called(ctx, paymentStatus, total)
}

func (m *MockLedgerRecorder) RecordPayment(ctx context.Context, method, allocation string, amount decimal.Decimal) {
	m.Called(ctx, method, allocation, amount)
}

func (m *MockLedgerRecorder) RecordRejected(ctx context.Context, code string) {
	m.Called(ctx, code)
}

// DecimalEq matches a decimal argument by value rather than representation
func DecimalEq(expected string) interface{} {
	want := decimal.RequireFromString(expected)
	return mock.MatchedBy(func(v decimal.Decimal) bool { return v.Equal(want) })
}

var _ appshared.LedgerRecorder = (*MockLedgerRecorder)(nil)
