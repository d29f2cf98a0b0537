package shared

import (
	"context"
	"errors"

	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LedgerRecorder receives business counters from the services.
// telemetry.LedgerMetrics implements it.
type LedgerRecorder interface {
	RecordShipmentCreated(ctx context.Context, category string)
	RecordExpense(ctx context.Context, category, stage string, amount decimal.Decimal)
	RecordReception(ctx context.Context, category string, hasDiscrepancy bool)
	RecordSale(ctx context.Context, paymentStatus string, total decimal.Decimal)
	RecordPayment(ctx context.Context, method, allocation string, amount decimal.Decimal)
	RecordRejected(ctx context.Context, code string)
}

// Allocation modes reported with payments
const (
	AllocationTargeted    = "targeted"
	AllocationOldestFirst = "oldest_first"
)

// NoopRecorder discards everything
type NoopRecorder struct{}

func (NoopRecorder) RecordShipmentCreated(context.Context, string)                  {}
func (NoopRecorder) RecordExpense(context.Context, string, string, decimal.Decimal) {}
func (NoopRecorder) RecordReception(context.Context, string, bool)                  {}
func (NoopRecorder) RecordSale(context.Context, string, decimal.Decimal)            {}
func (NoopRecorder) RecordPayment(context.Context, string, string, decimal.Decimal) {}
func (NoopRecorder) RecordRejected(context.Context, string)                         {}

// RecorderOrNoop returns r, or a NoopRecorder when r is nil
func RecorderOrNoop(r LedgerRecorder) LedgerRecorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}

// RecordRejection counts err under its domain code. Other errors are not
// business rejections and are ignored.
func RecordRejection(ctx context.Context, r LedgerRecorder, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		r.RecordRejected(ctx, domainErr.Code)
	}
}
