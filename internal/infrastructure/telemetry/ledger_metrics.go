package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics counts the business activity of the ledger: shipments,
// expenses, receptions, sales and payments. Amounts are recorded in whole
// currency units of the deployment's currency.
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	shipmentCreatedTotal *Counter
	expenseTotal         *Counter
	expenseAmountTotal   *Counter
	receptionTotal       *Counter
	saleTotal            *Counter
	saleAmountTotal      *Counter
	paymentTotal         *Counter
	paymentAmountTotal   *Counter
	rejectedTotal        *Counter
}

// LedgerMetricsConfig holds configuration for ledger metrics.
type LedgerMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewLedgerMetrics creates a new LedgerMetrics instance.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&lm.shipmentCreatedTotal, "ledger_shipment_created_total", "Total number of shipments created", "{shipments}"},
		{&lm.expenseTotal, "ledger_expense_total", "Total number of shipment expenses recorded", "{expenses}"},
		{&lm.expenseAmountTotal, "ledger_expense_amount_total", "Total amount of shipment expenses", "{currency}"},
		{&lm.receptionTotal, "ledger_reception_total", "Total number of receptions confirmed", "{receptions}"},
		{&lm.saleTotal, "ledger_sale_total", "Total number of sales recorded", "{sales}"},
		{&lm.saleAmountTotal, "ledger_sale_amount_total", "Total invoiced amount", "{currency}"},
		{&lm.paymentTotal, "ledger_payment_total", "Total number of customer payments applied", "{payments}"},
		{&lm.paymentAmountTotal, "ledger_payment_amount_total", "Total amount of customer payments", "{currency}"},
		{&lm.rejectedTotal, "ledger_rejected_total", "Total number of operations rejected by a ledger rule", "{operations}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	return lm, nil
}

// RecordShipmentCreated records a new shipment.
func (lm *LedgerMetrics) RecordShipmentCreated(ctx context.Context, category string) {
	lm.shipmentCreatedTotal.Inc(ctx, AttrCategory.String(category))
}

// RecordExpense records an expense booked on a shipment.
func (lm *LedgerMetrics) RecordExpense(ctx context.Context, category, stage string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrCategory.String(category), AttrExpenseStage.String(stage)}
	lm.expenseTotal.Inc(ctx, attrs...)
	lm.expenseAmountTotal.Add(ctx, amount.IntPart(), attrs...)
}

// RecordReception records a confirmed reception.
func (lm *LedgerMetrics) RecordReception(ctx context.Context, category string, hasDiscrepancy bool) {
	lm.receptionTotal.Inc(ctx, AttrCategory.String(category), AttrDiscrepancy.Bool(hasDiscrepancy))
}

// RecordSale records an invoice and its total.
func (lm *LedgerMetrics) RecordSale(ctx context.Context, paymentStatus string, total decimal.Decimal) {
	lm.saleTotal.Inc(ctx, AttrPaymentStatus.String(paymentStatus))
	lm.saleAmountTotal.Add(ctx, total.IntPart(), AttrPaymentStatus.String(paymentStatus))
}

// RecordPayment records a customer payment. allocation is "targeted" when
// the payment named a sale, "oldest_first" otherwise.
func (lm *LedgerMetrics) RecordPayment(ctx context.Context, method, allocation string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrPaymentMethod.String(method), AttrAllocation.String(allocation)}
	lm.paymentTotal.Inc(ctx, attrs...)
	lm.paymentAmountTotal.Add(ctx, amount.IntPart(), attrs...)
}

// RecordRejected counts an operation refused by a ledger rule, labeled by
// the domain error code.
func (lm *LedgerMetrics) RecordRejected(ctx context.Context, code string) {
	lm.rejectedTotal.Inc(ctx, AttrErrorCode.String(code))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
