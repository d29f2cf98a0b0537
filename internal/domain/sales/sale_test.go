package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestSale(t *testing.T, customerID *uuid.UUID, discount string) *Sale {
	t.Helper()
	s, err := NewSale("INV-20260201-0001", customerID, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), []ItemInput{
		{SourceType: SourceShipment, SourceID: uuid.New(), Description: "Cement 50kg", Quantity: d("10"), UnitPrice: d("5000")},
		{SourceType: SourceStockUnit, SourceID: uuid.New(), Description: "Iron 12mm", Quantity: d("0.5"), UnitPrice: d("14950")},
	}, d(discount), "operator:amina", "")
	require.NoError(t, err)
	return s
}

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		total, paid string
		want        PaymentStatus
	}{
		{"1000", "0", PaymentStatusUnpaid},
		{"1000", "1", PaymentStatusPartial},
		{"1000", "999.99", PaymentStatusPartial},
		{"1000", "1000", PaymentStatusPaid},
		{"0", "0", PaymentStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.total+"/"+tt.paid, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePaymentStatus(d(tt.total), d(tt.paid)))
		})
	}
}

func TestNewSale(t *testing.T) {
	t.Run("computes totals", func(t *testing.T) {
		customerID := uuid.New()
		s := newTestSale(t, &customerID, "475")

		require.Len(t, s.Items, 2)
		assert.True(t, s.Items[1].LineTotal.Equal(d("7475")))
		assert.True(t, s.Subtotal.Equal(d("57475")))
		assert.True(t, s.Total.Equal(d("57000")))
		assert.True(t, s.AmountDue.Equal(s.Total))
		assert.Equal(t, PaymentStatusUnpaid, s.PaymentStatus)
		assert.True(t, s.BelongsTo(customerID))
		assert.False(t, s.IsWalkIn())
		assert.Equal(t, s.ID, s.Items[0].SaleID)
		require.Len(t, s.PendingEvents(), 1)
	})

	tests := []struct {
		name     string
		items    []ItemInput
		discount string
		soldBy   string
		errCode  string
	}{
		{"no items", nil, "0", "op", "NO_ITEMS"},
		{"no actor", []ItemInput{{SourceType: SourceShipment, SourceID: uuid.New(), Quantity: d("1"), UnitPrice: d("1")}}, "0", "", "INVALID_ACTOR"},
		{"zero quantity", []ItemInput{{SourceType: SourceShipment, SourceID: uuid.New(), Quantity: d("0"), UnitPrice: d("1")}}, "0", "op", "INVALID_QUANTITY"},
		{"negative price", []ItemInput{{SourceType: SourceShipment, SourceID: uuid.New(), Quantity: d("1"), UnitPrice: d("-1")}}, "0", "op", "INVALID_PRICE"},
		{"unknown source", []ItemInput{{SourceType: "pallet", SourceID: uuid.New(), Quantity: d("1"), UnitPrice: d("1")}}, "0", "op", "INVALID_SOURCE"},
		{"discount above subtotal", []ItemInput{{SourceType: SourceVehicle, SourceID: uuid.New(), Quantity: d("1"), UnitPrice: d("100")}}, "101", "op", "INVALID_DISCOUNT"},
		{"negative discount", []ItemInput{{SourceType: SourceVehicle, SourceID: uuid.New(), Quantity: d("1"), UnitPrice: d("100")}}, "-1", "op", "INVALID_DISCOUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSale("INV-1", nil, time.Now(), tt.items, d(tt.discount), tt.soldBy, "")
			assert.ErrorIs(t, err, shared.NewDomainError(tt.errCode, ""))
		})
	}
}

func TestFormatSaleNumber(t *testing.T) {
	assert.Equal(t, "INV-20260201-0012", FormatSaleNumber(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 12))
}

func TestSale_Payments(t *testing.T) {
	customerID := uuid.New()
	s := newTestSale(t, &customerID, "475")

	require.NoError(t, s.ApplyPayment(d("20000")))
	assert.Equal(t, PaymentStatusPartial, s.PaymentStatus)
	assert.True(t, s.AmountDue.Equal(d("37000")))
	assert.True(t, s.IsOpen())

	err := s.ApplyPayment(d("37001"))
	assert.ErrorIs(t, err, shared.NewDomainError("EXCEEDS_AMOUNT_DUE", ""))

	require.NoError(t, s.ApplyPayment(d("37000")))
	assert.Equal(t, PaymentStatusPaid, s.PaymentStatus)
	assert.True(t, s.AmountDue.IsZero())
	assert.False(t, s.IsOpen())

	require.NoError(t, s.ReversePayment(d("57000")))
	assert.Equal(t, PaymentStatusUnpaid, s.PaymentStatus)
	assert.Error(t, s.ReversePayment(d("1")))
	assert.ErrorIs(t, s.ApplyPayment(decimal.Zero), shared.ErrInvalidAmount)
}

func TestSale_CheckInitialPayment(t *testing.T) {
	customerID := uuid.New()
	credit := newTestSale(t, &customerID, "0")
	walkIn := newTestSale(t, nil, "0")

	assert.NoError(t, credit.CheckInitialPayment(decimal.Zero))
	assert.NoError(t, credit.CheckInitialPayment(d("1000")))
	assert.Error(t, credit.CheckInitialPayment(d("-1")))
	assert.ErrorIs(t, credit.CheckInitialPayment(d("57476")), shared.NewDomainError("EXCEEDS_AMOUNT_DUE", ""))

	assert.ErrorIs(t, walkIn.CheckInitialPayment(d("1000")), shared.NewDomainError("WALK_IN_MUST_PAY", ""))
	assert.NoError(t, walkIn.CheckInitialPayment(walkIn.Total))
}

func TestSale_VehicleIDs(t *testing.T) {
	vehicle := uuid.New()
	s, err := NewSale("INV-1", nil, time.Now(), []ItemInput{
		{SourceType: SourceVehicle, SourceID: vehicle, Quantity: d("10"), UnitPrice: d("5200")},
		{SourceType: SourceVehicle, SourceID: vehicle, Quantity: d("5"), UnitPrice: d("5000")},
		{SourceType: SourceShipment, SourceID: uuid.New(), Quantity: d("1"), UnitPrice: d("1")},
	}, decimal.Zero, "op", "")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{vehicle}, s.VehicleIDs())
}

func TestNewReceipt(t *testing.T) {
	s := newTestSale(t, nil, "475")
	r := NewReceipt(s, "Sahel Build", "NGN", WalkInParty, nil)

	assert.Equal(t, s.Number, r.Number)
	assert.Equal(t, "Walk-in customer", r.Customer.Name)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "Iron 12mm", r.Lines[1].Description)
	assert.True(t, r.Total.Equal(d("57000")))
	assert.True(t, r.Discount.Equal(d("475")))
	assert.Equal(t, PaymentStatusUnpaid, r.PaymentStatus)
}
