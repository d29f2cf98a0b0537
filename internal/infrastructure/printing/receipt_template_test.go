package printing

import (
	"testing"
	"time"

	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() *sales.Receipt {
	return &sales.Receipt{
		Number:   "INV-20260210-0001",
		Date:     time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
		Business: "Sahel Build Kano",
		Currency: "NGN",
		Customer: sales.ReceiptParty{Code: "CUS-00001", Name: "Chinedu <Okafor>", Phone: "+2348031234567"},
		Vehicles: []string{"KAN-123-XY"},
		SoldBy:   "operator:amina",
		Lines: []sales.ReceiptLine{
			{Description: "Cement 50kg", Source: sales.SourceShipment, Quantity: decimal.NewFromInt(40),
				UnitPrice: decimal.NewFromInt(6500), LineTotal: decimal.NewFromInt(260000)},
			{Description: "Iron rod 12mm", Source: sales.SourceStockUnit, Quantity: decimal.RequireFromString("1.5"),
				UnitPrice: decimal.NewFromInt(14300), LineTotal: decimal.NewFromInt(21450)},
		},
		Subtotal:      decimal.NewFromInt(281450),
		Discount:      decimal.NewFromInt(1450),
		Total:         decimal.NewFromInt(280000),
		AmountPaid:    decimal.NewFromInt(100000),
		AmountDue:     decimal.NewFromInt(180000),
		PaymentStatus: sales.PaymentStatusPartial,
	}
}

func TestReceiptTemplate_Render(t *testing.T) {
	html, err := NewReceiptTemplate().Render(sampleReceipt())
	require.NoError(t, err)

	assert.Contains(t, html, "<title>INV-20260210-0001</title>")
	assert.Contains(t, html, "10 Feb 2026 09:30")
	assert.Contains(t, html, "Chinedu &lt;Okafor&gt; (CUS-00001)", "names are escaped")
	assert.Contains(t, html, "Vehicle: KAN-123-XY")
	assert.Contains(t, html, "260,000")
	assert.Contains(t, html, "1.500")
	assert.Contains(t, html, "-1,450")
	assert.Contains(t, html, "Total NGN")
	assert.Contains(t, html, "180,000")
	assert.Contains(t, html, "Partial")
}

func TestReceiptTemplate_WalkIn(t *testing.T) {
	r := sampleReceipt()
	r.Customer = sales.WalkInParty
	r.Vehicles = nil
	r.Discount = decimal.Zero

	html, err := NewReceiptTemplate().Render(r)
	require.NoError(t, err)
	assert.Contains(t, html, "Customer: Walk-in customer")
	assert.NotContains(t, html, "Vehicle:")
	assert.NotContains(t, html, "Discount")
	assert.NotContains(t, html, "Phone:")
}

func TestReceiptTemplate_NilReceipt(t *testing.T) {
	_, err := NewReceiptTemplate().Render(nil)
	assert.Error(t, err)
}
