package procurement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testActor = "operator:amina"

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestCementShipment(t *testing.T, bags, unitPrice string) *Shipment {
	t.Helper()
	s, err := NewShipment("CM-CEM-20260110-001", CategoryCement, "cm", "Dangote Douala", []LineInput{
		{Key: "bag", Quantity: d(bags), UnitPrice: d(unitPrice)},
	}, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), testActor)
	require.NoError(t, err)
	return s
}

func newTestIronShipment(t *testing.T) *Shipment {
	t.Helper()
	s, err := NewShipment("NG-IRN-20260115-003", CategoryIron, "NG", "Kano Steel", []LineInput{
		{Key: "8mm", Quantity: d("4"), UnitPrice: d("10000")},
		{Key: "10mm", Quantity: d("3"), UnitPrice: d("10000")},
		{Key: "12mm", Quantity: d("3"), UnitPrice: d("10000")},
	}, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), testActor)
	require.NoError(t, err)
	return s
}

// advanceTo walks the shipment through manual statuses up to target
func advanceTo(t *testing.T, s *Shipment, target ShipmentStatus) {
	t.Helper()
	require.NoError(t, s.AdvanceStatus(target, testActor))
}

// openForSale brings a cement shipment to available_for_sale
func openForSale(t *testing.T, s *Shipment) {
	t.Helper()
	advanceTo(t, s, StatusArrived)
	advanceTo(t, s, StatusAvailableForSale)
}
