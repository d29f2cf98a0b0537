package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSale(t *testing.T, number string, customerID *uuid.UUID, date time.Time, source sales.SourceType, sourceID uuid.UUID, total decimal.Decimal) *sales.Sale {
	t.Helper()
	s, err := sales.NewSale(number, customerID, date, []sales.ItemInput{
		{SourceType: source, SourceID: sourceID, Description: "Cement bags", Quantity: d("1"), UnitPrice: total},
	}, decimal.Zero, testActor, "")
	require.NoError(t, err)
	return s
}

func TestGormSaleRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	shipmentID := uuid.New()
	vehicleID := uuid.New()

	jan12 := newSale(t, "INV-20260112-0001", &customerID, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), sales.SourceShipment, shipmentID, d("40000"))
	jan10 := newSale(t, "INV-20260110-0001", &customerID, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), sales.SourceVehicle, vehicleID, d("30000"))
	paid := newSale(t, "INV-20260111-0001", &customerID, time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), sales.SourceShipment, shipmentID, d("10000"))
	require.NoError(t, paid.ApplyPayment(d("10000")))
	walkIn := newSale(t, "INV-20260111-0002", nil, time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), sales.SourceShipment, shipmentID, d("5000"))

	for _, s := range []*sales.Sale{jan12, jan10, paid, walkIn} {
		require.NoError(t, repo.Save(ctx, s))
	}

	t.Run("find by number restores items", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, "INV-20260110-0001")
		require.NoError(t, err)
		require.Len(t, found.Items, 1)
		assert.Equal(t, sales.SourceVehicle, found.Items[0].SourceType)
		assert.Equal(t, []uuid.UUID{vehicleID}, found.VehicleIDs())
		assert.Equal(t, sales.PaymentStatusUnpaid, found.PaymentStatus)
	})

	t.Run("open sales oldest first", func(t *testing.T) {
		open, err := repo.FindOpenByCustomer(ctx, customerID)
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, jan10.ID, open[0].ID)
		assert.Equal(t, jan12.ID, open[1].ID)
	})

	t.Run("exists by source", func(t *testing.T) {
		exists, err := repo.ExistsBySource(ctx, sales.SourceShipment, shipmentID)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySource(ctx, sales.SourceStockUnit, shipmentID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("filter by vehicle", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, sales.SaleFilter{VehicleID: &vehicleID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		assert.Equal(t, jan10.ID, list[0].ID)
	})

	t.Run("filter by payment status", func(t *testing.T) {
		_, total, err := repo.FindAll(ctx, sales.SaleFilter{PaymentStatus: sales.PaymentStatusPaid})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("next number per day", func(t *testing.T) {
		number, err := repo.NextNumber(ctx, time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "INV-20260111-0003", number)

		number, err = repo.NextNumber(ctx, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "INV-20260201-0001", number)
	})

	t.Run("delete removes sale and items", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, walkIn.ID))
		_, err := repo.FindByID(ctx, walkIn.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, walkIn.ID), shared.ErrNotFound)
	})
}
