package persistence

import (
	"testing"
	"time"

	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testActor = "operator:amina"

// newTestDB opens an in-memory SQLite database with the ledger schema.
// A single connection keeps every statement on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newIronShipment(t *testing.T, code string) *procurement.Shipment {
	t.Helper()
	s, err := procurement.NewShipment(code, procurement.CategoryIron, "NG", "Kano Steel", []procurement.LineInput{
		{Key: "8mm", Quantity: d("4"), UnitPrice: d("10000")},
		{Key: "10mm", Quantity: d("3"), UnitPrice: d("10000")},
	}, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), testActor)
	require.NoError(t, err)
	return s
}

func newCementShipment(t *testing.T, code string) *procurement.Shipment {
	t.Helper()
	s, err := procurement.NewShipment(code, procurement.CategoryCement, "CM", "Dangote Douala", []procurement.LineInput{
		{Key: "bag", Quantity: d("600"), UnitPrice: d("5000")},
	}, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), testActor)
	require.NoError(t, err)
	return s
}

func newCustomer(t *testing.T, code, phone string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(code, "Chinedu Okafor", phone, valueobject.Nigeria, partner.CustomerTypeWholesale)
	require.NoError(t, err)
	return c
}
