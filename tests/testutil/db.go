// Package testutil holds fixtures shared by the ledger's package tests.
package testutil

import (
	"testing"

	"github.com/sahelbuild/backend/internal/infrastructure/event"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewLedgerDB opens an in-memory SQLite database holding every ledger table
// and the event journal. One connection keeps transactions on the same
// database.
func NewLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tables := append(models.AllModels(), &event.JournalEntry{})
	require.NoError(t, db.AutoMigrate(tables...), "migrate ledger tables")
	return db
}
