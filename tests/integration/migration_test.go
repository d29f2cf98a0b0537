//go:build integration

package integration

import (
	"testing"

	"github.com/sahelbuild/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_RollbackAndReapply(t *testing.T) {
	tdb := NewTestDB(t)

	m := openMigrator(t, tdb.DSN)
	defer m.Close()

	entries, err := migration.List(findMigrationsPath())
	require.NoError(t, err)
	latest := entries[len(entries)-1].Version

	s, err := m.Status()
	require.NoError(t, err)
	assert.Equal(t, migration.Status{Version: latest, Latest: latest}, s)

	require.NoError(t, m.Steps(-1))
	s, err = m.Status()
	require.NoError(t, err)
	assert.Equal(t, entries[len(entries)-2].Version, s.Version)
	assert.Equal(t, 1, s.Pending)
	assert.False(t, tdb.DB.Migrator().HasTable("event_journal"))

	require.NoError(t, m.Up())
	require.NoError(t, m.Up(), "a second up is a no-op")
	s, err = m.Status()
	require.NoError(t, err)
	assert.Zero(t, s.Pending)
	assert.True(t, tdb.DB.Migrator().HasTable("event_journal"))
}

func TestMigrations_DirtySchemaBlocks(t *testing.T) {
	tdb := NewTestDB(t)

	m := openMigrator(t, tdb.DSN)
	defer m.Close()

	s, err := m.Status()
	require.NoError(t, err)
	require.NoError(t, tdb.DB.Exec("UPDATE "+migration.VersionTable+" SET dirty = true").Error)

	err = m.Up()
	assert.ErrorIs(t, err, migration.ErrDirty)

	require.NoError(t, m.Force(int(s.Version)))
	assert.NoError(t, m.Up())
}
