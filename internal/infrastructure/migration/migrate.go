// Package migration applies the ledger schema from migrations/ with
// golang-migrate and scaffolds new migration pairs.
package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// VersionTable records the applied schema version.
const VersionTable = "schema_migrations"

// ErrDirty is returned when a previous migration failed half way. The schema
// has to be repaired by hand and the version forced before anything else runs.
var ErrDirty = errors.New("schema is dirty")

// Migrator runs migrations from one directory against one database.
type Migrator struct {
	m      *migrate.Migrate
	dir    string
	logger *zap.Logger
}

// Status is the applied version against what the directory holds.
type Status struct {
	Version uint
	Dirty   bool
	Latest  uint
	Pending int
}

// Open binds the migrations in dir to db. Close closes db as well.
func Open(db *sql.DB, dir string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: VersionTable})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("load migrations from %s: %w", dir, err)
	}
	return &Migrator{m: m, dir: dir, logger: logger}, nil
}

// Status reports the applied version and how many migrations are pending.
func (m *Migrator) Status() (Status, error) {
	var s Status
	version, dirty, err := m.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return s, fmt.Errorf("read schema version: %w", err)
	default:
		s.Version, s.Dirty = version, dirty
	}

	entries, err := List(m.dir)
	if err != nil {
		return s, err
	}
	for _, e := range entries {
		if e.Version > s.Version {
			s.Pending++
		}
		s.Latest = max(s.Latest, e.Version)
	}
	return s, nil
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	return m.apply("up", m.m.Up)
}

// Steps applies n migrations forward, or rolls back -n when negative.
func (m *Migrator) Steps(n int) error {
	return m.apply(fmt.Sprintf("steps %+d", n), func() error { return m.m.Steps(n) })
}

// To migrates up or down to version.
func (m *Migrator) To(version uint) error {
	return m.apply(fmt.Sprintf("to %d", version), func() error { return m.m.Migrate(version) })
}

// Down rolls back every migration.
func (m *Migrator) Down() error {
	return m.apply("down", m.m.Down)
}

func (m *Migrator) apply(action string, run func() error) error {
	if _, dirty, err := m.m.Version(); err == nil && dirty {
		return fmt.Errorf("migrate %s: %w", action, ErrDirty)
	}

	m.logger.Info("Migrating", zap.String("action", action))
	err := run()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("Schema already current", zap.String("action", action))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", action, err)
	}

	version, _, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		m.logger.Info("All migrations rolled back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	m.logger.Info("Migration finished", zap.String("action", action), zap.Uint("version", version))
	return nil
}

// Force records version as applied and clean without running anything.
// It is the way out of ErrDirty.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing schema version", zap.Int("version", version))
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every table, the version table included.
func (m *Migrator) Drop() error {
	m.logger.Warn("Dropping all ledger tables")
	if err := m.m.Drop(); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}

// Close releases the migration source and the database handle.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
