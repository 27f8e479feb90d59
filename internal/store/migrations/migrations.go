// Package migrations owns the schema of the SQLite record store.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// Status reports the schema version of db and the newest version this
// binary knows about.
func Status(db *sql.DB) (current, latest uint, err error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, 0, err
	}

	latest, err = latestVersion()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to determine latest version: %w", err)
	}

	current, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, latest, nil
		}
		return 0, 0, fmt.Errorf("failed to get database version: %w", err)
	}
	if dirty {
		return current, latest, fmt.Errorf("database is in dirty state at version %d", current)
	}
	return current, latest, nil
}

// MigrateUp runs all pending migrations. The connection stays open; the
// caller owns db.
func MigrateUp(db *sql.DB) error {
	current, latest, err := Status(db)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database version %d is ahead of binary version %d", current, latest)
	}

	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func latestVersion() (uint, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return lastVersion(src)
}

// lastVersion walks the source until Next reports the end.
func lastVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(version)
		if err != nil {
			return version, nil
		}
		version = next
	}
}
