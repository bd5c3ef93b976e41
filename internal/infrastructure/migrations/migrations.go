// Package migrations applies the vitality SQLite schema.
//
// Schema files are embedded and applied with golang-migrate. The stock
// golang-migrate sqlite3 driver pulls in mattn/go-sqlite3, which registers
// the same "sqlite3" driver name as ncruces/go-sqlite3, so this package
// ships its own database.Driver that works on any *sql.DB opened through
// the ncruces driver.
//
// Usage:
//
//	db, _ := sql.Open("sqlite3", "file:vitality.db")
//	err := migrations.RunMigrations(db)
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/zjrosen/vitality/internal/log"
)

//go:embed *.sql
var embeddedMigrationsFS embed.FS

// MigrationsFS returns the embedded schema files.
func MigrationsFS() fs.FS {
	return embeddedMigrationsFS
}

// newMigrate builds a migrator over db using the embedded schema.
func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	// Source: embedded SQL files
	source, err := iofs.New(embeddedMigrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("loading embedded migrations: %w", err)
	}
	// Database: ncruces-compatible driver over the existing connection
	driver, err := WithInstance(db, &Config{})
	if err != nil {
		return nil, fmt.Errorf("creating migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}

// RunMigrations brings db up to the latest schema version. A database that
// is already current is not an error.
func RunMigrations(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug(log.CatDB, "Schema up to date")
			return nil
		}
		return err
	}

	// Log the version we ended up at
	if version, dirty, err := m.Version(); err == nil {
		log.Info(log.CatDB, "Applied migrations", "version", version, "dirty", dirty)
	}
	return nil
}

// SchemaVersion reports the applied schema version. A database with no
// migrations applied returns version 0.
func SchemaVersion(db *sql.DB) (version uint, dirty bool, err error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	// No migrations applied yet
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
