// Package sqlite persists individuals and their domain events in SQLite.
// It owns the connection lifecycle and applies migrations on open.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zjrosen/vitality/internal/individual/domain"
	"github.com/zjrosen/vitality/internal/infrastructure/migrations"
	"github.com/zjrosen/vitality/internal/log"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB manages the SQLite connection and hands out repositories bound to it.
type DB struct {
	conn  *sql.DB
	path  string
	clock domain.Clock
}

// Option configures a DB.
type Option func(*DB)

// WithClock sets the clock used for row timestamps and for validating
// restored sleep state.
func WithClock(c domain.Clock) Option {
	return func(db *DB) {
		if c != nil {
			db.clock = c
		}
	}
}

// NewDB opens the database at path, configures pragmas and runs migrations.
// The parent directory is created if needed. An existing file is copied to
// {path}.bak before migrating.
//
// Example:
//
//	db, err := sqlite.NewDB("~/.vitality/vitality.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
func NewDB(path string, opts ...Option) (*DB, error) {
	log.Debug(log.CatDB, "Opening database", "path", path)

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.ErrorErr(log.CatDB, "Failed to create database directory", err, "path", dir)
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	// Pre-migration backup: copy existing DB to {path}.bak
	if _, err := os.Stat(path); err == nil {
		backupPath := path + ".bak"
		if err := copyFile(path, backupPath); err != nil {
			log.ErrorErr(log.CatDB, "Failed to create pre-migration backup", err, "path", path, "backup", backupPath)
			return nil, fmt.Errorf("failed to create pre-migration backup: %w", err)
		}
		log.Debug(log.CatDB, "Created pre-migration backup", "backup", backupPath)
	}

	// Open connection with ncruces driver
	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open database", err, "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := configure(conn); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to configure database", err, "path", path)
		return nil, err
	}

	// Run migrations
	if err := migrations.RunMigrations(conn); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to run migrations", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db := &DB{conn: conn, path: path, clock: domain.SystemClock{}}
	for _, opt := range opts {
		opt(db)
	}

	log.Info(log.CatDB, "Database initialized", "path", path)
	return db, nil
}

// configure pings the connection and applies the pragmas every session needs.
func configure(conn *sql.DB) error {
	if err := conn.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL for concurrent readers while the CLI writes; busy_timeout in ms.
	pragmas := []struct{ stmt, what string }{
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		{"PRAGMA foreign_keys=ON", "enable foreign keys"},
		{"PRAGMA busy_timeout=5000", "set busy timeout"},
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p.stmt); err != nil {
			return fmt.Errorf("failed to %s: %w", p.what, err)
		}
	}
	return nil
}

// Close releases database resources.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	log.Debug(log.CatDB, "Closing database", "path", db.path)
	return db.conn.Close()
}

// IndividualRepository returns a repository using this connection.
func (db *DB) IndividualRepository() domain.IndividualRepository {
	return newIndividualRepository(db.conn, db.clock)
}

// EventStore returns the append-only event log using this connection.
func (db *DB) EventStore() *EventStore {
	return &EventStore{db: db.conn}
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// copyFile copies src to dst, overwriting dst. A failed close of dst is
// reported so a truncated backup is never mistaken for a good one.
func copyFile(src, dst string) (retErr error) {
	in, err := os.Open(src) //nolint:gosec // G304: src is the configured database path
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close source file: %w", closeErr)
		}
	}()

	// Keep source file permissions
	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode()) //nolint:gosec // G304: dst is derived from the database path
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close backup file: %w", closeErr)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
