package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4/database"

	"github.com/zjrosen/vitality/internal/log"
)

// DefaultMigrationsTable tracks the applied schema version.
const DefaultMigrationsTable = "schema_migrations"

// ErrNilConfig is returned by WithInstance when config is nil.
var ErrNilConfig = errors.New("no config")

// Config configures the migration driver.
type Config struct {
	// MigrationsTable overrides DefaultMigrationsTable.
	MigrationsTable string

	// NoTxWrap runs each migration outside a transaction.
	NoTxWrap bool
}

// Driver implements database.Driver for connections opened with
// ncruces/go-sqlite3. Locking is process-local.
type Driver struct {
	db     *sql.DB
	locked atomic.Bool
	table  string
	noTx   bool
}

var _ database.Driver = (*Driver)(nil)

// WithInstance wraps an open connection and ensures the version table exists.
func WithInstance(db *sql.DB, config *Config) (database.Driver, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	table := config.MigrationsTable
	if table == "" {
		table = DefaultMigrationsTable
	}

	d := &Driver{db: db, table: table, noTx: config.NoTxWrap}
	if err := d.ensureVersionTable(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) ensureVersionTable() (err error) {
	if err := d.Lock(); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, d.Unlock())
	}()

	_, err = d.db.Exec(fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (version uint64, dirty bool);
	CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_version_unique ON %[1]s (version);
	`, d.table))
	return err
}

// Open is unsupported; connections are supplied through WithInstance.
func (d *Driver) Open(string) (database.Driver, error) {
	return nil, errors.New("open by url is not supported, use WithInstance")
}

// Close closes the underlying connection.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Lock implements database.Driver.
func (d *Driver) Lock() error {
	if !d.locked.CompareAndSwap(false, true) {
		return database.ErrLocked
	}
	return nil
}

// Unlock implements database.Driver.
func (d *Driver) Unlock() error {
	if !d.locked.CompareAndSwap(true, false) {
		return database.ErrNotLocked
	}
	return nil
}

// Run applies one migration file.
func (d *Driver) Run(migration io.Reader) error {
	body, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	query := string(body)

	if d.noTx {
		if _, err := d.db.Exec(query); err != nil {
			return &database.Error{OrigErr: err, Query: body}
		}
		return nil
	}
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(query); err != nil {
			return &database.Error{OrigErr: err, Query: body}
		}
		return nil
	})
}

// inTx runs fn in a transaction, rolling back if fn fails.
func (d *Driver) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return &database.Error{OrigErr: err, Err: "transaction start failed"}
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.ErrorErr(log.CatDB, "Rollback failed", rbErr)
			return errors.Join(err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return &database.Error{OrigErr: err, Err: "transaction commit failed"}
	}
	return nil
}

// SetVersion records version as the only row in the version table.
func (d *Driver) SetVersion(version int, dirty bool) error {
	return d.inTx(func(tx *sql.Tx) error {
		reset := "DELETE FROM " + d.table //nolint:gosec // table name comes from Config
		if _, err := tx.Exec(reset); err != nil {
			return &database.Error{OrigErr: err, Query: []byte(reset)}
		}

		// A dirty NilVersion is kept so a failed first down migration is
		// still visible.
		if version < 0 && !(version == database.NilVersion && dirty) {
			return nil
		}
		insert := "INSERT INTO " + d.table + " (version, dirty) VALUES (?, ?)" //nolint:gosec // table name comes from Config
		if _, err := tx.Exec(insert, version, dirty); err != nil {
			return &database.Error{OrigErr: err, Query: []byte(insert)}
		}
		return nil
	})
}

// Version returns the recorded version, or database.NilVersion if none.
func (d *Driver) Version() (version int, dirty bool, err error) {
	row := d.db.QueryRow("SELECT version, dirty FROM " + d.table + " LIMIT 1") //nolint:gosec // table name comes from Config
	if err := row.Scan(&version, &dirty); err != nil {
		return database.NilVersion, false, nil
	}
	return version, dirty, nil
}

// Drop removes every table and compacts the file.
func (d *Driver) Drop() error {
	names, err := d.tableNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		stmt := "DROP TABLE " + name
		if err := d.inTx(func(tx *sql.Tx) error {
			_, err := tx.Exec(stmt)
			return err
		}); err != nil {
			return &database.Error{OrigErr: err, Query: []byte(stmt)}
		}
	}
	if len(names) == 0 {
		return nil
	}
	if _, err := d.db.Exec("VACUUM"); err != nil {
		return &database.Error{OrigErr: err, Query: []byte("VACUUM")}
	}
	return nil
}

func (d *Driver) tableNames() (names []string, err error) {
	const query = `SELECT name FROM sqlite_master WHERE type = 'table'`
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, &database.Error{OrigErr: err, Query: []byte(query)}
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		// sqlite_sequence and friends are owned by SQLite.
		if name != "" && !strings.HasPrefix(name, "sqlite_") {
			names = append(names, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &database.Error{OrigErr: err, Query: []byte(query)}
	}
	return names, nil
}
