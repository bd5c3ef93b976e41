package migrations

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func columns(t *testing.T, db *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	require.NoError(t, err)
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols[name] = true
	}
	require.NoError(t, rows.Err())
	return cols
}

func TestRunMigrations_FreshDB(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, RunMigrations(db))

	require.True(t, tableExists(t, db, "individuals"))
	require.True(t, tableExists(t, db, "domain_events"))

	version, dirty, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, uint(2), version)
	require.False(t, dirty)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, RunMigrations(db))
	require.NoError(t, RunMigrations(db), "second run should be a no-op")
	require.True(t, tableExists(t, db, "individuals"))
}

func TestSchemaVersion_Empty(t *testing.T) {
	db := openMemory(t)

	version, dirty, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Zero(t, version)
	require.False(t, dirty)
}

func TestMigrations_Schema(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, RunMigrations(db))

	individualCols := columns(t, db, "individuals")
	for _, col := range []string{"id", "name", "energy", "max_energy", "sleep_since", "created_at", "updated_at"} {
		require.True(t, individualCols[col], "individuals.%s should exist", col)
	}

	eventCols := columns(t, db, "domain_events")
	for _, col := range []string{"id", "aggregate_id", "type", "payload", "occurred_at"} {
		require.True(t, eventCols[col], "domain_events.%s should exist", col)
	}

	var indexCount int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name IN
		('idx_individuals_name', 'idx_domain_events_aggregate', 'idx_domain_events_type')`).Scan(&indexCount)
	require.NoError(t, err)
	require.Equal(t, 3, indexCount)
}

func TestMigrations_Constraints(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, RunMigrations(db))

	insert := `INSERT INTO individuals (id, name, energy, max_energy, created_at, updated_at) VALUES (?, ?, ?, ?, 0, 0)`

	_, err := db.Exec(insert, "a", "Ada", 50, 100)
	require.NoError(t, err)

	_, err = db.Exec(insert, "b", "Bo", 120, 100)
	require.Error(t, err, "energy above max should be rejected")

	_, err = db.Exec(insert, "c", "Cy", -1, 100)
	require.Error(t, err, "negative energy should be rejected")

	_, err = db.Exec(insert, "d", "  ", 10, 100)
	require.Error(t, err, "blank name should be rejected")

	_, err = db.Exec(insert, "a", "Ada", 10, 100)
	require.Error(t, err, "duplicate id should be rejected")
}

func TestMigrations_Down(t *testing.T) {
	db := openMemory(t)

	driver, err := WithInstance(db, &Config{})
	require.NoError(t, err)
	source, err := iofs.New(MigrationsFS(), ".")
	require.NoError(t, err)
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	require.NoError(t, err)

	require.NoError(t, m.Up())
	require.True(t, tableExists(t, db, "domain_events"))

	require.NoError(t, m.Steps(-1))
	require.False(t, tableExists(t, db, "domain_events"))
	require.True(t, tableExists(t, db, "individuals"))

	require.NoError(t, m.Down())
	require.False(t, tableExists(t, db, "individuals"))

	var indexCount int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name LIKE 'idx_%'`).Scan(&indexCount)
	require.NoError(t, err)
	require.Zero(t, indexCount)
}

func TestMigrations_Drop(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, RunMigrations(db))

	driver, err := WithInstance(db, &Config{})
	require.NoError(t, err)
	require.NoError(t, driver.Drop())

	require.False(t, tableExists(t, db, "individuals"))
	require.False(t, tableExists(t, db, "domain_events"))
}

func TestMigrationsFS_Embedded(t *testing.T) {
	entries, err := embeddedMigrationsFS.ReadDir(".")
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	for _, name := range []string{
		"000001_create_individuals.up.sql",
		"000001_create_individuals.down.sql",
		"000002_create_domain_events.up.sql",
		"000002_create_domain_events.down.sql",
	} {
		require.True(t, names[name], "%s should be embedded", name)
	}

	up, err := embeddedMigrationsFS.ReadFile("000001_create_individuals.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(up), "CREATE TABLE individuals")
}

func TestWithInstance(t *testing.T) {
	db := openMemory(t)

	_, err := WithInstance(db, nil)
	require.ErrorIs(t, err, ErrNilConfig)

	driver, err := WithInstance(db, &Config{MigrationsTable: "custom_versions"})
	require.NoError(t, err)
	require.True(t, tableExists(t, db, "custom_versions"))

	version, dirty, err := driver.Version()
	require.NoError(t, err)
	require.Equal(t, -1, version)
	require.False(t, dirty)

	require.NoError(t, driver.SetVersion(3, false))
	version, _, err = driver.Version()
	require.NoError(t, err)
	require.Equal(t, 3, version)
}

func TestDriver_LockIsExclusive(t *testing.T) {
	db := openMemory(t)
	driver, err := WithInstance(db, &Config{})
	require.NoError(t, err)

	require.NoError(t, driver.Lock())
	require.True(t, errors.Is(driver.Lock(), database.ErrLocked))
	require.NoError(t, driver.Unlock())
	require.Error(t, driver.Unlock())
}
