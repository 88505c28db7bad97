package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrations_CreatesSchema(t *testing.T) {
	db := openMemoryDB(t)

	require.NoError(t, RunMigrations(db))

	for _, table := range []string{"users", "projects", "project_assignments", "time_records"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	var versions int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations WHERE dirty = FALSE").Scan(&versions))
	assert.Equal(t, 3, versions)

	// second run is a no-op
	require.NoError(t, RunMigrations(db))
}

func TestRunMigrations_UniqueRecordPerCell(t *testing.T) {
	db := openMemoryDB(t)
	require.NoError(t, RunMigrations(db))

	_, err := db.Exec(`INSERT INTO users (username) VALUES ('ana')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO projects (name) VALUES ('Atlas')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO time_records (user_id, project_id, date, hours) VALUES (1, 1, '2025-03-03', '2.00')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO time_records (user_id, project_id, date, hours) VALUES (1, 1, '2025-03-03', '4.00')`)
	assert.Error(t, err)
}

func TestNormalizeTimeRecordValues(t *testing.T) {
	db := openMemoryDB(t)

	_, err := db.Exec(`CREATE TABLE time_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER, project_id INTEGER,
		date TEXT, hours TEXT, note TEXT,
		UNIQUE (user_id, project_id, date)
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO time_records (user_id, project_id, date, hours) VALUES
		(1, 1, '2025-06-23T00:00:00Z', '5'),
		(1, 2, '2025/06/24', 'abc'),
		(1, 3, '2025-06-25 09:00:00', '-2'),
		(1, 4, 'yesterday', '1.5'),
		(1, 5, '2025-06-26', '7.25')
	`)
	require.NoError(t, err)

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, Up_000003_normalize_time_record_values(tx))
	require.NoError(t, tx.Commit())

	tests := []struct {
		id        int64
		wantDate  string
		wantHours string
	}{
		{1, "2025-06-23", "5.00"},
		{2, "2025-06-24", "0.00"},
		{3, "2025-06-25", "0.00"},
		{4, "yesterday", "1.5"},
		{5, "2025-06-26", "7.25"},
	}
	for _, tt := range tests {
		var date, hours string
		require.NoError(t, db.QueryRow("SELECT date, hours FROM time_records WHERE id = ?", tt.id).Scan(&date, &hours))
		assert.Equal(t, tt.wantDate, date, "record %d", tt.id)
		assert.Equal(t, tt.wantHours, hours, "record %d", tt.id)
	}
}

func TestNormalizeHours(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"8", "8.00"},
		{" 2.5 ", "2.50"},
		{"", "0.00"},
		{"n/a", "0.00"},
		{"-1", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHours(tt.input))
		})
	}
}

func TestRunMigrations_DirtyDatabase(t *testing.T) {
	db := openMemoryDB(t)

	_, err := db.Exec(`
		CREATE TABLE migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			dirty BOOLEAN DEFAULT FALSE
		)
	`)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO migrations (version, dirty) VALUES (1, TRUE)")
	require.NoError(t, err)

	err = RunMigrations(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is in a dirty state")
	assert.Contains(t, err.Error(), "failed migration(s): [1]")
}

func TestRunMigrations_BackupRemovedOnSuccess(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE test_data (id INTEGER PRIMARY KEY, value TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO test_data (value) VALUES ('original data')`)
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db))

	backupFiles, err := filepath.Glob(dbPath + ".backup.*")
	require.NoError(t, err)
	assert.Empty(t, backupFiles)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM test_data").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestExtractVersionAndName(t *testing.T) {
	assert.Equal(t, 2, extractVersion("000002_create_time_records.up.sql"))
	assert.Equal(t, 0, extractVersion("readme.up.sql"))
	assert.Equal(t, "create_time_records", extractName("000002_create_time_records.up.sql"))
}
