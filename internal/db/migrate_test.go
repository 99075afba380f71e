package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

const now = "2026-01-01T00:00:00Z"

func insertClient(t *testing.T, db *sql.DB, id, code string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO clients (id, code, name, email, created_at, updated_at)
		VALUES (?, ?, 'Acme', 'ops@acme.test', ?, ?)`, id, code, now, now)
	require.NoError(t, err)
}

func insertProject(t *testing.T, db *sql.DB, id, code, clientID string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO projects (id, code, title, client_id, start_date, deadline, created_at, updated_at)
		VALUES (?, ?, 'Site', ?, ?, ?, ?, ?)`, id, code, clientID, now, now, now, now)
	require.NoError(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"clients", "employees", "projects", "project_status_history", "tasks",
		"task_comments", "history_entries", "invoices", "invoice_items",
		"invoice_payments", "code_counters",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesUniqueCodeIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{"idx_projects_code", "idx_invoices_number", "idx_clients_code", "idx_employees_code"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}

	insertClient(t, db, "c1", "CLT-26-0001")
	_, err := db.Exec(`INSERT INTO clients (id, code, name, email, created_at, updated_at)
		VALUES ('c2', 'CLT-26-0001', 'Other', 'x@y.test', ?, ?)`, now, now)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enabled")

	_, err := db.Exec(`INSERT INTO projects (id, code, title, client_id, start_date, deadline, created_at, updated_at)
		VALUES ('p1', 'PRJ-26-0001', 'x', 'missing', ?, ?, ?, ?)`, now, now, now, now)
	assert.Error(t, err)
}

func TestMigrate_ProjectChecks(t *testing.T) {
	db := openTestDB(t)
	insertClient(t, db, "c1", "CLT-26-0001")
	insertProject(t, db, "p1", "PRJ-26-0001", "c1")

	_, err := db.Exec(`UPDATE projects SET progress = 101 WHERE id = 'p1'`)
	assert.Error(t, err, "progress above 100 must be rejected")

	_, err = db.Exec(`UPDATE projects SET status = 'delayed', delay_reason = '  ' WHERE id = 'p1'`)
	assert.Error(t, err, "delayed without a reason must be rejected")

	_, err = db.Exec(`UPDATE projects SET status = 'delayed', delay_reason = 'vendor' WHERE id = 'p1'`)
	assert.NoError(t, err)
}

func TestMigrate_HistoryIsAppendOnly(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO history_entries (id, entity_kind, entity_id, actor_id, action, created_at)
		VALUES ('h1', 'project', 'p1', 'u1', 'created', ?)`, now)
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE history_entries SET detail = 'x' WHERE id = 'h1'`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")

	_, err = db.Exec(`DELETE FROM history_entries WHERE id = 'h1'`)
	require.Error(t, err)
}

func TestMigrate_BackfillsCodeCounters(t *testing.T) {
	db := openTestDB(t)
	insertClient(t, db, "c1", "CLT-26-0001")
	insertProject(t, db, "p1", "PRJ-26-0007", "c1")
	insertProject(t, db, "p2", "PRJ-25-0003", "c1")
	insertProject(t, db, "p3", "legacy", "c1")

	require.NoError(t, Migrate(db))

	var next int
	require.NoError(t, db.QueryRow(`SELECT next_seq FROM code_counters WHERE kind='project' AND year=2026`).Scan(&next))
	assert.Equal(t, 8, next)
	require.NoError(t, db.QueryRow(`SELECT next_seq FROM code_counters WHERE kind='project' AND year=2025`).Scan(&next))
	assert.Equal(t, 4, next)
	require.NoError(t, db.QueryRow(`SELECT next_seq FROM code_counters WHERE kind='client' AND year=2026`).Scan(&next))
	assert.Equal(t, 2, next)
}

func TestMigrate_BackfillNeverLowersCounter(t *testing.T) {
	db := openTestDB(t)
	insertClient(t, db, "c1", "CLT-26-0001")
	_, err := db.Exec(`INSERT INTO code_counters (kind, year, next_seq) VALUES ('client', 2026, 40)`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	var next int
	require.NoError(t, db.QueryRow(`SELECT next_seq FROM code_counters WHERE kind='client' AND year=2026`).Scan(&next))
	assert.Equal(t, 40, next)
}

func TestOpen_FileDatabaseUsesWAL(t *testing.T) {
	path := t.TempDir() + "/nested/crm.db"
	db, err := Open(path, Options{})
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}
