package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillCodeCounters(db); err != nil {
		return fmt.Errorf("backfilling code counters: %w", err)
	}
	return nil
}

// codedTables maps each counter kind to the table and column holding its codes.
var codedTables = []struct {
	kind, table, column string
}{
	{"project", "projects", "code"},
	{"invoice", "invoices", "number"},
	{"client", "clients", "code"},
	{"employee", "employees", "code"},
}

// migrateBackfillCodeCounters raises next_seq for every (kind, year) past the
// highest code already stored, so rows imported with codes never collide with
// freshly generated ones. Codes have the form XXX-YY-NNNN.
func migrateBackfillCodeCounters(db *sql.DB) error {
	ctx := context.Background()
	for _, ct := range codedTables {
		query := fmt.Sprintf(`INSERT INTO code_counters (kind, year, next_seq)
			SELECT ?, 2000 + CAST(substr(%[1]s, 5, 2) AS INTEGER),
			       MAX(CAST(substr(%[1]s, 8) AS INTEGER)) + 1
			FROM %[2]s
			WHERE %[1]s GLOB '[A-Z][A-Z][A-Z]-[0-9][0-9]-[0-9]*'
			GROUP BY substr(%[1]s, 5, 2)
			ON CONFLICT(kind, year) DO UPDATE
			SET next_seq = MAX(code_counters.next_seq, excluded.next_seq)`, ct.column, ct.table)
		if _, err := db.ExecContext(ctx, query, ct.kind); err != nil {
			return fmt.Errorf("upserting %s counters: %w", ct.kind, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id         TEXT PRIMARY KEY,
		code       TEXT NOT NULL,
		name       TEXT NOT NULL,
		company    TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL,
		phone      TEXT NOT NULL DEFAULT '',
		address    TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'active'
		           CHECK(status IN ('active','inactive')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_code ON clients(code)`,

	`CREATE TABLE IF NOT EXISTS employees (
		id         TEXT PRIMARY KEY,
		code       TEXT NOT NULL,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		phone      TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		position   TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL
		           CHECK(role IN ('admin','project_manager','employee')),
		status     TEXT NOT NULL DEFAULT 'active'
		           CHECK(status IN ('active','inactive')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_code ON employees(code)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_department ON employees(department)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id                   TEXT PRIMARY KEY,
		code                 TEXT NOT NULL,
		title                TEXT NOT NULL,
		description          TEXT NOT NULL DEFAULT '',
		client_id            TEXT NOT NULL REFERENCES clients(id),
		manager_id           TEXT NOT NULL DEFAULT '',
		team_members         TEXT NOT NULL DEFAULT '[]',
		start_date           TEXT NOT NULL,
		deadline             TEXT NOT NULL,
		budget               REAL NOT NULL DEFAULT 0 CHECK(budget >= 0),
		estimated_hours      REAL NOT NULL DEFAULT 0 CHECK(estimated_hours >= 0),
		active               INTEGER NOT NULL DEFAULT 1,
		version              INTEGER NOT NULL DEFAULT 1,
		status               TEXT NOT NULL DEFAULT 'planned'
		                     CHECK(status IN ('planned','in-progress','delayed','completed','on-hold')),
		progress             INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		delay_reason         TEXT NOT NULL DEFAULT '',
		delay_date           TEXT,
		status_description   TEXT NOT NULL DEFAULT '',
		remarks              TEXT NOT NULL DEFAULT '',
		last_updated_by      TEXT NOT NULL DEFAULT '',
		last_updated_by_name TEXT NOT NULL DEFAULT '',
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL,
		CHECK(status <> 'delayed' OR trim(delay_reason) <> '')
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_code ON projects(code)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_manager ON projects(manager_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,

	`CREATE TABLE IF NOT EXISTS project_status_history (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id      TEXT NOT NULL REFERENCES projects(id),
		status          TEXT NOT NULL,
		progress        INTEGER NOT NULL,
		delay_reason    TEXT NOT NULL DEFAULT '',
		updated_by      TEXT NOT NULL,
		updated_by_name TEXT NOT NULL DEFAULT '',
		timestamp       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_status_history_project ON project_status_history(project_id, timestamp, id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id),
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		assignee_id TEXT NOT NULL DEFAULT '',
		deadline    TEXT,
		status      TEXT NOT NULL DEFAULT 'todo'
		            CHECK(status IN ('todo','in-progress','completed','blocked')),
		priority    TEXT NOT NULL DEFAULT 'medium'
		            CHECK(priority IN ('low','medium','high','urgent')),
		progress    INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		last_update TEXT NOT NULL DEFAULT '',
		attachments TEXT NOT NULL DEFAULT '[]',
		version     INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,

	`CREATE TABLE IF NOT EXISTS task_comments (
		id          TEXT PRIMARY KEY,
		task_id     TEXT NOT NULL REFERENCES tasks(id),
		author_id   TEXT NOT NULL,
		author_name TEXT NOT NULL DEFAULT '',
		author_role TEXT NOT NULL DEFAULT '',
		content     TEXT NOT NULL,
		attachments TEXT NOT NULL DEFAULT '[]',
		mentions    TEXT NOT NULL DEFAULT '[]',
		edited      INTEGER NOT NULL DEFAULT 0,
		edited_at   TEXT,
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_task_comments_task ON task_comments(task_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS history_entries (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		entity_kind TEXT NOT NULL CHECK(entity_kind IN ('project','task')),
		entity_id   TEXT NOT NULL,
		actor_id    TEXT NOT NULL,
		actor_name  TEXT NOT NULL DEFAULT '',
		action      TEXT NOT NULL
		            CHECK(action IN ('created','status_changed','assigned','priority_changed',
		                             'progress_updated','deadline_updated','comment_added',
		                             'attachment_added','description_updated','title_updated')),
		field       TEXT NOT NULL DEFAULT '',
		old_value   TEXT NOT NULL DEFAULT '{"kind":"null"}',
		new_value   TEXT NOT NULL DEFAULT '{"kind":"null"}',
		detail      TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_entity ON history_entries(entity_kind, entity_id, created_at, seq)`,

	// Both history tables are append-only.
	`CREATE TRIGGER IF NOT EXISTS trg_history_entries_no_update
		BEFORE UPDATE ON history_entries
		BEGIN SELECT RAISE(ABORT, 'history entries are append-only'); END`,
	`CREATE TRIGGER IF NOT EXISTS trg_history_entries_no_delete
		BEFORE DELETE ON history_entries
		BEGIN SELECT RAISE(ABORT, 'history entries are append-only'); END`,
	`CREATE TRIGGER IF NOT EXISTS trg_status_history_no_update
		BEFORE UPDATE ON project_status_history
		BEGIN SELECT RAISE(ABORT, 'status history is append-only'); END`,
	`CREATE TRIGGER IF NOT EXISTS trg_status_history_no_delete
		BEFORE DELETE ON project_status_history
		BEGIN SELECT RAISE(ABORT, 'status history is append-only'); END`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id         TEXT PRIMARY KEY,
		number     TEXT NOT NULL,
		project_id TEXT NOT NULL DEFAULT '',
		client_id  TEXT NOT NULL REFERENCES clients(id),
		subtotal   REAL NOT NULL DEFAULT 0,
		discount   REAL NOT NULL DEFAULT 0 CHECK(discount >= 0),
		tax_rate   REAL NOT NULL DEFAULT 0 CHECK(tax_rate >= 0),
		tax        REAL NOT NULL DEFAULT 0,
		total      REAL NOT NULL DEFAULT 0,
		status     TEXT NOT NULL DEFAULT 'draft'
		           CHECK(status IN ('draft','sent','paid','overdue')),
		issue_date TEXT NOT NULL,
		due_date   TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_number ON invoices(number)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_client ON invoices(client_id)`,

	`CREATE TABLE IF NOT EXISTS invoice_items (
		invoice_id  TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		description TEXT NOT NULL,
		quantity    REAL NOT NULL CHECK(quantity > 0),
		unit_price  REAL NOT NULL CHECK(unit_price >= 0),
		amount      REAL NOT NULL,
		PRIMARY KEY (invoice_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS invoice_payments (
		id         TEXT PRIMARY KEY,
		invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		paid_at    TEXT NOT NULL,
		method     TEXT NOT NULL,
		amount     REAL NOT NULL CHECK(amount > 0),
		reference  TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_payments_invoice ON invoice_payments(invoice_id, paid_at)`,

	`CREATE TABLE IF NOT EXISTS code_counters (
		kind     TEXT NOT NULL,
		year     INTEGER NOT NULL,
		next_seq INTEGER NOT NULL CHECK(next_seq > 0),
		PRIMARY KEY (kind, year)
	)`,
}
