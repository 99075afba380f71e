package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
)

// counterTables names the table whose rows seed a fresh (kind, year) counter.
var counterTables = map[domain.EntityKind]string{
	domain.KindProject:  "projects",
	domain.KindInvoice:  "invoices",
	domain.KindClient:   "clients",
	domain.KindEmployee: "employees",
}

// SQLiteCodeCounterRepo allocates per-kind, per-year sequence values
// atomically using the code_counters table.
type SQLiteCodeCounterRepo struct {
	db db.DBTX
}

// NewSQLiteCodeCounterRepo creates a new SQLiteCodeCounterRepo.
func NewSQLiteCodeCounterRepo(conn db.DBTX) *SQLiteCodeCounterRepo {
	return &SQLiteCodeCounterRepo{db: conn}
}

// Next returns the next sequence number for kind in year. The first call for
// a year seeds the counter from the number of rows of that kind created in
// the year. Allocation is atomic and safe under concurrent writes.
func (r *SQLiteCodeCounterRepo) Next(ctx context.Context, kind domain.EntityKind, year int) (int, error) {
	table, ok := counterTables[kind]
	if !ok {
		return 0, fmt.Errorf("no code counter for kind %q", kind)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	seedQuery := `INSERT OR IGNORE INTO code_counters (kind, year, next_seq)
		SELECT ?, ?, COUNT(*) + 1 FROM ` + table + ` WHERE created_at >= ? AND created_at < ?`
	if _, err := r.db.ExecContext(ctx, seedQuery, string(kind), year, formatTime(from), formatTime(to)); err != nil {
		return 0, fmt.Errorf("seeding %s counter for %d: %w", kind, year, err)
	}

	var next int
	allocQuery := `UPDATE code_counters
		SET next_seq = next_seq + 1
		WHERE kind = ? AND year = ?
		RETURNING next_seq - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, string(kind), year).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating next %s seq for %d: %w", kind, year, err)
	}
	return next, nil
}
