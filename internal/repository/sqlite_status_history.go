package repository

import (
	"context"
	"fmt"

	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
)

// SQLiteStatusHistoryRepo stores the append-only statusHistory of projects.
type SQLiteStatusHistoryRepo struct {
	db db.DBTX
}

func NewSQLiteStatusHistoryRepo(conn db.DBTX) *SQLiteStatusHistoryRepo {
	return &SQLiteStatusHistoryRepo{db: conn}
}

func (r *SQLiteStatusHistoryRepo) Append(ctx context.Context, e *domain.StatusHistoryEntry) error {
	query := `INSERT INTO project_status_history
		(project_id, status, progress, delay_reason, updated_by, updated_by_name, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		e.ProjectID,
		string(e.Status),
		e.Progress,
		e.DelayReason,
		e.UpdatedBy,
		e.UpdatedByName,
		formatTime(e.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("appending status history: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading status history id: %w", err)
	}
	return nil
}

func (r *SQLiteStatusHistoryRepo) ListByProject(ctx context.Context, projectID string) ([]domain.StatusHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, project_id, status, progress, delay_reason,
		updated_by, updated_by_name, timestamp
		FROM project_status_history WHERE project_id = ? ORDER BY timestamp, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing status history: %w", err)
	}
	defer rows.Close()

	entries := []domain.StatusHistoryEntry{}
	for rows.Next() {
		var e domain.StatusHistoryEntry
		var status, ts string
		if err := rows.Scan(&e.ID, &e.ProjectID, &status, &e.Progress, &e.DelayReason,
			&e.UpdatedBy, &e.UpdatedByName, &ts); err != nil {
			return nil, fmt.Errorf("scanning status history: %w", err)
		}
		e.Status = domain.ProjectStatus(status)
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("parsing status history timestamp: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status history: %w", err)
	}
	return entries, nil
}
