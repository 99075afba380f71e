package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `t.id, t.project_id, t.name, t.description, t.assignee_id, t.deadline,
	t.status, t.priority, t.progress, t.last_update, t.attachments, t.version,
	t.created_at, t.updated_at`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	attachments, err := encodeList(t.Attachments)
	if err != nil {
		return err
	}
	if t.Version == 0 {
		t.Version = 1
	}
	query := `INSERT INTO tasks (id, project_id, name, description, assignee_id, deadline,
		status, priority, progress, last_update, attachments, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		t.Name,
		t.Description,
		t.AssigneeID,
		nullableTimeToString(t.Deadline, timeLayout),
		string(t.Status),
		string(t.Priority),
		t.Progress,
		t.LastUpdate,
		attachments,
		t.Version,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	return r.scanTask(row)
}

func (r *SQLiteTaskRepo) List(ctx context.Context, f TaskFilter) ([]*domain.Task, error) {
	var w whereBuilder
	if f.ProjectID != "" {
		w.add(`t.project_id = ?`, f.ProjectID)
	}
	if f.AssigneeID != "" {
		w.add(`t.assignee_id = ?`, f.AssigneeID)
	}
	if f.ManagerID != "" {
		w.add(`p.manager_id = ?`, f.ManagerID)
	}
	if f.ClientID != "" {
		w.add(`p.client_id = ?`, f.ClientID)
	}
	if f.Status != "" {
		w.add(`t.status = ?`, string(f.Status))
	}
	if f.Priority != "" {
		w.add(`t.priority = ?`, string(f.Priority))
	}
	if f.Search != "" {
		pat := likePattern(f.Search)
		w.add(`(LOWER(t.name) LIKE ? ESCAPE '\' OR LOWER(t.description) LIKE ? ESCAPE '\')`, pat, pat)
	}
	if f.CreatedFrom != nil {
		w.add(`t.created_at >= ?`, formatTime(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		w.add(`t.created_at <= ?`, formatTime(*f.CreatedTo))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks t JOIN projects p ON p.id = t.project_id` +
		w.sql() + ` ORDER BY t.created_at, t.id`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task, expectedVersion int) error {
	attachments, err := encodeList(t.Attachments)
	if err != nil {
		return err
	}
	query := `UPDATE tasks SET name = ?, description = ?, assignee_id = ?, deadline = ?,
		status = ?, priority = ?, progress = ?, last_update = ?, attachments = ?,
		version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.Description,
		t.AssigneeID,
		nullableTimeToString(t.Deadline, timeLayout),
		string(t.Status),
		string(t.Priority),
		t.Progress,
		t.LastUpdate,
		attachments,
		formatTime(t.UpdatedAt),
		t.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %s at version %d: %w", t.ID, expectedVersion, ErrVersionConflict)
	}
	t.Version = expectedVersion + 1
	return nil
}

func (r *SQLiteTaskRepo) scanTask(row scanner) (*domain.Task, error) {
	var t domain.Task
	var deadline sql.NullString
	var status, priority, attachments, createdAt, updatedAt string

	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Name, &t.Description, &t.AssigneeID, &deadline,
		&status, &priority, &t.Progress, &t.LastUpdate, &attachments, &t.Version,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	t.Deadline = parseNullableTime(deadline, timeLayout)
	if t.Attachments, err = decodeList(attachments); err != nil {
		return nil, fmt.Errorf("task %s attachments: %w", t.ID, err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}
