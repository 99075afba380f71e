package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database. The
// project's current status record is stored on the same row.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `id, code, title, description, client_id, manager_id, team_members,
	start_date, deadline, budget, estimated_hours, active, version,
	status, progress, delay_reason, delay_date, status_description, remarks,
	last_updated_by, last_updated_by_name, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	team, err := encodeList(p.TeamMemberIDs)
	if err != nil {
		return err
	}
	if p.Version == 0 {
		p.Version = 1
	}
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.Code,
		p.Title,
		p.Description,
		p.ClientID,
		p.ManagerID,
		team,
		p.StartDate.Format(dateLayout),
		p.Deadline.Format(dateLayout),
		p.Budget,
		p.EstimatedHours,
		boolToInt(p.Active),
		p.Version,
		string(p.State.Status),
		p.State.Progress,
		p.State.DelayReason,
		nullableTimeToString(p.State.DelayDate, timeLayout),
		p.State.Description,
		p.State.Remarks,
		p.State.LastUpdatedBy,
		p.State.LastUpdatedByName,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return r.scanProject(row)
}

func (r *SQLiteProjectRepo) GetByCode(ctx context.Context, code string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE UPPER(code) = UPPER(?)`, code)
	return r.scanProject(row)
}

func (r *SQLiteProjectRepo) List(ctx context.Context, f ProjectFilter) ([]*domain.Project, error) {
	var w whereBuilder
	if !f.IncludeInactive {
		w.add(`active = 1`)
	}
	if f.ManagerID != "" {
		w.add(`manager_id = ?`, f.ManagerID)
	}
	if f.ClientID != "" {
		w.add(`client_id = ?`, f.ClientID)
	}
	if f.MemberID != "" {
		w.add(`(manager_id = ? OR EXISTS (SELECT 1 FROM json_each(team_members) WHERE value = ?))`, f.MemberID, f.MemberID)
	}
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}
	if f.Search != "" {
		pat := likePattern(f.Search)
		w.add(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\')`, pat, pat)
	}
	if f.CreatedFrom != nil {
		w.add(`created_at >= ?`, formatTime(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		w.add(`created_at <= ?`, formatTime(*f.CreatedTo))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects`+w.sql()+` ORDER BY created_at, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := r.scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project, expectedVersion int) error {
	team, err := encodeList(p.TeamMemberIDs)
	if err != nil {
		return err
	}
	query := `UPDATE projects SET title = ?, description = ?, manager_id = ?, team_members = ?,
		deadline = ?, budget = ?, estimated_hours = ?, active = ?, version = version + 1,
		status = ?, progress = ?, delay_reason = ?, delay_date = ?, status_description = ?, remarks = ?,
		last_updated_by = ?, last_updated_by_name = ?, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Title,
		p.Description,
		p.ManagerID,
		team,
		p.Deadline.Format(dateLayout),
		p.Budget,
		p.EstimatedHours,
		boolToInt(p.Active),
		string(p.State.Status),
		p.State.Progress,
		p.State.DelayReason,
		nullableTimeToString(p.State.DelayDate, timeLayout),
		p.State.Description,
		p.State.Remarks,
		p.State.LastUpdatedBy,
		p.State.LastUpdatedByName,
		formatTime(p.UpdatedAt),
		p.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %s at version %d: %w", p.ID, expectedVersion, ErrVersionConflict)
	}
	p.Version = expectedVersion + 1
	return nil
}

func (r *SQLiteProjectRepo) scanProject(row scanner) (*domain.Project, error) {
	var p domain.Project
	var team, startStr, deadlineStr, statusStr, createdAtStr, updatedAtStr string
	var active int
	var delayDate sql.NullString

	err := row.Scan(
		&p.ID, &p.Code, &p.Title, &p.Description, &p.ClientID, &p.ManagerID, &team,
		&startStr, &deadlineStr, &p.Budget, &p.EstimatedHours, &active, &p.Version,
		&statusStr, &p.State.Progress, &p.State.DelayReason, &delayDate,
		&p.State.Description, &p.State.Remarks,
		&p.State.LastUpdatedBy, &p.State.LastUpdatedByName, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	p.Active = intToBool(active)
	p.State.Status = domain.ProjectStatus(statusStr)
	p.State.DelayDate = parseNullableTime(delayDate, timeLayout)
	if p.TeamMemberIDs, err = decodeList(team); err != nil {
		return nil, fmt.Errorf("project %s team: %w", p.ID, err)
	}

	var parseErr error
	if p.StartDate, parseErr = time.Parse(dateLayout, startStr); parseErr != nil {
		return nil, fmt.Errorf("parsing start_date: %w", parseErr)
	}
	if p.Deadline, parseErr = time.Parse(dateLayout, deadlineStr); parseErr != nil {
		return nil, fmt.Errorf("parsing deadline: %w", parseErr)
	}
	if p.CreatedAt, parseErr = parseTime(createdAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	if p.UpdatedAt, parseErr = parseTime(updatedAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &p, nil
}
