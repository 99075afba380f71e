package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
)

// directoryWhere builds the filter shared by the client and employee lists.
// searchCols are matched case-insensitively against f.Search.
func directoryWhere(f DirectoryFilter, searchCols ...string) whereBuilder {
	var w whereBuilder
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}
	if f.Search != "" && len(searchCols) > 0 {
		pat := likePattern(f.Search)
		parts := make([]string, len(searchCols))
		args := make([]any, len(searchCols))
		for i, col := range searchCols {
			parts[i] = `LOWER(` + col + `) LIKE ? ESCAPE '\'`
			args[i] = pat
		}
		w.add(`(`+strings.Join(parts, " OR ")+`)`, args...)
	}
	if len(f.IDs) > 0 {
		args := make([]any, len(f.IDs))
		for i, id := range f.IDs {
			args[i] = id
		}
		w.add(`id IN (`+strings.TrimSuffix(strings.Repeat("?,", len(f.IDs)), ",")+`)`, args...)
	}
	if f.CreatedFrom != nil {
		w.add(`created_at >= ?`, formatTime(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		w.add(`created_at <= ?`, formatTime(*f.CreatedTo))
	}
	return w
}

type SQLiteClientRepo struct {
	db db.DBTX
}

func NewSQLiteClientRepo(conn db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: conn}
}

const clientColumns = `id, code, name, company, email, phone, address, status, created_at, updated_at`

func (r *SQLiteClientRepo) Create(ctx context.Context, c *domain.Client) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO clients (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Code, c.Name, c.Company, c.Email, c.Phone, c.Address, string(c.Status),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

func (r *SQLiteClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return scanClient(r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id))
}

func (r *SQLiteClientRepo) List(ctx context.Context, f DirectoryFilter) ([]*domain.Client, error) {
	w := directoryWhere(f, "name", "company", "email", "code")
	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients`+w.sql()+` ORDER BY created_at, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var out []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}
	return out, nil
}

func (r *SQLiteClientRepo) Update(ctx context.Context, c *domain.Client) error {
	res, err := r.db.ExecContext(ctx, `UPDATE clients SET name = ?, company = ?, email = ?, phone = ?,
		address = ?, status = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Company, c.Email, c.Phone, c.Address, string(c.Status), formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("client: %w", ErrNotFound)
	}
	return nil
}

func scanClient(row scanner) (*domain.Client, error) {
	var c domain.Client
	var status, createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Address,
		&status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}
	c.Status = domain.RecordStatus(status)
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing client created_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing client updated_at: %w", err)
	}
	return &c, nil
}

type SQLiteEmployeeRepo struct {
	db db.DBTX
}

func NewSQLiteEmployeeRepo(conn db.DBTX) *SQLiteEmployeeRepo {
	return &SQLiteEmployeeRepo{db: conn}
}

const employeeColumns = `id, code, name, email, phone, department, position, role, status, created_at, updated_at`

func (r *SQLiteEmployeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Code, e.Name, e.Email, e.Phone, e.Department, e.Position, string(e.Role),
		string(e.Status), formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting employee: %w", err)
	}
	return nil
}

func (r *SQLiteEmployeeRepo) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	return scanEmployee(r.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id))
}

func (r *SQLiteEmployeeRepo) List(ctx context.Context, f DirectoryFilter) ([]*domain.Employee, error) {
	w := directoryWhere(f, "name", "email", "code", "position")
	if f.Department != "" {
		w.add(`LOWER(department) = LOWER(?)`, f.Department)
	}
	if f.Role != "" {
		w.add(`role = ?`, string(f.Role))
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees`+w.sql()+` ORDER BY created_at, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var out []*domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating employees: %w", err)
	}
	return out, nil
}

func (r *SQLiteEmployeeRepo) Update(ctx context.Context, e *domain.Employee) error {
	res, err := r.db.ExecContext(ctx, `UPDATE employees SET name = ?, email = ?, phone = ?, department = ?,
		position = ?, role = ?, status = ?, updated_at = ? WHERE id = ?`,
		e.Name, e.Email, e.Phone, e.Department, e.Position, string(e.Role), string(e.Status),
		formatTime(e.UpdatedAt), e.ID)
	if err != nil {
		return fmt.Errorf("updating employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("employee: %w", ErrNotFound)
	}
	return nil
}

func scanEmployee(row scanner) (*domain.Employee, error) {
	var e domain.Employee
	var role, status, createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Code, &e.Name, &e.Email, &e.Phone, &e.Department, &e.Position,
		&role, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("employee: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning employee: %w", err)
	}
	e.Role = domain.Role(role)
	e.Status = domain.RecordStatus(status)
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing employee created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing employee updated_at: %w", err)
	}
	return &e, nil
}
