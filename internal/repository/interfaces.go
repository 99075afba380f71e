package repository

import (
	"context"
	"errors"
	"time"

	"github.com/NandiniGupta213/crm/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when a conditional update finds the row
	// at a different version than the caller read.
	ErrVersionConflict = errors.New("version conflict")
)

type ProjectFilter struct {
	ManagerID       string
	ClientID        string
	MemberID        string
	Status          domain.ProjectStatus
	Search          string
	IncludeInactive bool
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

type TaskFilter struct {
	ProjectID   string
	AssigneeID  string
	ManagerID   string
	ClientID    string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type DirectoryFilter struct {
	Search      string
	Status      domain.RecordStatus
	Department  string
	Role        domain.Role
	IDs         []string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type InvoiceFilter struct {
	ClientID   string
	ProjectID  string
	Status     domain.InvoiceStatus
	Search     string
	IssuedFrom *time.Time
	IssuedTo   *time.Time
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]*domain.Project, error)
	// Update writes every mutable column when the stored version equals
	// expectedVersion, then advances p.Version.
	Update(ctx context.Context, p *domain.Project, expectedVersion int) error
}

type StatusHistoryRepo interface {
	Append(ctx context.Context, e *domain.StatusHistoryEntry) error
	ListByProject(ctx context.Context, projectID string) ([]domain.StatusHistoryEntry, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, f TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task, expectedVersion int) error
}

type CommentRepo interface {
	Create(ctx context.Context, c *domain.TaskComment) error
	GetByID(ctx context.Context, id string) (*domain.TaskComment, error)
	ListByTask(ctx context.Context, taskID string) ([]*domain.TaskComment, error)
	Update(ctx context.Context, c *domain.TaskComment) error
}

type HistoryRepo interface {
	Append(ctx context.Context, e *domain.HistoryEntry) error
	ListByEntity(ctx context.Context, kind domain.EntityKind, entityID string) ([]*domain.HistoryEntry, error)
}

type ClientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, f DirectoryFilter) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
}

type EmployeeRepo interface {
	Create(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context, f DirectoryFilter) ([]*domain.Employee, error)
	Update(ctx context.Context, e *domain.Employee) error
}

type InvoiceRepo interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	List(ctx context.Context, f InvoiceFilter) ([]*domain.Invoice, error)
	UpdateStatus(ctx context.Context, inv *domain.Invoice) error
	AddPayment(ctx context.Context, p *domain.Payment) error
}

// CodeCounterRepo hands out per-(kind, year) sequence numbers.
type CodeCounterRepo interface {
	Next(ctx context.Context, kind domain.EntityKind, year int) (int, error)
}
