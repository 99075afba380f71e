package service

import (
	"context"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/domain"
)

type ProjectService interface {
	Create(ctx context.Context, c domain.Caller, req app.CreateProjectRequest) (*app.ProjectView, error)
	Get(ctx context.Context, c domain.Caller, id string) (*app.ProjectView, error)
	List(ctx context.Context, c domain.Caller, f app.ListFilter) ([]app.ProjectView, error)
	AssignTeam(ctx context.Context, c domain.Caller, id string, memberIDs []string) (*app.ProjectView, error)
	Deactivate(ctx context.Context, c domain.Caller, id string) error
}

// StatusService is the project status transition engine.
type StatusService interface {
	ApplyStatusUpdate(ctx context.Context, c domain.Caller, projectID string, req app.StatusUpdateRequest) (*app.ProjectStatusView, error)
	GetStatus(ctx context.Context, c domain.Caller, projectID string) (*app.ProjectStatusView, error)
}

type TaskService interface {
	Create(ctx context.Context, c domain.Caller, req app.CreateTaskRequest) (*domain.Task, error)
	Get(ctx context.Context, c domain.Caller, id string) (*domain.Task, error)
	List(ctx context.Context, c domain.Caller, f app.ListFilter) ([]*domain.Task, error)
	UpdateStatus(ctx context.Context, c domain.Caller, id string, req app.TaskStatusRequest) (*domain.Task, error)
	Patch(ctx context.Context, c domain.Caller, id string, patch app.TaskPatch) (*domain.Task, error)
	AddComment(ctx context.Context, c domain.Caller, taskID string, req app.CommentRequest) (*domain.TaskComment, error)
	EditComment(ctx context.Context, c domain.Caller, taskID, commentID, content string) (*domain.TaskComment, error)
	ListComments(ctx context.Context, c domain.Caller, taskID string) ([]*domain.TaskComment, error)
}

type HistoryService interface {
	Timeline(ctx context.Context, c domain.Caller, kind domain.EntityKind, entityID string) ([]*domain.HistoryEntry, error)
}

type StatsService interface {
	Projects(ctx context.Context, c domain.Caller, f app.StatsFilter) (*app.ProjectStats, error)
	Tasks(ctx context.Context, c domain.Caller, f app.StatsFilter) (*app.TaskStats, error)
	Clients(ctx context.Context, c domain.Caller, f app.StatsFilter) (*app.ClientStats, error)
	Employees(ctx context.Context, c domain.Caller, f app.StatsFilter) (*app.EmployeeStats, error)
	Invoices(ctx context.Context, c domain.Caller, f app.StatsFilter) (*app.InvoiceStats, error)
}

type ClientService interface {
	Create(ctx context.Context, c domain.Caller, req app.CreateClientRequest) (*domain.Client, error)
	Get(ctx context.Context, c domain.Caller, id string) (*domain.Client, error)
	List(ctx context.Context, c domain.Caller, f app.ListFilter) ([]*domain.Client, error)
	Deactivate(ctx context.Context, c domain.Caller, id string) error
}

type EmployeeService interface {
	Create(ctx context.Context, c domain.Caller, req app.CreateEmployeeRequest) (*domain.Employee, error)
	Get(ctx context.Context, c domain.Caller, id string) (*domain.Employee, error)
	List(ctx context.Context, c domain.Caller, f app.ListFilter) ([]*domain.Employee, error)
	Deactivate(ctx context.Context, c domain.Caller, id string) error
}

type InvoiceService interface {
	Create(ctx context.Context, c domain.Caller, req app.CreateInvoiceRequest) (*app.InvoiceView, error)
	Get(ctx context.Context, c domain.Caller, id string) (*app.InvoiceView, error)
	List(ctx context.Context, c domain.Caller, f app.ListFilter) ([]app.InvoiceView, error)
	RecordPayment(ctx context.Context, c domain.Caller, id string, req app.PaymentRequest) (*app.InvoiceView, error)
	SetStatus(ctx context.Context, c domain.Caller, id string, status string) (*app.InvoiceView, error)
}

// EventPublisher fans committed history entries out to other systems.
// Publishing happens after commit and never undoes a change.
type EventPublisher interface {
	Publish(ctx context.Context, e *domain.HistoryEntry) error
}
