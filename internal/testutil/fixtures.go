package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/google/uuid"
)

var testCodeCounter atomic.Int64

func nextCode(prefix string) string {
	return fmt.Sprintf("%s-99-%04d", prefix, testCodeCounter.Add(1))
}

// Client options
type ClientOption func(*domain.Client)

func WithClientStatus(s domain.RecordStatus) ClientOption {
	return func(c *domain.Client) {
		c.Status = s
	}
}

func NewTestClient(name string, opts ...ClientOption) *domain.Client {
	now := time.Now().UTC()
	c := &domain.Client{
		ID:        uuid.New().String(),
		Code:      nextCode("CLT"),
		Name:      name,
		Company:   name + " Ltd",
		Email:     "billing@example.com",
		Status:    domain.RecordActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Employee options
type EmployeeOption func(*domain.Employee)

func WithRole(r domain.Role) EmployeeOption {
	return func(e *domain.Employee) {
		e.Role = r
	}
}

func WithDepartment(d string) EmployeeOption {
	return func(e *domain.Employee) {
		e.Department = d
	}
}

func WithEmployeeStatus(s domain.RecordStatus) EmployeeOption {
	return func(e *domain.Employee) {
		e.Status = s
	}
}

func NewTestEmployee(name string, opts ...EmployeeOption) *domain.Employee {
	now := time.Now().UTC()
	e := &domain.Employee{
		ID:         uuid.New().String(),
		Code:       nextCode("EMP"),
		Name:       name,
		Email:      "staff@example.com",
		Department: "engineering",
		Position:   "developer",
		Role:       domain.RoleEmployee,
		Status:     domain.RecordActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Project options
type ProjectOption func(*domain.Project)

func WithManager(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ManagerID = id
	}
}

func WithTeam(ids ...string) ProjectOption {
	return func(p *domain.Project) {
		p.TeamMemberIDs = ids
	}
}

func WithProjectStatus(s domain.ProjectStatus, progress int) ProjectOption {
	return func(p *domain.Project) {
		p.State.Status = s
		p.State.Progress = progress
		if s == domain.ProjectDelayed && p.State.DelayReason == "" {
			p.State.DelayReason = "waiting on client"
		}
	}
}

func WithDeadline(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.Deadline = d
	}
}

func WithBudget(b float64) ProjectOption {
	return func(p *domain.Project) {
		p.Budget = b
	}
}

func Inactive() ProjectOption {
	return func(p *domain.Project) {
		p.Active = false
	}
}

func NewTestProject(clientID, title string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:            uuid.New().String(),
		Code:          nextCode("PRJ"),
		Title:         title,
		ClientID:      clientID,
		TeamMemberIDs: []string{},
		StartDate:     now.AddDate(0, -1, 0).Truncate(24 * time.Hour),
		Deadline:      now.AddDate(0, 2, 0).Truncate(24 * time.Hour),
		Active:        true,
		Version:       1,
		State:         domain.StatusRecord{Status: domain.ProjectPlanned},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithAssignee(id string) TaskOption {
	return func(t *domain.Task) {
		t.AssigneeID = id
	}
}

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithPriority(p domain.TaskPriority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = p
	}
}

func WithTaskDeadline(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.Deadline = &d
	}
}

func NewTestTask(projectID, name string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Name:        name,
		Status:      domain.TaskTodo,
		Priority:    domain.PriorityMedium,
		Attachments: []string{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func NewTestInvoice(clientID string, amount float64) *domain.Invoice {
	now := time.Now().UTC()
	inv := &domain.Invoice{
		ID:        uuid.New().String(),
		Number:    nextCode("INV"),
		ClientID:  clientID,
		Items:     []domain.LineItem{{Description: "Services", Quantity: 1, UnitPrice: amount}},
		Status:    domain.InvoiceSent,
		IssueDate: now.AddDate(0, 0, -10).Truncate(24 * time.Hour),
		DueDate:   now.AddDate(0, 0, 20).Truncate(24 * time.Hour),
		Payments:  []domain.Payment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	inv.Recalculate()
	return inv
}

// Callers

func AdminCaller() domain.Caller {
	return domain.Caller{ID: "admin-1", Name: "Ada Admin", Role: domain.RoleAdmin}
}

func ManagerCaller(id string) domain.Caller {
	return domain.Caller{ID: id, Name: "Pat Manager", Role: domain.RoleProjectManager}
}

func EmployeeCaller(id string) domain.Caller {
	return domain.Caller{ID: id, Name: "Eli Employee", Role: domain.RoleEmployee}
}

func ClientCaller(clientID string) domain.Caller {
	return domain.Caller{ID: "user-" + clientID, Name: "Cleo Client", Role: domain.RoleClient, ClientID: clientID}
}
