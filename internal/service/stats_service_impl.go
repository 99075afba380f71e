package service

import (
	"context"
	"math"
	"time"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/repository"
)

// statsService computes aggregates on demand. Each call reads the store
// independently; no snapshot ties the figures of different calls together.
type statsService struct {
	projects  repository.ProjectRepo
	tasks     repository.TaskRepo
	invoices  repository.InvoiceRepo
	clients   ClientService
	employees EmployeeService
	settings
}

func NewStatsService(
	projects repository.ProjectRepo,
	tasks repository.TaskRepo,
	invoices repository.InvoiceRepo,
	clients ClientService,
	employees EmployeeService,
	opts ...Option,
) StatsService {
	return &statsService{
		projects:  projects,
		tasks:     tasks,
		invoices:  invoices,
		clients:   clients,
		employees: employees,
		settings:  newSettings(opts),
	}
}

func (s *statsService) Projects(ctx context.Context, c domain.Caller, f app.StatsFilter) (*app.ProjectStats, error) {
	var stats *app.ProjectStats
	err := s.run(ctx, "project-stats", map[string]any{"actor": c.ID}, func(ctx context.Context) error {
		filter, err := projectScope(c)
		if err != nil {
			return err
		}
		if filter.Status, err = parseStatusFilter(f.Status, domain.ParseProjectStatus); err != nil {
			return err
		}
		filter.Search = f.Search
		filter.CreatedFrom, filter.CreatedTo = f.From, f.To
		projects, err := s.projects.List(ctx, filter)
		if err != nil {
			return err
		}
		stats = projectStats(projects, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func projectStats(projects []*domain.Project, now time.Time) *app.ProjectStats {
	st := &app.ProjectStats{ByStatus: map[domain.ProjectStatus]int{}}
	for _, status := range domain.ProjectStatuses {
		st.ByStatus[status] = 0
	}
	var progressSum int
	for _, p := range projects {
		st.Total++
		st.ByStatus[p.State.Status]++
		st.TotalBudget += p.Budget
		progressSum += p.State.Progress
		if p.State.Status == domain.ProjectInProgress {
			st.Active++
		}
		if p.State.Status != domain.ProjectCompleted && p.DaysLeft(now) < 0 {
			st.Overdue++
		}
	}
	st.TotalBudget = roundCents(st.TotalBudget)
	if st.Total > 0 {
		st.AverageProgress = int(math.Round(float64(progressSum) / float64(st.Total)))
	}
	st.ActivePercentage = app.Percentage(st.Active, st.Total)
	st.CompletedPercentage = app.Percentage(st.ByStatus[domain.ProjectCompleted], st.Total)
	st.DelayedPercentage = app.Percentage(st.ByStatus[domain.ProjectDelayed], st.Total)
	return st
}

func (s *statsService) Tasks(ctx context.Context, c domain.Caller, f app.StatsFilter) (*app.TaskStats, error) {
	var stats *app.TaskStats
	err := s.run(ctx, "task-stats", map[string]any{"actor": c.ID}, func(ctx context.Context) error {
		filter, err := taskScope(c)
		if err != nil {
			return err
		}
		if filter.Status, err = parseStatusFilter(f.Status, domain.ParseTaskStatus); err != nil {
			return err
		}
		filter.Search = f.Search
		filter.CreatedFrom, filter.CreatedTo = f.From, f.To
		tasks, err := s.tasks.List(ctx, filter)
		if err != nil {
			return err
		}
		stats = taskStats(tasks, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func taskStats(tasks []*domain.Task, now time.Time) *app.TaskStats {
	st := &app.TaskStats{
		ByStatus:   map[domain.TaskStatus]int{},
		ByPriority: map[domain.TaskPriority]int{},
	}
	for _, status := range domain.TaskStatuses {
		st.ByStatus[status] = 0
	}
	for _, p := range []domain.TaskPriority{domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityUrgent} {
		st.ByPriority[p] = 0
	}
	for _, t := range tasks {
		st.Total++
		st.ByStatus[t.Status]++
		st.ByPriority[t.Priority]++
		if t.IsOverdue(now) {
			st.Overdue++
		}
	}
	st.CompletionPercentage = app.Percentage(st.ByStatus[domain.TaskCompleted], st.Total)
	st.BlockedPercentage = app.Percentage(st.ByStatus[domain.TaskBlocked], st.Total)
	return st
}

// Clients reuses the client directory's scoping and derived totals.
func (s *statsService) Clients(ctx context.Context, c domain.Caller, f app.StatsFilter) (*app.ClientStats, error) {
	var stats *app.ClientStats
	err := s.run(ctx, "client-stats", map[string]any{"actor": c.ID}, func(ctx context.Context) error {
		clients, err := s.clients.List(ctx, c, app.ListFilter{Search: f.Search, Status: f.Status})
		if err != nil {
			return err
		}
		st := &app.ClientStats{}
		for _, cl := range clients {
			if !f.InRange(cl.CreatedAt) {
				continue
			}
			st.Total++
			if cl.Status == domain.RecordActive {
				st.Active++
			} else {
				st.Inactive++
			}
			st.TotalBilled += cl.Totals.Billed
			st.TotalPaid += cl.Totals.Paid
			st.Outstanding += cl.Totals.Outstanding
		}
		st.TotalBilled = roundCents(st.TotalBilled)
		st.TotalPaid = roundCents(st.TotalPaid)
		st.Outstanding = roundCents(st.Outstanding)
		st.ActivePercentage = app.Percentage(st.Active, st.Total)
		stats = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *statsService) Employees(ctx context.Context, c domain.Caller, f app.StatsFilter) (*app.EmployeeStats, error) {
	var stats *app.EmployeeStats
	err := s.run(ctx, "employee-stats", map[string]any{"actor": c.ID}, func(ctx context.Context) error {
		employees, err := s.employees.List(ctx, c, app.ListFilter{
			Search:     f.Search,
			Status:     f.Status,
			Department: f.Department,
			Role:       f.Role,
		})
		if err != nil {
			return err
		}
		st := &app.EmployeeStats{ByDepartment: map[string]int{}, ByRole: map[domain.Role]int{}}
		for _, e := range employees {
			if !f.InRange(e.CreatedAt) {
				continue
			}
			st.Total++
			if e.Status == domain.RecordActive {
				st.Active++
			} else {
				st.Inactive++
			}
			dept := e.Department
			if dept == "" {
				dept = "unassigned"
			}
			st.ByDepartment[dept]++
			st.ByRole[e.Role]++
		}
		st.ActivePercentage = app.Percentage(st.Active, st.Total)
		stats = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *statsService) Invoices(ctx context.Context, c domain.Caller, f app.StatsFilter) (*app.InvoiceStats, error) {
	var stats *app.InvoiceStats
	err := s.run(ctx, "invoice-stats", map[string]any{"actor": c.ID}, func(ctx context.Context) error {
		filter, err := invoiceScope(c)
		if err != nil {
			return err
		}
		if filter.Status, err = parseStatusFilter(f.Status, domain.ParseInvoiceStatus); err != nil {
			return err
		}
		filter.Search = f.Search
		filter.IssuedFrom, filter.IssuedTo = f.From, f.To
		invoices, err := s.invoices.List(ctx, filter)
		if err != nil {
			return err
		}
		stats = invoiceStats(invoices, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func invoiceStats(invoices []*domain.Invoice, now time.Time) *app.InvoiceStats {
	st := &app.InvoiceStats{ByStatus: map[domain.InvoiceStatus]int{}}
	for _, status := range domain.InvoiceStatuses {
		st.ByStatus[status] = 0
	}
	for _, inv := range invoices {
		st.Total++
		st.ByStatus[inv.Status]++
		if inv.IsOverdue(now) {
			st.Overdue++
		}
	}
	st.TotalBilled, st.TotalPaid, st.Outstanding = billing(invoices)
	st.PaidPercentage = app.Percentage(st.ByStatus[domain.InvoicePaid], st.Total)
	return st
}
