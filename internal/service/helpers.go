package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/authz"
	"github.com/NandiniGupta213/crm/internal/codegen"
	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/repository"
	"github.com/google/uuid"
)

// translateErr maps store and generator failures onto app error kinds.
// Errors that already carry a kind pass through unchanged.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *app.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return app.Wrap(app.ErrNotFound, err, "")
	case errors.Is(err, repository.ErrVersionConflict):
		return app.Wrap(app.ErrConcurrentUpdateConflict, err, "record was changed by another request, reload and retry")
	case errors.Is(err, codegen.ErrExhausted):
		return app.Wrap(app.ErrCodeGenerationFailed, err, "")
	case db.IsBusy(err):
		return app.Wrap(app.ErrStoreUnavailable, err, "")
	}
	return err
}

func invalid(format string, args ...any) error {
	return app.Errorf(app.ErrInvalidInput, format, args...)
}

// loadProject fetches a project on behalf of c. A missing project reads as
// Forbidden to anyone but an admin so ids cannot be probed.
func loadProject(ctx context.Context, projects repository.ProjectRepo, c domain.Caller, id string) (*domain.Project, error) {
	p, err := projects.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		if c.IsAdmin() {
			return nil, app.Errorf(app.ErrNotFound, "project %s not found", id)
		}
		return nil, app.Errorf(app.ErrForbidden, "project %s is not accessible", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func requireActive(p *domain.Project) error {
	if !p.Active {
		return app.Errorf(app.ErrNotFound, "project %s not found", p.ID)
	}
	return nil
}

// loadTask fetches a task and its project on behalf of c, with the same
// probing rule as loadProject.
func loadTask(ctx context.Context, tasks repository.TaskRepo, projects repository.ProjectRepo, c domain.Caller, id string) (*domain.Task, *domain.Project, error) {
	t, err := tasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		if c.IsAdmin() {
			return nil, nil, app.Errorf(app.ErrNotFound, "task %s not found", id)
		}
		return nil, nil, app.Errorf(app.ErrForbidden, "task %s is not accessible", id)
	}
	if err != nil {
		return nil, nil, err
	}
	p, err := projects.GetByID(ctx, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

func newHistoryEntry(kind domain.EntityKind, entityID string, c domain.Caller, action domain.HistoryAction,
	field string, oldValue, newValue domain.HistoryValue, now time.Time) *domain.HistoryEntry {
	return &domain.HistoryEntry{
		ID:         uuid.New().String(),
		EntityKind: kind,
		EntityID:   entityID,
		ActorID:    c.ID,
		ActorName:  actorName(c),
		Action:     action,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		CreatedAt:  now,
	}
}

func actorName(c domain.Caller) string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return c.ID
}

// projectScope narrows a project query to what c may see.
func projectScope(c domain.Caller) (repository.ProjectFilter, error) {
	if err := authz.KnownRole(c); err != nil {
		return repository.ProjectFilter{}, err
	}
	switch c.Role {
	case domain.RoleProjectManager:
		return repository.ProjectFilter{ManagerID: c.ID}, nil
	case domain.RoleClient:
		return repository.ProjectFilter{ClientID: c.ClientRef()}, nil
	case domain.RoleEmployee:
		return repository.ProjectFilter{}, app.Errorf(app.ErrForbidden, "employees work through their tasks, not projects")
	}
	return repository.ProjectFilter{}, nil
}

// taskScope narrows a task query to what c may see.
func taskScope(c domain.Caller) (repository.TaskFilter, error) {
	if err := authz.KnownRole(c); err != nil {
		return repository.TaskFilter{}, err
	}
	switch c.Role {
	case domain.RoleProjectManager:
		return repository.TaskFilter{ManagerID: c.ID}, nil
	case domain.RoleEmployee:
		return repository.TaskFilter{AssigneeID: c.ID}, nil
	case domain.RoleClient:
		return repository.TaskFilter{}, app.Errorf(app.ErrForbidden, "clients may not view tasks")
	}
	return repository.TaskFilter{}, nil
}

// invoiceScope narrows an invoice query to what c may see.
func invoiceScope(c domain.Caller) (repository.InvoiceFilter, error) {
	if err := authz.KnownRole(c); err != nil {
		return repository.InvoiceFilter{}, err
	}
	switch c.Role {
	case domain.RoleAdmin:
		return repository.InvoiceFilter{}, nil
	case domain.RoleClient:
		return repository.InvoiceFilter{ClientID: c.ClientRef()}, nil
	}
	return repository.InvoiceFilter{}, app.Errorf(app.ErrForbidden, "%s may not view invoices", c.Role)
}

// managersOf returns the distinct managers of projects.
func managersOf(projects []*domain.Project) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range projects {
		if p.ManagerID != "" && !seen[p.ManagerID] {
			seen[p.ManagerID] = true
			out = append(out, p.ManagerID)
		}
	}
	return out
}

// billing sums invoice figures. Drafts are not billed yet.
func billing(invoices []*domain.Invoice) (billed, paid, outstanding float64) {
	for _, inv := range invoices {
		if inv.Status == domain.InvoiceDraft {
			continue
		}
		billed += inv.Total
		paid += inv.PaidTotal()
	}
	billed = roundCents(billed)
	paid = roundCents(paid)
	return billed, paid, roundCents(billed - paid)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseStatusFilter[T ~string](raw string, parse func(string) (T, bool)) (T, error) {
	var zero T
	if strings.TrimSpace(raw) == "" {
		return zero, nil
	}
	v, ok := parse(raw)
	if !ok {
		return zero, invalid("unknown status %q", raw)
	}
	return v, nil
}
