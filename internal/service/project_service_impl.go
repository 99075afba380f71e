package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/authz"
	"github.com/NandiniGupta213/crm/internal/codegen"
	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	uow      db.UnitOfWork
	settings
}

func NewProjectService(projects repository.ProjectRepo, uow db.UnitOfWork, opts ...Option) ProjectService {
	return &projectService{projects: projects, uow: uow, settings: newSettings(opts)}
}

func (s *projectService) Create(ctx context.Context, c domain.Caller, req app.CreateProjectRequest) (*app.ProjectView, error) {
	fields := map[string]any{"title": req.Title, "actor": c.ID}
	var view *app.ProjectView
	err := s.run(ctx, "create-project", fields, func(ctx context.Context) error {
		if err := authz.Precheck(c, authz.ActionCreate, domain.KindProject); err != nil {
			return err
		}
		status := domain.ProjectPlanned
		if strings.TrimSpace(req.Status) != "" {
			var ok bool
			if status, ok = domain.ParseProjectStatus(req.Status); !ok {
				return invalid("unknown project status %q", req.Status)
			}
		}
		if !domain.ProgressInRange(req.Progress) {
			return app.Errorf(app.ErrInvalidProgress, "progress %d outside [%d,%d]",
				req.Progress, domain.MinProgress, domain.MaxProgress)
		}
		if status == domain.ProjectDelayed {
			return app.Errorf(app.ErrMissingDelayReason, "a project cannot start delayed; set the status after creation")
		}

		managerID := req.ManagerID
		if c.Role == domain.RoleProjectManager {
			managerID = c.ID
		}
		now := s.now()
		p := &domain.Project{
			ID:             uuid.New().String(),
			Title:          strings.TrimSpace(req.Title),
			Description:    req.Description,
			ClientID:       req.ClientID,
			ManagerID:      managerID,
			TeamMemberIDs:  distinct(req.TeamMemberIDs),
			StartDate:      req.StartDate,
			Deadline:       req.Deadline,
			Budget:         req.Budget,
			EstimatedHours: req.EstimatedHours,
			Active:         true,
			Version:        1,
			State:          domain.StatusRecord{Status: status, Progress: req.Progress},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := p.ValidateForCreate(); err != nil {
			return invalid("%v", err)
		}

		var created *domain.HistoryEntry
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txProjects := repository.NewSQLiteProjectRepo(tx)
			txEmployees := repository.NewSQLiteEmployeeRepo(tx)

			if _, err := repository.NewSQLiteClientRepo(tx).GetByID(ctx, p.ClientID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return invalid("client %s does not exist", p.ClientID)
				}
				return err
			}
			if p.ManagerID != "" {
				if err := checkManager(ctx, txEmployees, p.ManagerID); err != nil {
					return err
				}
			}
			if err := checkEmployees(ctx, txEmployees, p.TeamMemberIDs); err != nil {
				return err
			}

			gen := codegen.New(repository.NewSQLiteCodeCounterRepo(tx), s.codeAttempts)
			code, err := gen.Assign(ctx, domain.KindProject, now.Year(), db.IsUniqueViolation, func(code string) error {
				p.Code = code
				return txProjects.Create(ctx, p)
			})
			if err != nil {
				return err
			}
			fields["code"] = code

			created = newHistoryEntry(domain.KindProject, p.ID, c, domain.ActionCreated, "status",
				domain.NullValue(), domain.EnumValue(status), now)
			created.Detail = "project " + code + " created"
			return repository.NewSQLiteHistoryRepo(tx).Append(ctx, created)
		})
		if err != nil {
			return err
		}
		s.publish(ctx, fields, created)
		view = &app.ProjectView{Project: p, DaysLeft: p.DaysLeft(now)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *projectService) Get(ctx context.Context, c domain.Caller, id string) (*app.ProjectView, error) {
	var view *app.ProjectView
	err := s.run(ctx, "get-project", map[string]any{"project_id": id}, func(ctx context.Context) error {
		if err := authz.KnownRole(c); err != nil {
			return err
		}
		p, err := loadProject(ctx, s.projects, c, id)
		if err != nil {
			return err
		}
		if err := authz.AuthorizeView(c, authz.ForProject(p)); err != nil {
			return err
		}
		if err := requireActive(p); err != nil {
			return err
		}
		view = &app.ProjectView{Project: p, DaysLeft: p.DaysLeft(s.now())}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *projectService) List(ctx context.Context, c domain.Caller, f app.ListFilter) ([]app.ProjectView, error) {
	views := []app.ProjectView{}
	err := s.run(ctx, "list-projects", map[string]any{"actor": c.ID}, func(ctx context.Context) error {
		filter, err := projectScope(c)
		if err != nil {
			return err
		}
		if filter.Status, err = parseStatusFilter(f.Status, domain.ParseProjectStatus); err != nil {
			return err
		}
		filter.Search = f.Search
		if filter.ClientID == "" {
			filter.ClientID = f.ClientID
		}
		projects, err := s.projects.List(ctx, filter)
		if err != nil {
			return err
		}
		now := s.now()
		for _, p := range projects {
			views = append(views, app.ProjectView{Project: p, DaysLeft: p.DaysLeft(now)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// AssignTeam replaces the project's team. The manager is never part of the
// stored team list.
func (s *projectService) AssignTeam(ctx context.Context, c domain.Caller, id string, memberIDs []string) (*app.ProjectView, error) {
	fields := map[string]any{"project_id": id, "members": len(memberIDs), "actor": c.ID}
	var view *app.ProjectView
	err := s.run(ctx, "assign-team", fields, func(ctx context.Context) error {
		if err := authz.Precheck(c, authz.ActionAssignTeam, domain.KindProject); err != nil {
			return err
		}
		var audit *domain.HistoryEntry
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txProjects := repository.NewSQLiteProjectRepo(tx)
			p, err := loadProject(ctx, txProjects, c, id)
			if err != nil {
				return err
			}
			if err := authz.Authorize(c, authz.ActionAssignTeam, authz.ForProject(p)); err != nil {
				return err
			}
			if err := requireActive(p); err != nil {
				return err
			}

			team := slices.DeleteFunc(distinct(memberIDs), func(m string) bool { return m == p.ManagerID })
			if err := checkEmployees(ctx, repository.NewSQLiteEmployeeRepo(tx), team); err != nil {
				return err
			}
			oldValue, err := domain.JSONValue(p.TeamMemberIDs)
			if err != nil {
				return err
			}
			newValue, err := domain.JSONValue(team)
			if err != nil {
				return err
			}

			now := s.now()
			expected := p.Version
			p.TeamMemberIDs = team
			p.UpdatedAt = now
			if err := txProjects.Update(ctx, p, expected); err != nil {
				return err
			}
			audit = newHistoryEntry(domain.KindProject, p.ID, c, domain.ActionAssigned, "teamMembers", oldValue, newValue, now)
			if err := repository.NewSQLiteHistoryRepo(tx).Append(ctx, audit); err != nil {
				return err
			}
			view = &app.ProjectView{Project: p, DaysLeft: p.DaysLeft(now)}
			return nil
		})
		if err != nil {
			return err
		}
		s.publish(ctx, fields, audit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Deactivate soft-deletes a project. Its rows, tasks and history stay.
func (s *projectService) Deactivate(ctx context.Context, c domain.Caller, id string) error {
	fields := map[string]any{"project_id": id, "actor": c.ID}
	return s.run(ctx, "deactivate-project", fields, func(ctx context.Context) error {
		if err := authz.Precheck(c, authz.ActionDeactivate, domain.KindProject); err != nil {
			return err
		}
		var audit *domain.HistoryEntry
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txProjects := repository.NewSQLiteProjectRepo(tx)
			p, err := loadProject(ctx, txProjects, c, id)
			if err != nil {
				return err
			}
			if err := authz.Authorize(c, authz.ActionDeactivate, authz.ForProject(p)); err != nil {
				return err
			}
			if err := requireActive(p); err != nil {
				return err
			}
			now := s.now()
			expected := p.Version
			p.Active = false
			p.UpdatedAt = now
			if err := txProjects.Update(ctx, p, expected); err != nil {
				return err
			}
			audit = newHistoryEntry(domain.KindProject, p.ID, c, domain.ActionStatusChanged, "isActive",
				domain.StringValue(string(domain.RecordActive)), domain.StringValue(string(domain.RecordInactive)), now)
			audit.Detail = "project deactivated"
			return repository.NewSQLiteHistoryRepo(tx).Append(ctx, audit)
		})
		if err != nil {
			return err
		}
		s.publish(ctx, fields, audit)
		return nil
	})
}

// checkManager verifies that id names an active staff member who may run
// projects.
func checkManager(ctx context.Context, employees repository.EmployeeRepo, id string) error {
	e, err := employees.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return invalid("project manager %s does not exist", id)
	}
	if err != nil {
		return err
	}
	if e.Role != domain.RoleProjectManager && e.Role != domain.RoleAdmin {
		return invalid("%s is a %s, not a project manager", e.Name, e.Role)
	}
	if e.Status != domain.RecordActive {
		return invalid("project manager %s is inactive", e.Name)
	}
	return nil
}

// checkEmployees verifies that every id names an existing employee.
func checkEmployees(ctx context.Context, employees repository.EmployeeRepo, ids []string) error {
	for _, id := range ids {
		if _, err := employees.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("employee %s does not exist", id)
			}
			return err
		}
	}
	return nil
}

// distinct drops blanks and repeats, keeping first-seen order. The result is
// never nil.
func distinct(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
