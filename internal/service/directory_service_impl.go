package service

import (
	"context"
	"errors"
	"strings"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/authz"
	"github.com/NandiniGupta213/crm/internal/codegen"
	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/repository"
	"github.com/google/uuid"
)

type clientService struct {
	clients  repository.ClientRepo
	projects repository.ProjectRepo
	invoices repository.InvoiceRepo
	uow      db.UnitOfWork
	settings
}

func NewClientService(
	clients repository.ClientRepo,
	projects repository.ProjectRepo,
	invoices repository.InvoiceRepo,
	uow db.UnitOfWork,
	opts ...Option,
) ClientService {
	return &clientService{
		clients:  clients,
		projects: projects,
		invoices: invoices,
		uow:      uow,
		settings: newSettings(opts),
	}
}

func (s *clientService) Create(ctx context.Context, c domain.Caller, req app.CreateClientRequest) (*domain.Client, error) {
	fields := map[string]any{"name": req.Name, "actor": c.ID}
	var client *domain.Client
	err := s.run(ctx, "create-client", fields, func(ctx context.Context) error {
		if err := authz.Precheck(c, authz.ActionCreate, domain.KindClient); err != nil {
			return err
		}
		now := s.now()
		cl := &domain.Client{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(req.Name),
			Company:   req.Company,
			Email:     strings.TrimSpace(req.Email),
			Phone:     req.Phone,
			Address:   req.Address,
			Status:    domain.RecordActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := cl.ValidateForCreate(); err != nil {
			return invalid("%v", err)
		}
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txClients := repository.NewSQLiteClientRepo(tx)
			gen := codegen.New(repository.NewSQLiteCodeCounterRepo(tx), s.codeAttempts)
			code, err := gen.Assign(ctx, domain.KindClient, now.Year(), db.IsUniqueViolation, func(code string) error {
				cl.Code = code
				return txClients.Create(ctx, cl)
			})
			fields["code"] = code
			return err
		})
		if err != nil {
			return err
		}
		client = cl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Get(ctx context.Context, c domain.Caller, id string) (*domain.Client, error) {
	var client *domain.Client
	err := s.run(ctx, "get-client", map[string]any{"client_id": id}, func(ctx context.Context) error {
		if err := authz.KnownRole(c); err != nil {
			return err
		}
		cl, err := s.clients.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) && !c.IsAdmin() {
			return app.Errorf(app.ErrForbidden, "client %s is not accessible", id)
		}
		if err != nil {
			return err
		}
		projects, err := s.projects.List(ctx, repository.ProjectFilter{ClientID: cl.ID, IncludeInactive: true})
		if err != nil {
			return err
		}
		if err := authz.AuthorizeView(c, authz.ForClient(cl, managersOf(projects))); err != nil {
			return err
		}
		if err := s.fillTotals(ctx, []*domain.Client{cl}); err != nil {
			return err
		}
		client = cl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) List(ctx context.Context, c domain.Caller, f app.ListFilter) ([]*domain.Client, error) {
	clients := []*domain.Client{}
	err := s.run(ctx, "list-clients", map[string]any{"actor": c.ID}, func(ctx context.Context) error {
		filter, empty, err := s.scope(ctx, c)
		if err != nil || empty {
			return err
		}
		if filter.Status, err = parseStatusFilter(f.Status, parseRecordStatus); err != nil {
			return err
		}
		filter.Search = f.Search
		found, err := s.clients.List(ctx, filter)
		if err != nil {
			return err
		}
		if err := s.fillTotals(ctx, found); err != nil {
			return err
		}
		clients = append(clients, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clients, nil
}

// scope narrows the client directory to what c may see. empty reports that
// c may see no client at all.
func (s *clientService) scope(ctx context.Context, c domain.Caller) (f repository.DirectoryFilter, empty bool, err error) {
	if err := authz.KnownRole(c); err != nil {
		return f, false, err
	}
	switch c.Role {
	case domain.RoleAdmin:
		return f, false, nil
	case domain.RoleClient:
		f.IDs = []string{c.ClientRef()}
		return f, false, nil
	case domain.RoleProjectManager:
		projects, err := s.projects.List(ctx, repository.ProjectFilter{ManagerID: c.ID, IncludeInactive: true})
		if err != nil {
			return f, false, err
		}
		for _, p := range projects {
			f.IDs = append(f.IDs, p.ClientID)
		}
		f.IDs = distinct(f.IDs)
		return f, len(f.IDs) == 0, nil
	}
	return f, false, app.Errorf(app.ErrForbidden, "%s may not view clients", c.Role)
}

// fillTotals derives billed, paid and outstanding figures from invoices.
func (s *clientService) fillTotals(ctx context.Context, clients []*domain.Client) error {
	if len(clients) == 0 {
		return nil
	}
	filter := repository.InvoiceFilter{}
	if len(clients) == 1 {
		filter.ClientID = clients[0].ID
	}
	invoices, err := s.invoices.List(ctx, filter)
	if err != nil {
		return err
	}
	byClient := map[string][]*domain.Invoice{}
	for _, inv := range invoices {
		byClient[inv.ClientID] = append(byClient[inv.ClientID], inv)
	}
	for _, cl := range clients {
		billed, paid, outstanding := billing(byClient[cl.ID])
		cl.Totals = domain.ClientTotals{Billed: billed, Paid: paid, Outstanding: outstanding}
	}
	return nil
}

func (s *clientService) Deactivate(ctx context.Context, c domain.Caller, id string) error {
	return s.run(ctx, "deactivate-client", map[string]any{"client_id": id, "actor": c.ID}, func(ctx context.Context) error {
		if err := authz.Precheck(c, authz.ActionDeactivate, domain.KindClient); err != nil {
			return err
		}
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txClients := repository.NewSQLiteClientRepo(tx)
			cl, err := txClients.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if cl.Status == domain.RecordInactive {
				return nil
			}
			cl.Status = domain.RecordInactive
			cl.UpdatedAt = s.now()
			return txClients.Update(ctx, cl)
		})
	})
}

type employeeService struct {
	employees repository.EmployeeRepo
	projects  repository.ProjectRepo
	uow       db.UnitOfWork
	settings
}

func NewEmployeeService(
	employees repository.EmployeeRepo,
	projects repository.ProjectRepo,
	uow db.UnitOfWork,
	opts ...Option,
) EmployeeService {
	return &employeeService{
		employees: employees,
		projects:  projects,
		uow:       uow,
		settings:  newSettings(opts),
	}
}

func (s *employeeService) Create(ctx context.Context, c domain.Caller, req app.CreateEmployeeRequest) (*domain.Employee, error) {
	fields := map[string]any{"name": req.Name, "actor": c.ID}
	var employee *domain.Employee
	err := s.run(ctx, "create-employee", fields, func(ctx context.Context) error {
		if err := authz.Precheck(c, authz.ActionCreate, domain.KindEmployee); err != nil {
			return err
		}
		role := domain.RoleEmployee
		if strings.TrimSpace(req.Role) != "" {
			var ok bool
			if role, ok = domain.ParseRole(req.Role); !ok {
				return app.Errorf(app.ErrUnknownRole, "role %q is not recognised", req.Role)
			}
		}
		now := s.now()
		e := &domain.Employee{
			ID:         uuid.New().String(),
			Name:       strings.TrimSpace(req.Name),
			Email:      strings.TrimSpace(req.Email),
			Phone:      req.Phone,
			Department: strings.TrimSpace(req.Department),
			Position:   req.Position,
			Role:       role,
			Status:     domain.RecordActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := e.ValidateForCreate(); err != nil {
			return invalid("%v", err)
		}
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txEmployees := repository.NewSQLiteEmployeeRepo(tx)
			gen := codegen.New(repository.NewSQLiteCodeCounterRepo(tx), s.codeAttempts)
			code, err := gen.Assign(ctx, domain.KindEmployee, now.Year(), db.IsUniqueViolation, func(code string) error {
				e.Code = code
				return txEmployees.Create(ctx, e)
			})
			fields["code"] = code
			return err
		})
		if err != nil {
			return err
		}
		employee = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) Get(ctx context.Context, c domain.Caller, id string) (*domain.Employee, error) {
	var employee *domain.Employee
	err := s.run(ctx, "get-employee", map[string]any{"employee_id": id}, func(ctx context.Context) error {
		if err := authz.KnownRole(c); err != nil {
			return err
		}
		e, err := s.employees.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) && !c.IsAdmin() {
			return app.Errorf(app.ErrForbidden, "employee %s is not accessible", id)
		}
		if err != nil {
			return err
		}
		projects, err := s.projects.List(ctx, repository.ProjectFilter{MemberID: e.ID})
		if err != nil {
			return err
		}
		if err := authz.AuthorizeView(c, authz.ForEmployee(e, managersOf(projects))); err != nil {
			return err
		}
		employee = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) List(ctx context.Context, c domain.Caller, f app.ListFilter) ([]*domain.Employee, error) {
	employees := []*domain.Employee{}
	err := s.run(ctx, "list-employees", map[string]any{"actor": c.ID}, func(ctx context.Context) error {
		filter, err := s.scope(ctx, c)
		if err != nil {
			return err
		}
		if err := applyEmployeeFilter(&filter, f.Status, f.Role); err != nil {
			return err
		}
		filter.Search = f.Search
		filter.Department = f.Department
		found, err := s.employees.List(ctx, filter)
		if err != nil {
			return err
		}
		employees = append(employees, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return employees, nil
}

// scope narrows the staff directory to what c may see: everyone for admins,
// the PM and their teams for managers, and the caller alone for employees.
func (s *employeeService) scope(ctx context.Context, c domain.Caller) (repository.DirectoryFilter, error) {
	var f repository.DirectoryFilter
	if err := authz.KnownRole(c); err != nil {
		return f, err
	}
	switch c.Role {
	case domain.RoleAdmin:
		return f, nil
	case domain.RoleEmployee:
		f.IDs = []string{c.ID}
		return f, nil
	case domain.RoleProjectManager:
		projects, err := s.projects.List(ctx, repository.ProjectFilter{ManagerID: c.ID})
		if err != nil {
			return f, err
		}
		ids := []string{c.ID}
		for _, p := range projects {
			ids = append(ids, p.TeamMemberIDs...)
		}
		f.IDs = distinct(ids)
		return f, nil
	}
	return f, app.Errorf(app.ErrForbidden, "%s may not view employees", c.Role)
}

func applyEmployeeFilter(f *repository.DirectoryFilter, status, role string) error {
	var err error
	if f.Status, err = parseStatusFilter(status, parseRecordStatus); err != nil {
		return err
	}
	if strings.TrimSpace(role) != "" {
		r, ok := domain.ParseRole(role)
		if !ok {
			return invalid("unknown role %q", role)
		}
		f.Role = r
	}
	return nil
}

func (s *employeeService) Deactivate(ctx context.Context, c domain.Caller, id string) error {
	return s.run(ctx, "deactivate-employee", map[string]any{"employee_id": id, "actor": c.ID}, func(ctx context.Context) error {
		if err := authz.Precheck(c, authz.ActionDeactivate, domain.KindEmployee); err != nil {
			return err
		}
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txEmployees := repository.NewSQLiteEmployeeRepo(tx)
			e, err := txEmployees.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if e.Status == domain.RecordInactive {
				return nil
			}
			e.Status = domain.RecordInactive
			e.UpdatedAt = s.now()
			return txEmployees.Update(ctx, e)
		})
	})
}

func parseRecordStatus(s string) (domain.RecordStatus, bool) {
	switch st := domain.RecordStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case domain.RecordActive, domain.RecordInactive:
		return st, true
	}
	return "", false
}
