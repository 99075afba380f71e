package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/repository"
	"github.com/NandiniGupta213/crm/internal/testutil"
	"github.com/stretchr/testify/require"
)

// fixture is a seeded store: one client, one PM, one employee.
type fixture struct {
	t      *testing.T
	ctx    context.Context
	db     *sql.DB
	svc    *Services
	client *domain.Client
	pm     *domain.Employee
	emp    *domain.Employee
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	return newFixtureWith(t, database, testutil.NewTestUoW(database), opts...)
}

func newFixtureWith(t *testing.T, database *sql.DB, uow db.UnitOfWork, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		t:      t,
		ctx:    ctx,
		db:     database,
		svc:    NewServices(database, uow, opts...),
		client: testutil.NewTestClient("Acme"),
		pm:     testutil.NewTestEmployee("Pat", testutil.WithRole(domain.RoleProjectManager)),
		emp:    testutil.NewTestEmployee("Eli"),
	}
	require.NoError(t, repository.NewSQLiteClientRepo(database).Create(ctx, f.client))
	employees := repository.NewSQLiteEmployeeRepo(database)
	require.NoError(t, employees.Create(ctx, f.pm))
	require.NoError(t, employees.Create(ctx, f.emp))
	return f
}

func (f *fixture) admin() domain.Caller { return testutil.AdminCaller() }
func (f *fixture) manager() domain.Caller { return testutil.ManagerCaller(f.pm.ID) }
func (f *fixture) employee() domain.Caller { return testutil.EmployeeCaller(f.emp.ID) }

// seedProject stores a project managed by the fixture's PM.
func (f *fixture) seedProject(title string, opts ...testutil.ProjectOption) *domain.Project {
	f.t.Helper()
	opts = append([]testutil.ProjectOption{testutil.WithManager(f.pm.ID)}, opts...)
	p := testutil.NewTestProject(f.client.ID, title, opts...)
	require.NoError(f.t, repository.NewSQLiteProjectRepo(f.db).Create(f.ctx, p))
	return p
}

// seedRaw stores p as given.
func (f *fixture) seedRaw(p *domain.Project) {
	f.t.Helper()
	require.NoError(f.t, repository.NewSQLiteProjectRepo(f.db).Create(f.ctx, p))
}

func (f *fixture) seedClient(name string, opts ...testutil.ClientOption) *domain.Client {
	f.t.Helper()
	c := testutil.NewTestClient(name, opts...)
	require.NoError(f.t, repository.NewSQLiteClientRepo(f.db).Create(f.ctx, c))
	return c
}

func (f *fixture) seedEmployee(name string, opts ...testutil.EmployeeOption) *domain.Employee {
	f.t.Helper()
	e := testutil.NewTestEmployee(name, opts...)
	require.NoError(f.t, repository.NewSQLiteEmployeeRepo(f.db).Create(f.ctx, e))
	return e
}

func (f *fixture) seedInvoice(inv *domain.Invoice) {
	f.t.Helper()
	require.NoError(f.t, repository.NewSQLiteInvoiceRepo(f.db).Create(f.ctx, inv))
}

// seedTask stores a task on p assigned to the fixture's employee.
func (f *fixture) seedTask(p *domain.Project, name string, opts ...testutil.TaskOption) *domain.Task {
	f.t.Helper()
	opts = append([]testutil.TaskOption{testutil.WithAssignee(f.emp.ID)}, opts...)
	task := testutil.NewTestTask(p.ID, name, opts...)
	require.NoError(f.t, repository.NewSQLiteTaskRepo(f.db).Create(f.ctx, task))
	return task
}

func (f *fixture) reloadProject(id string) *domain.Project {
	f.t.Helper()
	p, err := repository.NewSQLiteProjectRepo(f.db).GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) statusHistory(projectID string) []domain.StatusHistoryEntry {
	f.t.Helper()
	hist, err := repository.NewSQLiteStatusHistoryRepo(f.db).ListByProject(f.ctx, projectID)
	require.NoError(f.t, err)
	return hist
}

func (f *fixture) timeline(kind domain.EntityKind, id string) []*domain.HistoryEntry {
	f.t.Helper()
	entries, err := repository.NewSQLiteHistoryRepo(f.db).ListByEntity(f.ctx, kind, id)
	require.NoError(f.t, err)
	return entries
}

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
