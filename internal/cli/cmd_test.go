package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/config"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/repository"
	"github.com/NandiniGupta213/crm/internal/server"
	"github.com/NandiniGupta213/crm/internal/service"
	"github.com/NandiniGupta213/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliFixture struct {
	app     *App
	pm      *domain.Employee
	project *domain.Project
	task    *domain.Task
}

// newCLIFixture wires a full App over an in-memory DB with one project,
// managed by a PM, holding one task.
func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	ctx := context.Background()
	database := testutil.NewTestDB(t)

	client := testutil.NewTestClient("Acme")
	require.NoError(t, repository.NewSQLiteClientRepo(database).Create(ctx, client))
	pm := testutil.NewTestEmployee("Pat", testutil.WithRole(domain.RoleProjectManager))
	emp := testutil.NewTestEmployee("Eli")
	employees := repository.NewSQLiteEmployeeRepo(database)
	require.NoError(t, employees.Create(ctx, pm))
	require.NoError(t, employees.Create(ctx, emp))

	project := testutil.NewTestProject(client.ID, "Website relaunch", testutil.WithManager(pm.ID), testutil.WithBudget(5000))
	require.NoError(t, repository.NewSQLiteProjectRepo(database).Create(ctx, project))
	task := testutil.NewTestTask(project.ID, "Design review", testutil.WithAssignee(emp.ID))
	require.NoError(t, repository.NewSQLiteTaskRepo(database).Create(ctx, task))

	auth, err := server.NewAuthenticator("cli-secret", "crm")
	require.NoError(t, err)

	return &cliFixture{
		app: &App{
			Config:   config.DefaultConfig(),
			Logger:   slog.New(slog.DiscardHandler),
			DB:       database,
			Services: service.NewServices(database, testutil.NewTestUoW(database)),
			Auth:     auth,
		},
		pm:      pm,
		project: project,
		task:    task,
	}
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(f.app)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProjectList(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Website relaunch")
	assert.Contains(t, out, f.project.Code)
	assert.Contains(t, out, "5,000.00")

	out, err = f.run(t, "project", "list", "--search", "nothing-matches")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found")
}

func TestProjectList_RoleScoping(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "project", "list", "--as", "another-pm", "--role", "project_manager")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found")

	_, err = f.run(t, "project", "list", "--role", "employee")
	assert.Equal(t, app.ErrForbidden, app.KindOf(err))

	_, err = f.run(t, "project", "list", "--role", "auditor")
	assert.ErrorContains(t, err, "unknown role")
}

func TestProjectStatus_ResolvesCode(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "project", "status", strings.ToLower(f.project.Code))
	require.NoError(t, err)
	assert.Contains(t, out, "Website relaunch")
	assert.Contains(t, out, "Planned")

	_, err = f.run(t, "project", "status", "PRJ-00-9999")
	assert.ErrorContains(t, err, "project not found")
}

func TestResolveProjectID(t *testing.T) {
	f := newCLIFixture(t)
	ctx := context.Background()
	admin := testutil.AdminCaller()

	id, err := resolveProjectID(ctx, f.app.Services.Projects, admin, f.project.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, f.project.ID, id)

	_, err = resolveProjectID(ctx, f.app.Services.Projects, admin, "")
	assert.Error(t, err)
}

func TestTaskStatus_WritesTimeline(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "task", "status", f.task.ID, "in-progress", "-m", "starting now", "--as", f.pm.ID, "--role", "project_manager")
	require.NoError(t, err)
	assert.Contains(t, out, "Design review")
	assert.Contains(t, out, "In Progress")

	out, err = f.run(t, "task", "timeline", f.task.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "status_changed")
	assert.Contains(t, out, "todo → in-progress")
}

func TestStats_OmitsForbiddenSections(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "PROJECTS")
	assert.Contains(t, out, "TASKS")
	assert.Contains(t, out, "INVOICES")

	out, err = f.run(t, "stats", "--as", f.pm.ID, "--role", "project_manager")
	require.NoError(t, err)
	assert.Contains(t, out, "PROJECTS")
	assert.NotContains(t, out, "INVOICES")

	_, err = f.run(t, "stats", "--from", "last week")
	assert.ErrorContains(t, err, "invalid date")
}

func TestToken_VerifiesAsIssuedIdentity(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "token", "--as", "emp-42", "--role", "3", "--ttl", "1h")
	require.NoError(t, err)

	caller, err := f.app.Auth.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "emp-42", caller.ID)
	assert.Equal(t, domain.RoleEmployee, caller.Role)
}

func TestMigrate(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestParseDay(t *testing.T) {
	got, err := parseDay("2026-03-01", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 23, 59, 59, 999999999, time.UTC), *got)

	got, err = parseDay("", false)
	require.NoError(t, err)
	assert.Nil(t, got)
}
