package authz

import (
	"testing"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/stretchr/testify/assert"
)

var (
	admin    = domain.Caller{ID: "a1", Role: domain.RoleAdmin}
	pm       = domain.Caller{ID: "pm1", Role: domain.RoleProjectManager}
	otherPM  = domain.Caller{ID: "pm2", Role: domain.RoleProjectManager}
	employee = domain.Caller{ID: "e1", Role: domain.RoleEmployee}
	client   = domain.Caller{ID: "u9", Role: domain.RoleClient, ClientID: "c1"}
)

func fixtures() (*domain.Project, *domain.Task) {
	p := &domain.Project{ID: "p1", ManagerID: "pm1", ClientID: "c1"}
	t := &domain.Task{ID: "t1", ProjectID: "p1", AssigneeID: "e1"}
	return p, t
}

func TestCanView_Table(t *testing.T) {
	p, task := fixtures()
	cases := []struct {
		name   string
		caller domain.Caller
		res    Resource
		want   bool
	}{
		{"admin sees project", admin, ForProject(p), true},
		{"pm sees own project", pm, ForProject(p), true},
		{"pm cannot see other project", otherPM, ForProject(p), false},
		{"pm sees task of own project", pm, ForTask(task, p), true},
		{"employee sees own task", employee, ForTask(task, p), true},
		{"employee cannot see project", employee, ForProject(p), false},
		{"client sees own project", client, ForProject(p), true},
		{"client cannot see task", client, ForTask(task, p), false},
		{"client sees own invoice", client, ForInvoice(&domain.Invoice{ClientID: "c1"}), true},
		{"client cannot see other invoice", client, ForInvoice(&domain.Invoice{ClientID: "c2"}), false},
		{"client sees own record", client, ForClient(&domain.Client{ID: "c1"}, nil), true},
		{"employee sees own profile", employee, ForEmployee(&domain.Employee{ID: "e1"}, nil), true},
		{"employee cannot see colleague", employee, ForEmployee(&domain.Employee{ID: "e2"}, []string{"pm1"}), false},
		{"pm sees team member", pm, ForEmployee(&domain.Employee{ID: "e2"}, []string{"pm1"}), true},
		{"pm cannot see stranger", pm, ForEmployee(&domain.Employee{ID: "e3"}, nil), false},
		{"unknown role sees nothing", domain.Caller{ID: "x", Role: "guest"}, ForProject(p), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanView(tc.caller, tc.res))
		})
	}
}

func TestCanMutate_Table(t *testing.T) {
	p, task := fixtures()
	ownComment := &domain.TaskComment{AuthorID: "e1"}
	pmComment := &domain.TaskComment{AuthorID: "pm1"}

	cases := []struct {
		name   string
		caller domain.Caller
		action Action
		res    Resource
		want   bool
	}{
		{"admin updates any project", admin, ActionUpdateStatus, ForProject(p), true},
		{"pm updates own project status", pm, ActionUpdateStatus, ForProject(p), true},
		{"pm cannot update other project", otherPM, ActionUpdateStatus, ForProject(p), false},
		{"pm creates project", otherPM, ActionCreate, Resource{Kind: domain.KindProject}, true},
		{"pm assigns own team", pm, ActionAssignTeam, ForProject(p), true},
		{"pm cannot deactivate project", pm, ActionDeactivate, ForProject(p), false},
		{"employee cannot update project", employee, ActionUpdateStatus, ForProject(p), false},
		{"employee updates own task", employee, ActionUpdateStatus, ForTask(task, p), true},
		{"employee cannot update others task", domain.Caller{ID: "e2", Role: domain.RoleEmployee}, ActionUpdateStatus, ForTask(task, p), false},
		{"employee cannot edit task details", employee, ActionEditDetails, ForTask(task, p), false},
		{"employee comments on own task", employee, ActionComment, ForComment(nil, task, p), true},
		{"employee edits own comment", employee, ActionEditComment, ForComment(ownComment, task, p), true},
		{"employee cannot edit pm comment", employee, ActionEditComment, ForComment(pmComment, task, p), false},
		{"pm comments on own project task", pm, ActionComment, ForComment(nil, task, p), true},
		{"pm cannot edit employee comment", pm, ActionEditComment, ForComment(ownComment, task, p), false},
		{"client mutates nothing", client, ActionComment, ForComment(nil, task, p), false},
		{"pm cannot bill", pm, ActionBilling, ForInvoice(&domain.Invoice{}), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanMutate(tc.caller, tc.action, tc.res))
		})
	}
}

func TestAuthorize_ErrorKinds(t *testing.T) {
	p, _ := fixtures()

	err := Authorize(employee, ActionUpdateStatus, ForProject(p))
	assert.Equal(t, app.ErrForbidden, app.KindOf(err))

	err = Authorize(domain.Caller{ID: "x"}, ActionUpdateStatus, ForProject(p))
	assert.Equal(t, app.ErrUnknownRole, app.KindOf(err))

	assert.NoError(t, Authorize(pm, ActionUpdateStatus, ForProject(p)))
	assert.NoError(t, AuthorizeView(client, ForProject(p)))
	assert.Equal(t, app.ErrForbidden, app.KindOf(AuthorizeView(otherPM, ForProject(p))))
}

func TestPrecheck_RoleOnly(t *testing.T) {
	assert.NoError(t, Precheck(pm, ActionUpdateStatus, domain.KindProject))
	assert.NoError(t, Precheck(employee, ActionUpdateStatus, domain.KindTask))
	assert.Equal(t, app.ErrForbidden, app.KindOf(Precheck(employee, ActionUpdateStatus, domain.KindProject)))
	assert.Equal(t, app.ErrForbidden, app.KindOf(Precheck(client, ActionComment, domain.KindTask)))
	assert.Equal(t, app.ErrUnknownRole, app.KindOf(Precheck(domain.Caller{Role: "7"}, ActionComment, domain.KindTask)))
}
