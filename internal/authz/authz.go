// Package authz decides what a caller may see and change. Decisions are pure
// functions of the caller and a Resource describing ownership; loading the
// records is left to the services.
package authz

import (
	"slices"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/domain"
)

type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdateStatus Action = "update_status"
	ActionEditDetails  Action = "edit_details"
	ActionAssignTeam   Action = "assign_team"
	ActionComment      Action = "comment"
	ActionEditComment  Action = "edit_comment"
	ActionDeactivate   Action = "deactivate"
	ActionBilling      Action = "billing"
)

// Resource carries the ownership facts a decision needs. Only the fields
// relevant to Kind are set.
type Resource struct {
	Kind domain.EntityKind
	// ManagerID is the PM of the project the resource belongs to.
	ManagerID string
	// ClientID is the client that owns the resource.
	ClientID string
	// AssigneeID is the employee a task is assigned to.
	AssigneeID string
	// AuthorID is the author of a comment.
	AuthorID string
	// SubjectID is the id of a client or employee record itself.
	SubjectID string
	// ManagerIDs lists the PMs whose projects include an employee or client.
	ManagerIDs []string
}

func ForProject(p *domain.Project) Resource {
	return Resource{Kind: domain.KindProject, ManagerID: p.ManagerID, ClientID: p.ClientID}
}

func ForTask(t *domain.Task, p *domain.Project) Resource {
	r := Resource{Kind: domain.KindTask, AssigneeID: t.AssigneeID}
	if p != nil {
		r.ManagerID = p.ManagerID
		r.ClientID = p.ClientID
	}
	return r
}

// ForComment describes a comment on task t. A nil comment stands for a new one.
func ForComment(c *domain.TaskComment, t *domain.Task, p *domain.Project) Resource {
	r := ForTask(t, p)
	if c != nil {
		r.AuthorID = c.AuthorID
	}
	return r
}

func ForClient(c *domain.Client, managerIDs []string) Resource {
	return Resource{Kind: domain.KindClient, SubjectID: c.ID, ClientID: c.ID, ManagerIDs: managerIDs}
}

func ForEmployee(e *domain.Employee, managerIDs []string) Resource {
	return Resource{Kind: domain.KindEmployee, SubjectID: e.ID, ManagerIDs: managerIDs}
}

func ForInvoice(inv *domain.Invoice) Resource {
	return Resource{Kind: domain.KindInvoice, ClientID: inv.ClientID}
}

// KnownRole validates the caller's role.
func KnownRole(c domain.Caller) error {
	switch c.Role {
	case domain.RoleAdmin, domain.RoleProjectManager, domain.RoleEmployee, domain.RoleClient:
		return nil
	}
	return app.Errorf(app.ErrUnknownRole, "role %q is not recognised", c.Role)
}

func CanView(c domain.Caller, r Resource) bool {
	switch c.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleProjectManager:
		switch r.Kind {
		case domain.KindProject, domain.KindTask:
			return r.ManagerID == c.ID
		case domain.KindEmployee, domain.KindClient:
			return r.SubjectID == c.ID || slices.Contains(r.ManagerIDs, c.ID)
		}
	case domain.RoleEmployee:
		switch r.Kind {
		case domain.KindTask:
			return r.AssigneeID == c.ID
		case domain.KindEmployee:
			return r.SubjectID == c.ID
		}
	case domain.RoleClient:
		switch r.Kind {
		case domain.KindProject, domain.KindInvoice:
			return r.ClientID == c.ClientRef()
		case domain.KindClient:
			return r.SubjectID == c.ClientRef()
		}
	}
	return false
}

func CanMutate(c domain.Caller, a Action, r Resource) bool {
	switch c.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleProjectManager:
		if !RoleMayAttempt(c.Role, a, r.Kind) {
			return false
		}
		if r.Kind == domain.KindProject && a == ActionCreate {
			return true
		}
		if a == ActionEditComment && r.AuthorID != c.ID {
			return false
		}
		return r.ManagerID == c.ID
	case domain.RoleEmployee:
		if !RoleMayAttempt(c.Role, a, r.Kind) {
			return false
		}
		if a == ActionEditComment && r.AuthorID != c.ID {
			return false
		}
		return r.AssigneeID == c.ID
	}
	return false
}

// roleActions lists, per non-admin role, the actions it may ever perform on
// each kind. Clients may not mutate anything.
var roleActions = map[domain.Role]map[domain.EntityKind][]Action{
	domain.RoleProjectManager: {
		domain.KindProject: {ActionCreate, ActionUpdateStatus, ActionAssignTeam},
		domain.KindTask:    {ActionCreate, ActionUpdateStatus, ActionEditDetails, ActionComment, ActionEditComment},
	},
	domain.RoleEmployee: {
		domain.KindTask: {ActionUpdateStatus, ActionComment, ActionEditComment},
	},
}

// RoleMayAttempt reports whether role could be allowed action on kind for
// some resource. It needs no store access, so services call it before
// loading anything.
func RoleMayAttempt(role domain.Role, a Action, kind domain.EntityKind) bool {
	if role == domain.RoleAdmin {
		return true
	}
	return slices.Contains(roleActions[role][kind], a)
}

// Precheck rejects callers whose role alone rules out the action.
func Precheck(c domain.Caller, a Action, kind domain.EntityKind) error {
	if err := KnownRole(c); err != nil {
		return err
	}
	if !RoleMayAttempt(c.Role, a, kind) {
		return app.Errorf(app.ErrForbidden, "%s may not %s a %s", c.Role, a, kind)
	}
	return nil
}

// Authorize returns Forbidden unless the caller may perform a on r.
func Authorize(c domain.Caller, a Action, r Resource) error {
	if err := KnownRole(c); err != nil {
		return err
	}
	if !CanMutate(c, a, r) {
		return app.Errorf(app.ErrForbidden, "%s may not %s this %s", c.Role, a, r.Kind)
	}
	return nil
}

// AuthorizeView returns Forbidden unless the caller may see r.
func AuthorizeView(c domain.Caller, r Resource) error {
	if err := KnownRole(c); err != nil {
		return err
	}
	if !CanView(c, r) {
		return app.Errorf(app.ErrForbidden, "%s may not view this %s", c.Role, r.Kind)
	}
	return nil
}
