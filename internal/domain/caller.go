package domain

import "strings"

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProjectManager Role = "project_manager"
	RoleEmployee       Role = "employee"
	RoleClient         Role = "client"
)

// legacyRoleIDs maps the numeric role ids older front ends send.
var legacyRoleIDs = map[string]Role{
	"1": RoleAdmin,
	"2": RoleProjectManager,
	"3": RoleEmployee,
	"4": RoleClient,
}

// ParseRole normalises a role claim. It accepts the canonical names, the
// hyphenated "project-manager" spelling, and the legacy numeric ids.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, ok := legacyRoleIDs[s]; ok {
		return r, true
	}
	switch r := Role(strings.ReplaceAll(s, "-", "_")); r {
	case RoleAdmin, RoleProjectManager, RoleEmployee, RoleClient:
		return r, true
	}
	return "", false
}

// Caller is the already-authenticated identity behind a request. For staff
// roles ID is the employee id; for the client role ClientID names the client
// record the caller represents.
type Caller struct {
	ID       string
	Name     string
	Role     Role
	ClientID string
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

// ClientRef returns the client record the caller acts for.
func (c Caller) ClientRef() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return c.ID
}
