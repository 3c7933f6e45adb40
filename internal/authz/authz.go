// Package authz is the client-side authorization predicate engine.
// Every predicate is a pure function of the current session and, where
// relevant, a task. The server independently enforces the same rules;
// these checks are a UX gate, not a security boundary, so they fail
// closed on a missing session or missing task.
package authz

import (
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// SessionReader exposes the single synchronous session read a
// predicate is allowed per decision. Implemented by session.Manager.
type SessionReader interface {
	Current() *model.User
}

// Checker evaluates authorization predicates against the live session.
type Checker struct {
	session SessionReader
}

// NewChecker creates a Checker bound to the given session source.
func NewChecker(session SessionReader) *Checker {
	return &Checker{session: session}
}

// HasRole reports whether the current user carries the role.
func (c *Checker) HasRole(role string) bool {
	user := c.session.Current()
	if user == nil {
		return false
	}
	return user.HasRole(role)
}

// HasAnyRole reports whether the current user carries at least one of
// the roles.
func (c *Checker) HasAnyRole(roles ...string) bool {
	user := c.session.Current()
	if user == nil {
		return false
	}
	for _, role := range roles {
		if user.HasRole(role) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the current user carries every role.
func (c *Checker) HasAllRoles(roles ...string) bool {
	user := c.session.Current()
	if user == nil {
		return false
	}
	for _, role := range roles {
		if !user.HasRole(role) {
			return false
		}
	}
	return true
}

// IsAdmin reports whether the current user is an admin.
func (c *Checker) IsAdmin() bool { return c.HasRole(model.RoleAdmin) }

// IsManager reports whether the current user is a manager.
func (c *Checker) IsManager() bool { return c.HasRole(model.RoleManager) }

// IsEmployee reports whether the current user is an employee.
func (c *Checker) IsEmployee() bool { return c.HasRole(model.RoleEmployee) }

// CanViewAnalytics gates the privileged analytics endpoints.
func (c *Checker) CanViewAnalytics() bool {
	return c.HasAnyRole(model.RoleAdmin, model.RoleManager)
}

// CanAssignTasks gates the assignment affordances.
func (c *Checker) CanAssignTasks() bool {
	return c.HasAnyRole(model.RoleAdmin, model.RoleManager)
}

// CanManageUsers gates user administration.
func (c *Checker) CanManageUsers() bool {
	return c.HasRole(model.RoleAdmin)
}

// CanUpdateStatus decides whether the current user may transition the
// task's status. Admins and managers may transition any task; everyone
// else only tasks they created or are assigned to.
func (c *Checker) CanUpdateStatus(task *model.Task) bool {
	user := c.session.Current()
	if user == nil || task == nil {
		return false
	}

	if user.HasRole(model.RoleAdmin) || user.HasRole(model.RoleManager) {
		return true
	}

	if task.CreatedByID == user.ID {
		return true
	}
	return task.AssignedToID != nil && *task.AssignedToID == user.ID
}
