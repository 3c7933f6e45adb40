package model

import (
	"strings"
	"time"
)

// Canonical role tokens. Role strings may arrive from the server with
// a "ROLE_" prefix depending on the endpoint; normalize at the session
// boundary and compare only canonical values downstream.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
)

// NormalizeRole strips the server-side "ROLE_" prefix and upper-cases
// the token.
func NormalizeRole(role string) string {
	role = strings.TrimSpace(role)
	role = strings.TrimPrefix(role, "ROLE_")
	return strings.ToUpper(role)
}

// NormalizeRoles normalizes every role token in the slice.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, NormalizeRole(r))
	}
	return out
}

// User is the authenticated identity as reported by the server.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasRole reports whether the user carries the given canonical role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest carries a new-account profile.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginResponse is the payload returned on successful login or token
// refresh.
type LoginResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"tokenType"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}
