package api

import (
	"context"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// AuthClient talks to the authentication endpoints.
type AuthClient struct {
	c *Client
}

// NewAuthClient wraps the shared client.
func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

// Login exchanges credentials for a token and the user's role set.
func (a *AuthClient) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	var out model.LoginResponse
	if err := a.c.Post(ctx, "/auth/login", req, &out); err != nil {
		return model.LoginResponse{}, err
	}
	return out, nil
}

// Register creates a new account. The server responds with an
// acknowledgement message only.
func (a *AuthClient) Register(ctx context.Context, req model.RegisterRequest) error {
	return a.c.Post(ctx, "/auth/register", req, nil)
}

// Logout invalidates the current token server-side.
func (a *AuthClient) Logout(ctx context.Context) error {
	return a.c.Post(ctx, "/auth/logout", nil, nil)
}

// Validate reports whether the current token is still accepted by the
// server. A rejected or failed validation reads as invalid.
func (a *AuthClient) Validate(ctx context.Context) bool {
	return a.c.Get(ctx, "/auth/validate", nil) == nil
}

// Refresh obtains a fresh token for the current session.
func (a *AuthClient) Refresh(ctx context.Context) (model.LoginResponse, error) {
	var out model.LoginResponse
	if err := a.c.Post(ctx, "/auth/refresh", nil, &out); err != nil {
		return model.LoginResponse{}, err
	}
	return out, nil
}

// CurrentUser fetches the authenticated user's profile.
func (a *AuthClient) CurrentUser(ctx context.Context) (model.User, error) {
	var out model.User
	if err := a.c.Get(ctx, "/users/me", &out); err != nil {
		return model.User{}, err
	}
	return out, nil
}
