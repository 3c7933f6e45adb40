package api

import (
	"context"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// UserClient talks to the user directory. It is consumed only to
// populate assignment and filter pickers; the client never caches full
// user records.
type UserClient struct {
	c *Client
}

// NewUserClient wraps the shared client.
func NewUserClient(c *Client) *UserClient {
	return &UserClient{c: c}
}

// ListAll fetches every user in the directory.
func (u *UserClient) ListAll(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := u.c.Get(ctx, "/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAssignable fetches the users shown in assignment pickers,
// excluding admin accounts.
func (u *UserClient) ListAssignable(ctx context.Context) ([]model.User, error) {
	users, err := u.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.User, 0, len(users))
	for _, usr := range users {
		usr.Roles = model.NormalizeRoles(usr.Roles)
		if usr.HasRole(model.RoleAdmin) {
			continue
		}
		out = append(out, usr)
	}
	return out, nil
}
