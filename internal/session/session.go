// Package session owns the authenticated identity for the lifetime of
// a login. It is the single source of truth for the current user and
// role set; other components read it synchronously per decision and
// never keep their own copy.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/satveer15/workflow-mgmt-tool/internal/credential"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// ErrNotAuthenticated is returned by operations that require a session
// when none exists.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthService is the external collaborator that owns login state
// server-side. Implemented by api.AuthClient.
type AuthService interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) error
	Logout(ctx context.Context) error
	Validate(ctx context.Context) bool
	Refresh(ctx context.Context) (model.LoginResponse, error)
	CurrentUser(ctx context.Context) (model.User, error)
}

// TokenStore persists the auth token between runs. Implemented by
// credential.Store.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Manager holds the current session. All reads and writes go through
// the mutex; the role set is normalized once on the way in.
type Manager struct {
	mu    sync.Mutex
	auth  AuthService
	store TokenStore
	user  *model.User
	token string
}

// NewManager creates a session manager backed by the given auth
// service and token store.
func NewManager(auth AuthService, store TokenStore) *Manager {
	return &Manager{auth: auth, store: store}
}

// Token returns the current bearer token, or "" when logged out.
// Suitable as an api.TokenProvider.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Current returns a copy of the authenticated user, or nil when no
// session exists.
func (m *Manager) Current() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	u.Roles = append([]string(nil), m.user.Roles...)
	return &u
}

// IsAuthenticated reports whether a validated session is active.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && m.token != ""
}

// Restore attempts to resume a previous session from the persisted
// token. If the server rejects the token the session is cleared,
// including the stored credential. Returns true when a session was
// restored.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	token, err := m.store.Get(credential.TokenKey)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("reading stored token: %w", err)
	}
	if token == "" {
		return false, nil
	}

	m.setToken(token)

	if !m.auth.Validate(ctx) {
		m.clear(true)
		return false, nil
	}

	user, err := m.auth.CurrentUser(ctx)
	if err != nil {
		m.clear(true)
		return false, fmt.Errorf("fetching current user: %w", err)
	}

	m.setUser(user)
	return true, nil
}

// Login authenticates with the server, persists the token, and loads
// the user profile.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := m.auth.Login(ctx, model.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	m.setToken(resp.Token)
	// A failed persist does not invalidate the live session.
	_ = m.store.Set(credential.TokenKey, resp.Token)

	user, err := m.auth.CurrentUser(ctx)
	if err != nil {
		m.clear(true)
		return fmt.Errorf("fetching current user: %w", err)
	}

	m.setUser(user)
	return nil
}

// Register creates an account and logs straight in with the same
// credentials.
func (m *Manager) Register(ctx context.Context, req model.RegisterRequest) error {
	if err := m.auth.Register(ctx, req); err != nil {
		return err
	}
	return m.Login(ctx, req.Username, req.Password)
}

// Logout tells the server to invalidate the token and clears local
// state regardless of the server's answer.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.auth.Logout(ctx)
	m.clear(true)
	return err
}

// RefreshToken replaces the token and refetches the profile. A failed
// refresh forces a logout.
func (m *Manager) RefreshToken(ctx context.Context) error {
	resp, err := m.auth.Refresh(ctx)
	if err != nil {
		_ = m.Logout(ctx)
		return err
	}

	m.setToken(resp.Token)
	_ = m.store.Set(credential.TokenKey, resp.Token)

	user, err := m.auth.CurrentUser(ctx)
	if err != nil {
		_ = m.Logout(ctx)
		return err
	}

	m.setUser(user)
	return nil
}

func (m *Manager) setToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// setUser installs the user with roles normalized at the boundary, so
// downstream comparisons only ever see canonical tokens.
func (m *Manager) setUser(user model.User) {
	user.Roles = model.NormalizeRoles(user.Roles)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &user
}

func (m *Manager) clear(dropStored bool) {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.mu.Unlock()
	if dropStored {
		_ = m.store.Delete(credential.TokenKey)
	}
}
