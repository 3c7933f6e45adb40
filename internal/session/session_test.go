package session

import (
	"context"
	"errors"
	"testing"

	"github.com/satveer15/workflow-mgmt-tool/internal/credential"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

type fakeAuthService struct {
	loginFn    func(req model.LoginRequest) (model.LoginResponse, error)
	registerFn func(req model.RegisterRequest) error
	logoutFn   func() error
	validateFn func() bool
	refreshFn  func() (model.LoginResponse, error)
	userFn     func() (model.User, error)

	logoutCalls int
}

func (f *fakeAuthService) Login(_ context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	return f.loginFn(req)
}

func (f *fakeAuthService) Register(_ context.Context, req model.RegisterRequest) error {
	return f.registerFn(req)
}

func (f *fakeAuthService) Logout(context.Context) error {
	f.logoutCalls++
	if f.logoutFn != nil {
		return f.logoutFn()
	}
	return nil
}

func (f *fakeAuthService) Validate(context.Context) bool {
	return f.validateFn()
}

func (f *fakeAuthService) Refresh(context.Context) (model.LoginResponse, error) {
	return f.refreshFn()
}

func (f *fakeAuthService) CurrentUser(context.Context) (model.User, error) {
	return f.userFn()
}

// memStore is an in-memory TokenStore.
type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", credential.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Set(key, value string) error {
	s.values[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}

func profileUser() model.User {
	return model.User{ID: 7, Username: "worker", Roles: []string{"ROLE_EMPLOYEE"}}
}

func TestLoginEstablishesSession(t *testing.T) {
	auth := &fakeAuthService{
		loginFn: func(req model.LoginRequest) (model.LoginResponse, error) {
			if req.Username != "worker" || req.Password != "hunter2" {
				t.Errorf("unexpected credentials: %+v", req)
			}
			return model.LoginResponse{Token: "tok-123"}, nil
		},
		userFn: func() (model.User, error) { return profileUser(), nil },
	}
	store := newMemStore()
	m := NewManager(auth, store)

	if err := m.Login(context.Background(), "worker", "hunter2"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if !m.IsAuthenticated() {
		t.Error("expected an authenticated session")
	}
	if m.Token() != "tok-123" {
		t.Errorf("Token() = %q, want tok-123", m.Token())
	}
	if got, _ := store.Get(credential.TokenKey); got != "tok-123" {
		t.Errorf("stored token = %q, want tok-123", got)
	}
}

// Role tokens are normalized once at the session boundary.
func TestLoginNormalizesRoles(t *testing.T) {
	auth := &fakeAuthService{
		loginFn: func(model.LoginRequest) (model.LoginResponse, error) {
			return model.LoginResponse{Token: "tok"}, nil
		},
		userFn: func() (model.User, error) {
			return model.User{ID: 1, Username: "u", Roles: []string{"ROLE_ADMIN", " role_manager ", "EMPLOYEE"}}, nil
		},
	}
	m := NewManager(auth, newMemStore())

	if err := m.Login(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	u := m.Current()
	want := []string{model.RoleAdmin, model.RoleManager, model.RoleEmployee}
	if len(u.Roles) != len(want) {
		t.Fatalf("Roles = %v, want %v", u.Roles, want)
	}
	for i, r := range want {
		if u.Roles[i] != r {
			t.Errorf("Roles[%d] = %q, want %q", i, u.Roles[i], r)
		}
	}
}

func TestLoginFailure(t *testing.T) {
	auth := &fakeAuthService{
		loginFn: func(model.LoginRequest) (model.LoginResponse, error) {
			return model.LoginResponse{}, errors.New("bad credentials")
		},
	}
	m := NewManager(auth, newMemStore())

	if err := m.Login(context.Background(), "u", "wrong"); err == nil {
		t.Fatal("expected Login() to fail")
	}
	if m.IsAuthenticated() {
		t.Error("no session should exist after a failed login")
	}
}

func TestLoginProfileFetchFailureClears(t *testing.T) {
	auth := &fakeAuthService{
		loginFn: func(model.LoginRequest) (model.LoginResponse, error) {
			return model.LoginResponse{Token: "tok"}, nil
		},
		userFn: func() (model.User, error) {
			return model.User{}, errors.New("unavailable")
		},
	}
	store := newMemStore()
	m := NewManager(auth, store)

	if err := m.Login(context.Background(), "u", "p"); err == nil {
		t.Fatal("expected Login() to fail")
	}
	if m.IsAuthenticated() || m.Token() != "" {
		t.Error("session should be cleared when the profile fetch fails")
	}
	if _, err := store.Get(credential.TokenKey); !errors.Is(err, credential.ErrNotFound) {
		t.Error("stored token should be dropped")
	}
}

func TestRestoreResumesSession(t *testing.T) {
	auth := &fakeAuthService{
		validateFn: func() bool { return true },
		userFn:     func() (model.User, error) { return profileUser(), nil },
	}
	store := newMemStore()
	store.values[credential.TokenKey] = "tok-old"
	m := NewManager(auth, store)

	restored, err := m.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !restored || !m.IsAuthenticated() {
		t.Error("expected the session to be restored")
	}
	if m.Token() != "tok-old" {
		t.Errorf("Token() = %q, want tok-old", m.Token())
	}
}

func TestRestoreWithoutStoredToken(t *testing.T) {
	m := NewManager(&fakeAuthService{}, newMemStore())

	restored, err := m.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored || m.IsAuthenticated() {
		t.Error("no session should be restored without a stored token")
	}
}

func TestRestoreInvalidTokenClearsCredential(t *testing.T) {
	auth := &fakeAuthService{
		validateFn: func() bool { return false },
	}
	store := newMemStore()
	store.values[credential.TokenKey] = "tok-expired"
	m := NewManager(auth, store)

	restored, err := m.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored || m.IsAuthenticated() {
		t.Error("an invalid token must not restore a session")
	}
	if _, err := store.Get(credential.TokenKey); !errors.Is(err, credential.ErrNotFound) {
		t.Error("the rejected token should be removed from the store")
	}
}

func TestRegisterLogsStraightIn(t *testing.T) {
	registered := false
	auth := &fakeAuthService{
		registerFn: func(req model.RegisterRequest) error {
			registered = true
			return nil
		},
		loginFn: func(req model.LoginRequest) (model.LoginResponse, error) {
			if !registered {
				t.Error("login attempted before registration")
			}
			return model.LoginResponse{Token: "tok-new"}, nil
		},
		userFn: func() (model.User, error) { return profileUser(), nil },
	}
	m := NewManager(auth, newMemStore())

	err := m.Register(context.Background(), model.RegisterRequest{
		Username: "worker",
		Email:    "worker@example.com",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !m.IsAuthenticated() {
		t.Error("expected an authenticated session after registration")
	}
}

func TestLogoutClearsEvenOnServerError(t *testing.T) {
	auth := &fakeAuthService{
		loginFn: func(model.LoginRequest) (model.LoginResponse, error) {
			return model.LoginResponse{Token: "tok"}, nil
		},
		userFn:   func() (model.User, error) { return profileUser(), nil },
		logoutFn: func() error { return errors.New("unavailable") },
	}
	store := newMemStore()
	m := NewManager(auth, store)
	if err := m.Login(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := m.Logout(context.Background()); err == nil {
		t.Error("expected the server error to surface")
	}
	if m.IsAuthenticated() || m.Token() != "" || m.Current() != nil {
		t.Error("local state must be cleared regardless of the server's answer")
	}
	if _, err := store.Get(credential.TokenKey); !errors.Is(err, credential.ErrNotFound) {
		t.Error("stored token should be dropped on logout")
	}
}

func TestRefreshTokenReplacesToken(t *testing.T) {
	auth := &fakeAuthService{
		loginFn: func(model.LoginRequest) (model.LoginResponse, error) {
			return model.LoginResponse{Token: "tok-old"}, nil
		},
		refreshFn: func() (model.LoginResponse, error) {
			return model.LoginResponse{Token: "tok-new"}, nil
		},
		userFn: func() (model.User, error) { return profileUser(), nil },
	}
	store := newMemStore()
	m := NewManager(auth, store)
	if err := m.Login(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := m.RefreshToken(context.Background()); err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if m.Token() != "tok-new" {
		t.Errorf("Token() = %q, want tok-new", m.Token())
	}
	if got, _ := store.Get(credential.TokenKey); got != "tok-new" {
		t.Errorf("stored token = %q, want tok-new", got)
	}
}

func TestRefreshTokenFailureForcesLogout(t *testing.T) {
	auth := &fakeAuthService{
		loginFn: func(model.LoginRequest) (model.LoginResponse, error) {
			return model.LoginResponse{Token: "tok"}, nil
		},
		refreshFn: func() (model.LoginResponse, error) {
			return model.LoginResponse{}, errors.New("expired")
		},
		userFn: func() (model.User, error) { return profileUser(), nil },
	}
	m := NewManager(auth, newMemStore())
	if err := m.Login(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := m.RefreshToken(context.Background()); err == nil {
		t.Fatal("expected RefreshToken() to fail")
	}
	if m.IsAuthenticated() {
		t.Error("a failed refresh must force a logout")
	}
	if auth.logoutCalls != 1 {
		t.Errorf("logout calls = %d, want 1", auth.logoutCalls)
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	auth := &fakeAuthService{
		loginFn: func(model.LoginRequest) (model.LoginResponse, error) {
			return model.LoginResponse{Token: "tok"}, nil
		},
		userFn: func() (model.User, error) { return profileUser(), nil },
	}
	m := NewManager(auth, newMemStore())
	if err := m.Login(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	u := m.Current()
	u.Username = "tampered"
	u.Roles[0] = "TAMPERED"

	fresh := m.Current()
	if fresh.Username != "worker" || fresh.Roles[0] != model.RoleEmployee {
		t.Error("mutating the returned copy must not affect the session")
	}
}
