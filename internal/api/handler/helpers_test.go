package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/api/middleware"
	"github.com/adminboard/dashboard-core/internal/core/bus"
	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
	"github.com/adminboard/dashboard-core/internal/core/service"
	"github.com/adminboard/dashboard-core/internal/core/session"
	"github.com/adminboard/dashboard-core/internal/infrastructure/memstore"
)

var errBackendDown = errors.New("backend down")

// stubBackend scripts individual backend calls per test. Unscripted calls
// fail, so tests only wire what the exercised path needs.
type stubBackend struct {
	login             func(usernameOrEmail, password string) (*ports.LoginResult, error)
	fetchProfile      func(id string) (ports.RawProfile, error)
	fetchSelf         func() (ports.RawProfile, error)
	updateProfile     func(id string, update ports.ProfileUpdate) (ports.RawProfile, error)
	listUsers         func() ([]ports.RawProfile, error)
	changeRole        func(userID string, role domain.Role) error
	changePermissions func(userID string, perms domain.Permissions) error
	createUser        func(input ports.CreateUserInput) (ports.RawProfile, error)
}

func (s *stubBackend) Login(ctx context.Context, usernameOrEmail, password string) (*ports.LoginResult, error) {
	if s.login == nil {
		return nil, errBackendDown
	}
	return s.login(usernameOrEmail, password)
}

func (s *stubBackend) FetchProfile(ctx context.Context, id string) (ports.RawProfile, error) {
	if s.fetchProfile == nil {
		return nil, errBackendDown
	}
	return s.fetchProfile(id)
}

func (s *stubBackend) FetchSelf(ctx context.Context) (ports.RawProfile, error) {
	if s.fetchSelf == nil {
		return nil, errBackendDown
	}
	return s.fetchSelf()
}

func (s *stubBackend) UpdateProfile(ctx context.Context, id string, update ports.ProfileUpdate) (ports.RawProfile, error) {
	if s.updateProfile == nil {
		return nil, errBackendDown
	}
	return s.updateProfile(id, update)
}

func (s *stubBackend) ListUsers(ctx context.Context) ([]ports.RawProfile, error) {
	if s.listUsers == nil {
		return nil, errBackendDown
	}
	return s.listUsers()
}

func (s *stubBackend) ChangeRole(ctx context.Context, userID string, role domain.Role) error {
	if s.changeRole == nil {
		return errBackendDown
	}
	return s.changeRole(userID, role)
}

func (s *stubBackend) ChangePermissions(ctx context.Context, userID string, perms domain.Permissions) error {
	if s.changePermissions == nil {
		return errBackendDown
	}
	return s.changePermissions(userID, perms)
}

func (s *stubBackend) CreateUser(ctx context.Context, input ports.CreateUserInput) (ports.RawProfile, error) {
	if s.createUser == nil {
		return nil, errBackendDown
	}
	return s.createUser(input)
}

// testEnv assembles real services over in-memory stores and the stub
// backend, mirroring the wiring the router performs.
type testEnv struct {
	backend  *stubBackend
	sessions *session.Store
	audit    ports.AuditLog
	events   *bus.Bus

	auth     *service.AuthService
	profiles *service.ProfileService
	admin    *service.AdminService
}

func newTestEnv() *testEnv {
	backend := &stubBackend{}
	sessions := session.NewStore(memstore.NewKV(), zerolog.Nop())
	audit := memstore.NewAuditLog()
	events := bus.New(zerolog.Nop())

	return &testEnv{
		backend:  backend,
		sessions: sessions,
		audit:    audit,
		events:   events,
		auth:     service.NewAuthService(backend, sessions, events, zerolog.Nop()),
		profiles: service.NewProfileService(backend, sessions, audit, events, zerolog.Nop()),
		admin:    service.NewAdminService(backend, sessions, audit, events, zerolog.Nop()),
	}
}

// jsonRequest builds an echo context carrying a JSON body, with the
// validator installed so handlers can call c.Validate.
func jsonRequest(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// withSessionUser stores u in the session and injects it the way
// RequireSession would.
func withSessionUser(t *testing.T, env *testEnv, c echo.Context, u *domain.User) {
	t.Helper()
	env.sessions.Save(context.Background(), u)

	mw := middleware.RequireSession(env.sessions)
	if err := mw(func(echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("session injection failed: %v", err)
	}
}

func rawProfile(id, username, fullName string, role domain.Role, perms map[string]bool) ports.RawProfile {
	return ports.RawProfile{
		"user_id":   id,
		"user_name": username,
		"fullName":  fullName,
		"role":      string(role),
		"perms":     perms,
	}
}
