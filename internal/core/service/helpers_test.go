package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/core/bus"
	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
	"github.com/adminboard/dashboard-core/internal/core/session"
	"github.com/adminboard/dashboard-core/internal/infrastructure/memstore"
)

var errBackendDown = errors.New("backend down")

// stubBackend scripts ports.Backend per test. Unset function fields fail the
// call so tests only wire what they exercise.
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

func (b *stubBackend) Login(_ context.Context, u, p string) (*ports.LoginResult, error) {
	if b.login == nil {
		return nil, errBackendDown
	}
	return b.login(u, p)
}

func (b *stubBackend) FetchProfile(_ context.Context, id string) (ports.RawProfile, error) {
	if b.fetchProfile == nil {
		return nil, errBackendDown
	}
	return b.fetchProfile(id)
}

func (b *stubBackend) FetchSelf(_ context.Context) (ports.RawProfile, error) {
	if b.fetchSelf == nil {
		return nil, errBackendDown
	}
	return b.fetchSelf()
}

func (b *stubBackend) UpdateProfile(_ context.Context, id string, update ports.ProfileUpdate) (ports.RawProfile, error) {
	if b.updateProfile == nil {
		return nil, errBackendDown
	}
	return b.updateProfile(id, update)
}

func (b *stubBackend) ListUsers(_ context.Context) ([]ports.RawProfile, error) {
	if b.listUsers == nil {
		return nil, errBackendDown
	}
	return b.listUsers()
}

func (b *stubBackend) ChangeRole(_ context.Context, userID string, role domain.Role) error {
	if b.changeRole == nil {
		return errBackendDown
	}
	return b.changeRole(userID, role)
}

func (b *stubBackend) ChangePermissions(_ context.Context, userID string, perms domain.Permissions) error {
	if b.changePermissions == nil {
		return errBackendDown
	}
	return b.changePermissions(userID, perms)
}

func (b *stubBackend) CreateUser(_ context.Context, input ports.CreateUserInput) (ports.RawProfile, error) {
	if b.createUser == nil {
		return nil, errBackendDown
	}
	return b.createUser(input)
}

// testEnv bundles the collaborators every service test needs.
type testEnv struct {
	backend  *stubBackend
	sessions *session.Store
	audit    *memstore.AuditLog
	events   *bus.Bus
}

func newTestEnv() *testEnv {
	return &testEnv{
		backend:  &stubBackend{},
		sessions: session.NewStore(memstore.NewKV(), zerolog.Nop()),
		audit:    memstore.NewAuditLog(),
		events:   bus.New(zerolog.Nop()),
	}
}

func rawProfile(id, username, fullName string, role domain.Role, perms map[string]bool) ports.RawProfile {
	raw := ports.RawProfile{
		"id":        id,
		"username":  username,
		"full_name": fullName,
		"role":      string(role),
	}
	if perms != nil {
		raw["permissions"] = perms
	}
	return raw
}
