package ports

import (
	"context"

	"github.com/adminboard/dashboard-core/internal/core/domain"
)

// RawProfile is a backend profile object before normalization. Field names
// vary per endpoint; domain.Normalize folds them into a canonical User.
type RawProfile = map[string]any

// LoginResult carries the bearer token and unnormalized profile returned by
// POST /login.
type LoginResult struct {
	Token   string
	Profile RawProfile
}

// ProfileUpdate lists the editable profile fields for PUT /users/:id.
// Zero-value fields are omitted from the request.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// CreateUserInput is the payload for provisioning a new dashboard user.
type CreateUserInput struct {
	Username    string
	Email       string
	FullName    string
	Password    string
	Role        domain.Role
	Permissions domain.Permissions
}

// Backend is the remote REST collaborator owning user records. The session
// core calls it and applies local cache updates only on success; transport,
// retry and timeout policy live behind this interface.
type Backend interface {
	Login(ctx context.Context, usernameOrEmail, password string) (*LoginResult, error)
	FetchProfile(ctx context.Context, id string) (RawProfile, error)
	FetchSelf(ctx context.Context) (RawProfile, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (RawProfile, error)
	ListUsers(ctx context.Context) ([]RawProfile, error)
	ChangeRole(ctx context.Context, userID string, role domain.Role) error
	ChangePermissions(ctx context.Context, userID string, perms domain.Permissions) error
	CreateUser(ctx context.Context, input CreateUserInput) (RawProfile, error)
}
