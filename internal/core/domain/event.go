package domain

// Event bus topics carrying cross-component change notifications. Payload
// types are fixed per topic so subscribers can type-assert safely.
const (
	// TopicUserRefreshed fires after the session user is re-fetched or its
	// identity (role, permissions, profile fields) changes. Payload: *User.
	TopicUserRefreshed = "user:refreshed"

	// TopicAvatarChanged fires after an avatar set/clear. Payload: AvatarChange.
	TopicAvatarChanged = "avatar:changed"

	// TopicNameChanged fires when the session user's display name changes.
	// Payload: NameChange.
	TopicNameChanged = "name:changed"

	// TopicPermissionChanged fires when a capability of the session user is
	// toggled. Payload: PermissionChange.
	TopicPermissionChanged = "permission:changed"
)

// AvatarChange notifies mounted views that a user's avatar was set or
// cleared. DataURL is empty on clear.
type AvatarChange struct {
	UserID  string
	DataURL string
}

// NameChange notifies mounted views that a user's display name changed.
type NameChange struct {
	UserID   string
	FullName string
}

// PermissionChange notifies subscribers that one capability was toggled.
type PermissionChange struct {
	UserID     string
	Capability Capability
	Granted    bool
}
