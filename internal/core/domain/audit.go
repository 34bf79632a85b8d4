package domain

import "time"

// Action classifies one administrative mutation in the audit trail.
type Action string

const (
	ActionRoleChanged       Action = "role-changed"
	ActionPermissionToggled Action = "permission-toggled"
	ActionUserCreated       Action = "user-created"
	ActionProfileUpdated    Action = "profile-updated"
)

// AuditLogEntry is an immutable record of one administrative mutation.
// Entries form an append-only sequence ordered newest first and are removed
// only by an explicit clear.
type AuditLogEntry struct {
	ID           string    `json:"id"`
	Action       Action    `json:"action"`
	Detail       string    `json:"detail"`
	When         time.Time `json:"when"`
	TargetUserID string    `json:"target_user_id,omitempty"`
}
