package ports

import (
	"context"

	"github.com/adminboard/dashboard-core/internal/core/domain"
)

// KeyValue is the persisted key-value surface backing the session and avatar
// caches. Get returns ("", nil) for a missing key. Implementations report
// failures as errors wrapping domain.ErrStorage; callers above the port
// swallow those and degrade.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// AuditLog persists the append-only administrative audit trail (logical key
// "user-logs"). Prepend places the entry at the head so List returns newest
// first. Clear removes all entries and is the only way entries disappear.
type AuditLog interface {
	Prepend(ctx context.Context, entry domain.AuditLogEntry) error
	List(ctx context.Context) ([]domain.AuditLogEntry, error)
	Clear(ctx context.Context) error
}
