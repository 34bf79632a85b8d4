package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/adminboard/dashboard-core/internal/core/domain"
)

// AuditLog implements ports.AuditLog on a Redis list under the logical key
// "user-logs". LPUSH keeps the newest entry at index 0, matching the
// newest-first read order the dashboard renders.
type AuditLog struct {
	client *redis.Client
	key    string
}

// NewAuditLog wraps client, namespacing the list key with prefix.
func NewAuditLog(client *redis.Client, prefix string) *AuditLog {
	key := "user-logs"
	if prefix != "" {
		key = prefix + ":" + key
	}
	return &AuditLog{client: client, key: key}
}

func (l *AuditLog) Prepend(ctx context.Context, entry domain.AuditLogEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: encode audit entry: %v", domain.ErrStorage, err)
	}
	if err := l.client.LPush(ctx, l.key, raw).Err(); err != nil {
		return fmt.Errorf("%w: push audit entry: %v", domain.ErrStorage, err)
	}
	return nil
}

func (l *AuditLog) List(ctx context.Context) ([]domain.AuditLogEntry, error) {
	raws, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: read audit trail: %v", domain.ErrStorage, err)
	}

	entries := make([]domain.AuditLogEntry, 0, len(raws))
	for _, raw := range raws {
		var entry domain.AuditLogEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			// A corrupt row is skipped rather than poisoning the listing.
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (l *AuditLog) Clear(ctx context.Context) error {
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("%w: clear audit trail: %v", domain.ErrStorage, err)
	}
	return nil
}
