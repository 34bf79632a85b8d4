// Package redis implements the persisted storage ports on Redis: the
// session/avatar key-value store and the audit trail list. Keys live under a
// single namespace prefix so several dashboard deployments can share one
// instance.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adminboard/dashboard-core/internal/core/domain"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// KV implements ports.KeyValue. Values persist without expiry: session and
// avatar records are removed only by explicit deletes, never by TTL.
type KV struct {
	client *redis.Client
	prefix string
}

// NewKV wraps client with the given key namespace (e.g. "dashboard").
func NewKV(client *redis.Client, prefix string) *KV {
	return &KV{client: client, prefix: prefix}
}

func (s *KV) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %v", domain.ErrStorage, key, err)
	}
	return val, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", domain.ErrStorage, key, err)
	}
	return nil
}

func (s *KV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = s.key(k)
	}
	if err := s.client.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("%w: delete: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *KV) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}
