// Package memstore provides in-memory implementations of the storage ports
// for development and tests, mirroring the behavior of the Redis adapters
// without a running server.
package memstore

import (
	"context"
	"sync"

	"github.com/adminboard/dashboard-core/internal/core/domain"
)

// KV is an in-memory ports.KeyValue.
type KV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewKV() *KV {
	return &KV{data: make(map[string]string)}
}

func (s *KV) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key], nil
}

func (s *KV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *KV) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// AuditLog is an in-memory ports.AuditLog holding entries newest first.
type AuditLog struct {
	mu      sync.RWMutex
	entries []domain.AuditLogEntry
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (l *AuditLog) Prepend(_ context.Context, entry domain.AuditLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]domain.AuditLogEntry{entry}, l.entries...)
	return nil
}

func (l *AuditLog) List(_ context.Context) ([]domain.AuditLogEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.AuditLogEntry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

func (l *AuditLog) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return nil
}
