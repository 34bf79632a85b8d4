package session

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/core/domain"
)

type stubKV struct {
	data map[string]string
	fail bool
}

func newStubKV() *stubKV {
	return &stubKV{data: make(map[string]string)}
}

var errBroken = errors.New("broken storage")

func (s *stubKV) Get(_ context.Context, key string) (string, error) {
	if s.fail {
		return "", errBroken
	}
	return s.data[key], nil
}

func (s *stubKV) Set(_ context.Context, key, value string) error {
	if s.fail {
		return errBroken
	}
	s.data[key] = value
	return nil
}

func (s *stubKV) Delete(_ context.Context, keys ...string) error {
	if s.fail {
		return errBroken
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func newTestStore(kv *stubKV) *Store {
	return NewStore(kv, zerolog.Nop())
}

func TestStore_SaveThenCurrent(t *testing.T) {
	store := newTestStore(newStubKV())
	ctx := context.Background()

	u := &domain.User{
		ID:          "u1",
		Username:    "alice",
		FullName:    "Alice Doe",
		Role:        domain.RoleStaff,
		Permissions: domain.Permissions{domain.CapOrders: true},
	}
	store.Save(ctx, u)

	got := store.Current(ctx)
	if got == nil {
		t.Fatalf("expected user after save, got nil")
	}
	if !reflect.DeepEqual(got, u) {
		t.Fatalf("current mismatch:\n got %+v\nwant %+v", got, u)
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	store := newTestStore(newStubKV())
	ctx := context.Background()

	store.Save(ctx, &domain.User{ID: "u1", Email: "old@example.com", FullName: "Old"})
	store.Save(ctx, &domain.User{ID: "u1", FullName: "New"})

	got := store.Current(ctx)
	if got.FullName != "New" {
		t.Fatalf("expected overwrite, got %+v", got)
	}
	if got.Email != "" {
		t.Fatalf("save must replace the whole record, not merge: %+v", got)
	}
}

func TestStore_ClearRemovesSessionOnly(t *testing.T) {
	kv := newStubKV()
	store := newTestStore(kv)
	ctx := context.Background()

	store.Save(ctx, &domain.User{ID: "u1"})
	store.SaveToken(ctx, "tok")
	store.SetAvatar(ctx, "u1", "data:image/png;base64,AAA")
	store.SetAvatar(ctx, "u9", "data:image/png;base64,ZZZ")

	store.Clear(ctx)

	if store.Current(ctx) != nil {
		t.Fatalf("expected nil session after clear")
	}
	if store.Token(ctx) != "" {
		t.Fatalf("expected token gone after clear")
	}
	if store.Avatar(ctx, "u1") != "data:image/png;base64,AAA" {
		t.Fatalf("clear must not delete the session user's avatar record")
	}
	if store.Avatar(ctx, "u9") != "data:image/png;base64,ZZZ" {
		t.Fatalf("clear must not delete unrelated avatar records")
	}
}

func TestStore_AvatarIsolationPerUser(t *testing.T) {
	store := newTestStore(newStubKV())
	ctx := context.Background()

	store.SetAvatar(ctx, "u1", "data:u1")
	store.SetAvatar(ctx, "u2", "data:u2")
	store.SetAvatar(ctx, "u1", "data:u1-v2")

	if got := store.Avatar(ctx, "u2"); got != "data:u2" {
		t.Fatalf("writing u1 leaked into u2: %q", got)
	}
	if got := store.Avatar(ctx, "u1"); got != "data:u1-v2" {
		t.Fatalf("expected updated u1 avatar, got %q", got)
	}

	store.ClearAvatar(ctx, "u1")
	if store.Avatar(ctx, "u1") != "" {
		t.Fatalf("expected u1 avatar removed")
	}
	if store.Avatar(ctx, "u2") != "data:u2" {
		t.Fatalf("clearing u1 leaked into u2")
	}
}

func TestStore_EmptyDataURLRemoves(t *testing.T) {
	store := newTestStore(newStubKV())
	ctx := context.Background()

	store.SetAvatar(ctx, "u1", "data:u1")
	store.SetAvatar(ctx, "u1", "")

	if store.Avatar(ctx, "u1") != "" {
		t.Fatalf("empty data reference should remove the record")
	}
}

func TestStore_StorageFailuresSwallowed(t *testing.T) {
	kv := newStubKV()
	store := newTestStore(kv)
	ctx := context.Background()

	store.Save(ctx, &domain.User{ID: "u1"})
	kv.fail = true

	// Reads degrade to zero values, writes and clears to no-ops.
	if store.Current(ctx) != nil {
		t.Fatalf("expected nil read under storage failure")
	}
	if store.Token(ctx) != "" {
		t.Fatalf("expected empty token under storage failure")
	}
	store.Save(ctx, &domain.User{ID: "u2"})
	store.Clear(ctx)
	store.SetAvatar(ctx, "u1", "data:x")

	kv.fail = false
	if got := store.Current(ctx); got == nil || got.ID != "u1" {
		t.Fatalf("failed writes must not corrupt prior state, got %+v", got)
	}
}

func TestStore_CorruptRecordDegradesToNil(t *testing.T) {
	kv := newStubKV()
	store := newTestStore(kv)
	ctx := context.Background()

	kv.data["user"] = "{not json"
	if store.Current(ctx) != nil {
		t.Fatalf("expected nil for unparseable session record")
	}
}
