package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
)

func newProfileService(env *testEnv) *ProfileService {
	return NewProfileService(env.backend, env.sessions, env.audit, env.events, zerolog.Nop())
}

func TestProfileService_Update_SelfPropagates(t *testing.T) {
	env := newTestEnv()
	svc := newProfileService(env)
	ctx := context.Background()

	env.sessions.Save(ctx, &domain.User{ID: "u1", Username: "alice", FullName: "Alice Doe"})
	env.backend.updateProfile = func(id string, update ports.ProfileUpdate) (ports.RawProfile, error) {
		return rawProfile(id, "alice", update.FullName, "", nil), nil
	}

	var name domain.NameChange
	var refreshed *domain.User
	s1 := env.events.Subscribe(domain.TopicNameChanged, func(p any) { name = p.(domain.NameChange) })
	s2 := env.events.Subscribe(domain.TopicUserRefreshed, func(p any) { refreshed = p.(*domain.User) })
	defer env.events.Unsubscribe(s1)
	defer env.events.Unsubscribe(s2)

	updated, err := svc.Update(ctx, "u1", ports.ProfileUpdate{FullName: "Alice Renamed"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.FullName != "Alice Renamed" {
		t.Fatalf("unexpected updated profile: %+v", updated)
	}
	if name.UserID != "u1" || name.FullName != "Alice Renamed" {
		t.Fatalf("expected name:changed, got %+v", name)
	}
	if refreshed == nil || refreshed.FullName != "Alice Renamed" {
		t.Fatalf("expected user:refreshed, got %+v", refreshed)
	}
	if env.sessions.Current(ctx).FullName != "Alice Renamed" {
		t.Fatalf("expected session cache updated")
	}

	logs, _ := env.audit.List(ctx)
	if len(logs) != 1 || logs[0].Action != domain.ActionProfileUpdated {
		t.Fatalf("expected profile-updated audit entry, got %+v", logs)
	}
}

func TestProfileService_Update_SameNamePublishesNoNameChange(t *testing.T) {
	env := newTestEnv()
	svc := newProfileService(env)
	ctx := context.Background()

	env.sessions.Save(ctx, &domain.User{ID: "u1", FullName: "Alice Doe"})
	env.backend.updateProfile = func(id string, _ ports.ProfileUpdate) (ports.RawProfile, error) {
		return rawProfile(id, "alice", "Alice Doe", "", nil), nil
	}

	nameChanges := 0
	sub := env.events.Subscribe(domain.TopicNameChanged, func(any) { nameChanges++ })
	defer env.events.Unsubscribe(sub)

	if _, err := svc.Update(ctx, "u1", ports.ProfileUpdate{Email: "a@example.com"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if nameChanges != 0 {
		t.Fatalf("unchanged name must not publish name:changed")
	}
}

func TestProfileService_Update_OtherUserLeavesSessionAlone(t *testing.T) {
	env := newTestEnv()
	svc := newProfileService(env)
	ctx := context.Background()

	env.sessions.Save(ctx, &domain.User{ID: "u1", FullName: "Alice Doe"})
	env.backend.updateProfile = func(id string, update ports.ProfileUpdate) (ports.RawProfile, error) {
		return rawProfile(id, "bob", update.FullName, "", nil), nil
	}

	events := 0
	s1 := env.events.Subscribe(domain.TopicNameChanged, func(any) { events++ })
	s2 := env.events.Subscribe(domain.TopicUserRefreshed, func(any) { events++ })
	defer env.events.Unsubscribe(s1)
	defer env.events.Unsubscribe(s2)

	if _, err := svc.Update(ctx, "u2", ports.ProfileUpdate{FullName: "Bob Renamed"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if events != 0 {
		t.Fatalf("editing another user must not publish session events")
	}
	if env.sessions.Current(ctx).FullName != "Alice Doe" {
		t.Fatalf("editing another user must not touch the session cache")
	}
}

func TestProfileService_Update_BackendFailure(t *testing.T) {
	env := newTestEnv()
	svc := newProfileService(env)
	ctx := context.Background()

	env.sessions.Save(ctx, &domain.User{ID: "u1", FullName: "Alice Doe"})
	env.backend.updateProfile = func(string, ports.ProfileUpdate) (ports.RawProfile, error) {
		return nil, domain.ErrBackendUnavailable
	}

	if _, err := svc.Update(ctx, "u1", ports.ProfileUpdate{FullName: "X"}); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected backend error surfaced, got %v", err)
	}
	if env.sessions.Current(ctx).FullName != "Alice Doe" {
		t.Fatalf("failed update must leave the cache untouched")
	}
	if logs, _ := env.audit.List(ctx); len(logs) != 0 {
		t.Fatalf("failed update must not append audit entries")
	}
}

// Cross-component propagation: a header subscribed for u1 picks up the new
// avatar, a widget rendering u2 ignores it.
func TestProfileService_SetAvatar_Propagation(t *testing.T) {
	env := newTestEnv()
	svc := newProfileService(env)
	ctx := context.Background()

	headerShown := ""
	otherShown := ""
	sub := env.events.Subscribe(domain.TopicAvatarChanged, func(p any) {
		change := p.(domain.AvatarChange)
		if change.UserID == "u1" {
			headerShown = change.DataURL
		}
		if change.UserID == "u2" {
			otherShown = change.DataURL
		}
	})
	defer env.events.Unsubscribe(sub)

	if err := svc.SetAvatar(ctx, "u1", "data:image/png;base64,AAA"); err != nil {
		t.Fatalf("set avatar failed: %v", err)
	}

	if headerShown != "data:image/png;base64,AAA" {
		t.Fatalf("subscriber for u1 did not observe the change")
	}
	if otherShown != "" {
		t.Fatalf("subscriber state for u2 changed unexpectedly")
	}
	if svc.Avatar(ctx, "u1") != "data:image/png;base64,AAA" {
		t.Fatalf("avatar not cached")
	}

	// Clearing broadcasts an empty reference and removes the record.
	if err := svc.SetAvatar(ctx, "u1", ""); err != nil {
		t.Fatalf("clear avatar failed: %v", err)
	}
	if headerShown != "" {
		t.Fatalf("subscriber did not observe the clear")
	}
	if svc.Avatar(ctx, "u1") != "" {
		t.Fatalf("avatar record not removed")
	}
}

func TestProfileService_SetAvatar_MissingID(t *testing.T) {
	svc := newProfileService(newTestEnv())
	if err := svc.SetAvatar(context.Background(), "", "data:x"); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
