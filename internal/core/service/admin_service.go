package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/core/bus"
	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
	"github.com/adminboard/dashboard-core/internal/core/session"
)

// AdminService coordinates remote role/permission mutations for the user
// management page. Every mutation follows the same shape: local roster
// lookup, backend call, and only on success the local roster update plus one
// audit entry. Failures leave the roster exactly as it was; there is no
// optimistic update and therefore nothing to roll back.
type AdminService struct {
	backend  ports.Backend
	sessions *session.Store
	audit    ports.AuditLog
	events   *bus.Bus
	log      zerolog.Logger

	mu     sync.Mutex
	roster map[string]*domain.User
	order  []string
}

func NewAdminService(backend ports.Backend, sessions *session.Store, audit ports.AuditLog, events *bus.Bus, log zerolog.Logger) *AdminService {
	return &AdminService{
		backend:  backend,
		sessions: sessions,
		audit:    audit,
		events:   events,
		log:      log,
		roster:   make(map[string]*domain.User),
	}
}

// LoadRoster replaces the local roster snapshot with the backend's current
// user list and returns it.
func (s *AdminService) LoadRoster(ctx context.Context) ([]*domain.User, error) {
	raws, err := s.backend.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.roster = make(map[string]*domain.User, len(raws))
	s.order = s.order[:0]
	for _, raw := range raws {
		u := domain.Normalize(raw)
		if u == nil || u.ID == "" {
			continue
		}
		s.roster[u.ID] = u
		s.order = append(s.order, u.ID)
	}
	s.mu.Unlock()

	return s.Roster(), nil
}

// Roster returns independent copies of the snapshot in listing order.
func (s *AdminService) Roster() []*domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.roster[id].Clone())
	}
	return out
}

// ChangeRole assigns newRole to the target user. The roster entry and the
// audit trail change only after the backend accepted the mutation. When the
// target is the session user, the cached session follows and subscribers are
// notified; for anyone else no event is published.
func (s *AdminService) ChangeRole(ctx context.Context, userID string, newRole domain.Role) error {
	if !domain.ValidRole(newRole) {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidPayload, newRole)
	}

	target := s.lookup(userID)
	if target == nil {
		return domain.ErrUserNotFound
	}

	if err := s.backend.ChangeRole(ctx, userID, newRole); err != nil {
		return err
	}

	// A roster reload may have raced the backend call and dropped the
	// target; the reload wins and the snapshot write is skipped.
	s.mu.Lock()
	if u, ok := s.roster[userID]; ok {
		u.Role = newRole
	}
	s.mu.Unlock()

	s.appendAudit(ctx, domain.AuditLogEntry{
		ID:           newEntryID(),
		Action:       domain.ActionRoleChanged,
		Detail:       fmt.Sprintf("role of %s set to %s", displayName(target), newRole),
		When:         time.Now().UTC(),
		TargetUserID: userID,
	})

	s.syncSessionUser(ctx, userID, func(u *domain.User) {
		u.Role = newRole
	})
	return nil
}

// TogglePermission flips one capability for the target user, pushing the
// full resulting permission map to the backend first.
func (s *AdminService) TogglePermission(ctx context.Context, userID string, cap domain.Capability) error {
	if !domain.ValidCapability(cap) {
		return fmt.Errorf("%w: unknown capability %q", domain.ErrInvalidPayload, cap)
	}

	target := s.lookup(userID)
	if target == nil {
		return domain.ErrUserNotFound
	}

	next := target.Clone()
	if next.Permissions == nil {
		next.Permissions = domain.Permissions{}
	}
	granted := !next.Permissions[cap]
	next.Permissions[cap] = granted

	if err := s.backend.ChangePermissions(ctx, userID, next.Permissions); err != nil {
		return err
	}

	s.mu.Lock()
	if u, ok := s.roster[userID]; ok {
		u.Permissions = next.Permissions
	}
	s.mu.Unlock()

	verb := "revoked"
	if granted {
		verb = "granted"
	}
	s.appendAudit(ctx, domain.AuditLogEntry{
		ID:           newEntryID(),
		Action:       domain.ActionPermissionToggled,
		Detail:       fmt.Sprintf("%s %s for %s", cap, verb, displayName(target)),
		When:         time.Now().UTC(),
		TargetUserID: userID,
	})

	if s.syncSessionUser(ctx, userID, func(u *domain.User) {
		if u.Permissions == nil {
			u.Permissions = domain.Permissions{}
		}
		u.Permissions[cap] = granted
	}) {
		s.events.Publish(domain.TopicPermissionChanged, domain.PermissionChange{
			UserID:     userID,
			Capability: cap,
			Granted:    granted,
		})
	}
	return nil
}

// CreateUser provisions a new dashboard user through the backend and appends
// it to the roster snapshot.
func (s *AdminService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidPayload)
	}
	if !domain.ValidRole(input.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidPayload, input.Role)
	}

	raw, err := s.backend.CreateUser(ctx, input)
	if err != nil {
		return nil, err
	}

	created := domain.Normalize(raw)
	if created == nil || created.ID == "" {
		return nil, fmt.Errorf("%w: create response carried no usable profile", domain.ErrInvalidPayload)
	}

	s.mu.Lock()
	if _, exists := s.roster[created.ID]; !exists {
		s.order = append(s.order, created.ID)
	}
	s.roster[created.ID] = created
	s.mu.Unlock()

	s.appendAudit(ctx, domain.AuditLogEntry{
		ID:           newEntryID(),
		Action:       domain.ActionUserCreated,
		Detail:       fmt.Sprintf("user %s created with role %s", displayName(created), created.Role),
		When:         time.Now().UTC(),
		TargetUserID: created.ID,
	})

	return created.Clone(), nil
}

// Logs returns the audit trail, newest first.
func (s *AdminService) Logs(ctx context.Context) ([]domain.AuditLogEntry, error) {
	return s.audit.List(ctx)
}

// ClearLogs wipes the audit trail. This is the only path that removes
// entries.
func (s *AdminService) ClearLogs(ctx context.Context) error {
	return s.audit.Clear(ctx)
}

func (s *AdminService) lookup(userID string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.roster[userID]; ok {
		return u.Clone()
	}
	return nil
}

// syncSessionUser applies mutate to the cached session user when it is the
// mutation target, reporting whether it was. Changes to other users stay
// roster-local.
func (s *AdminService) syncSessionUser(ctx context.Context, userID string, mutate func(*domain.User)) bool {
	current := s.sessions.Current(ctx)
	if current == nil || current.ID != userID {
		return false
	}
	mutate(current)
	s.sessions.Save(ctx, current)
	s.events.Publish(domain.TopicUserRefreshed, current.Clone())
	return true
}

func (s *AdminService) appendAudit(ctx context.Context, entry domain.AuditLogEntry) {
	if err := s.audit.Prepend(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("audit append failed")
	}
}

// newEntryID produces a short random identifier for audit entries.
func newEntryID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%x", buf)
}
