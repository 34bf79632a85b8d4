package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/core/bus"
	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
	"github.com/adminboard/dashboard-core/internal/core/session"
)

// ProfileService handles the profile edit flow and per-user avatar state.
// Local caches change only after the backend accepted the edit.
type ProfileService struct {
	backend  ports.Backend
	sessions *session.Store
	audit    ports.AuditLog
	events   *bus.Bus
	log      zerolog.Logger
}

func NewProfileService(backend ports.Backend, sessions *session.Store, audit ports.AuditLog, events *bus.Bus, log zerolog.Logger) *ProfileService {
	return &ProfileService{backend: backend, sessions: sessions, audit: audit, events: events, log: log}
}

// Update sends the profile edit to the backend and, on success, refreshes
// the session cache when the edited user is the session user. Subscribers
// learn about display-name changes through name:changed.
func (s *ProfileService) Update(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", domain.ErrInvalidPayload)
	}

	raw, err := s.backend.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	updated := domain.Normalize(raw)
	if updated == nil || updated.ID == "" {
		return nil, fmt.Errorf("%w: update response carried no usable profile", domain.ErrInvalidPayload)
	}

	prior := s.sessions.Current(ctx)
	if prior != nil && prior.ID == updated.ID {
		s.sessions.Save(ctx, updated)
		if prior.FullName != updated.FullName {
			s.events.Publish(domain.TopicNameChanged, domain.NameChange{
				UserID:   updated.ID,
				FullName: updated.FullName,
			})
		}
		s.events.Publish(domain.TopicUserRefreshed, updated.Clone())
	}

	s.appendAudit(ctx, domain.AuditLogEntry{
		ID:           newEntryID(),
		Action:       domain.ActionProfileUpdated,
		Detail:       fmt.Sprintf("profile of %s updated", displayName(updated)),
		When:         time.Now().UTC(),
		TargetUserID: updated.ID,
	})

	return updated.Clone(), nil
}

// SetAvatar stores the avatar reference for userID and broadcasts the
// change. An empty dataURL clears the record.
func (s *ProfileService) SetAvatar(ctx context.Context, userID, dataURL string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user id", domain.ErrInvalidPayload)
	}

	s.sessions.SetAvatar(ctx, userID, dataURL)
	s.events.Publish(domain.TopicAvatarChanged, domain.AvatarChange{
		UserID:  userID,
		DataURL: dataURL,
	})
	return nil
}

// Avatar returns the cached avatar reference for userID, or "".
func (s *ProfileService) Avatar(ctx context.Context, userID string) string {
	return s.sessions.Avatar(ctx, userID)
}

func (s *ProfileService) appendAudit(ctx context.Context, entry domain.AuditLogEntry) {
	if err := s.audit.Prepend(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("audit append failed")
	}
}

func displayName(u *domain.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}
