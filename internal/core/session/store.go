// Package session holds the single-slot persisted cache of the current
// dashboard user plus the per-user avatar cache. Both live behind one
// namespaced store; nothing else in the codebase touches raw storage keys.
package session

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
)

// Storage key layout. keyUser and keyToken are session-scoped and removed by
// Clear; avatar keys are keyed per user id and deliberately survive it.
const (
	keyUser        = "user"
	keyToken       = "token"
	avatarKeyspace = "avatar:"
)

// Store is the persisted session cache. Exactly one session user exists at a
// time; Save overwrites, never merges. Storage failures are swallowed: reads
// degrade to zero values, writes to no-ops, each logged at warn.
type Store struct {
	kv  ports.KeyValue
	log zerolog.Logger
}

func NewStore(kv ports.KeyValue, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Save persists u as the sole session record, replacing any prior one.
// Saving nil is a no-op; use Clear to end a session.
func (s *Store) Save(ctx context.Context, u *domain.User) {
	if u == nil {
		return
	}
	raw, err := json.Marshal(u)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: encode user failed")
		return
	}
	if err := s.kv.Set(ctx, keyUser, string(raw)); err != nil {
		s.log.Warn().Err(err).Msg("session: persist user failed")
	}
}

// Current returns a copy of the last-saved session user, or nil when no
// session exists or the stored record cannot be read.
func (s *Store) Current(ctx context.Context) *domain.User {
	raw, err := s.kv.Get(ctx, keyUser)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: read user failed")
		return nil
	}
	if raw == "" {
		return nil
	}

	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn().Err(err).Msg("session: decode user failed")
		return nil
	}
	return &u
}

// SaveToken persists the backend bearer token alongside the session user.
func (s *Store) SaveToken(ctx context.Context, token string) {
	if err := s.kv.Set(ctx, keyToken, token); err != nil {
		s.log.Warn().Err(err).Msg("session: persist token failed")
	}
}

// Token returns the stored bearer token, or "" when absent or unreadable.
func (s *Store) Token(ctx context.Context) string {
	token, err := s.kv.Get(ctx, keyToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: read token failed")
		return ""
	}
	return token
}

// Clear removes the session record and its derived token. Avatar entries are
// keyed per user id and are never touched here, whatever user they belong to.
func (s *Store) Clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, keyUser, keyToken); err != nil {
		s.log.Warn().Err(err).Msg("session: clear failed")
	}
}

// SetAvatar stores an image-data reference for userID. Entries for distinct
// ids never share a slot.
func (s *Store) SetAvatar(ctx context.Context, userID, dataURL string) {
	if userID == "" {
		return
	}
	if dataURL == "" {
		s.ClearAvatar(ctx, userID)
		return
	}
	if err := s.kv.Set(ctx, avatarKeyspace+userID, dataURL); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("session: persist avatar failed")
	}
}

// Avatar returns the stored image-data reference for userID, or "".
func (s *Store) Avatar(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	dataURL, err := s.kv.Get(ctx, avatarKeyspace+userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("session: read avatar failed")
		return ""
	}
	return dataURL
}

// ClearAvatar removes the avatar entry for userID.
func (s *Store) ClearAvatar(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if err := s.kv.Delete(ctx, avatarKeyspace+userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("session: clear avatar failed")
	}
}
