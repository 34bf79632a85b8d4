package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/core/bus"
	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
	"github.com/adminboard/dashboard-core/internal/core/session"
)

// AuthService owns the login/logout flow and session bootstrap. It is the
// only writer of the session slot besides the profile and admin services.
type AuthService struct {
	backend  ports.Backend
	sessions *session.Store
	events   *bus.Bus
	log      zerolog.Logger
}

func NewAuthService(backend ports.Backend, sessions *session.Store, events *bus.Bus, log zerolog.Logger) *AuthService {
	return &AuthService{backend: backend, sessions: sessions, events: events, log: log}
}

// Login authenticates against the backend, caches the canonical profile and
// bearer token, and notifies mounted subscribers.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*domain.User, error) {
	if usernameOrEmail == "" || password == "" {
		return nil, fmt.Errorf("%w: missing credentials", domain.ErrInvalidPayload)
	}

	result, err := s.backend.Login(ctx, usernameOrEmail, password)
	if err != nil {
		return nil, err
	}

	user := domain.Normalize(result.Profile)
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("%w: login response carried no usable profile", domain.ErrInvalidPayload)
	}

	s.sessions.Save(ctx, user)
	s.sessions.SaveToken(ctx, result.Token)
	s.events.Publish(domain.TopicUserRefreshed, user.Clone())

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("session established")
	return user.Clone(), nil
}

// Logout destroys the cached session. Avatar records survive; views react by
// navigating to the login screen, so no notification is published.
func (s *AuthService) Logout(ctx context.Context) {
	s.sessions.Clear(ctx)
	s.log.Info().Msg("session cleared")
}

// Refresh re-fetches the session user's profile from the backend and updates
// the cache. Returns ErrUnauthenticated when no session exists.
func (s *AuthService) Refresh(ctx context.Context) (*domain.User, error) {
	current := s.sessions.Current(ctx)
	if current == nil {
		return nil, domain.ErrUnauthenticated
	}

	raw, err := s.backend.FetchProfile(ctx, current.ID)
	if err != nil {
		return nil, err
	}

	user := domain.Normalize(raw)
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("%w: profile response carried no usable profile", domain.ErrInvalidPayload)
	}

	s.sessions.Save(ctx, user)
	s.events.Publish(domain.TopicUserRefreshed, user.Clone())
	return user.Clone(), nil
}

// Bootstrap resolves the current user for a fresh navigation: the cached
// session when present, otherwise a profile fetch through the stored token.
// Returns nil when neither yields an authenticated user.
func (s *AuthService) Bootstrap(ctx context.Context) *domain.User {
	if u := s.sessions.Current(ctx); u != nil {
		return u
	}
	if s.sessions.Token(ctx) == "" {
		return nil
	}
	if s.TokenExpired(ctx) {
		s.log.Debug().Msg("stored token already expired, skipping bootstrap fetch")
		return nil
	}

	raw, err := s.backend.FetchSelf(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session bootstrap fetch failed")
		return nil
	}
	user := domain.Normalize(raw)
	if user == nil || user.ID == "" {
		return nil
	}

	s.sessions.Save(ctx, user)
	s.events.Publish(domain.TopicUserRefreshed, user.Clone())
	return user
}

// TokenExpired inspects the stored bearer token's exp claim without
// verifying the signature (the secret lives server-side). True means the
// token is certainly unusable: absent, or a readable JWT whose exp has
// passed. Opaque tokens and JWTs without exp report false, leaving the
// verdict to the backend.
func (s *AuthService) TokenExpired(ctx context.Context) bool {
	raw := s.sessions.Token(ctx)
	if raw == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(time.Now())
}
