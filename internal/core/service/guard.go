package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/core/bus"
	"github.com/adminboard/dashboard-core/internal/core/domain"
)

// GuardState is the lifecycle state of one mounted route guard.
type GuardState string

const (
	GuardLoading    GuardState = "loading"
	GuardAuthorized GuardState = "authorized"
	GuardDenied     GuardState = "denied"
)

// guardTransitions defines the allowed state machine moves. Denied is
// terminal; Authorized can only fall to Denied through a watched revocation.
var guardTransitions = map[GuardState][]GuardState{
	GuardLoading:    {GuardAuthorized, GuardDenied},
	GuardAuthorized: {GuardDenied},
}

// Decision is the guard's answer for one navigation attempt. RedirectTo is
// set only when denied.
type Decision struct {
	State      GuardState
	RedirectTo string
}

// Bootstrapper resolves the current user for a fresh navigation, fetching
// the profile when the cache is cold. Nil means unauthenticated.
type Bootstrapper interface {
	Bootstrap(ctx context.Context) *domain.User
}

// Guard decides whether one protected view may render. A guard value covers
// a single navigation attempt: it starts in Loading, settles in Authorized
// or Denied, and is never reset; re-entering the route means constructing a
// fresh guard.
type Guard struct {
	capability domain.Capability
	boot       Bootstrapper
	deniedPath string
	log        zerolog.Logger

	mu    sync.Mutex
	state GuardState
	subs  []*bus.Subscription
}

// NewGuard builds a guard for one protected capability. deniedPath is the
// unauthorized destination surfaced with a Denied decision.
func NewGuard(boot Bootstrapper, capability domain.Capability, deniedPath string, log zerolog.Logger) *Guard {
	return &Guard{
		capability: capability,
		boot:       boot,
		deniedPath: deniedPath,
		log:        log,
		state:      GuardLoading,
	}
}

// State returns the guard's current state.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Resolve drives the machine out of Loading: it bootstraps the session and
// gates on the required capability. Once settled, later calls return the
// settled decision without re-running the predicate.
func (g *Guard) Resolve(ctx context.Context) Decision {
	g.mu.Lock()
	if g.state != GuardLoading {
		defer g.mu.Unlock()
		return g.decisionLocked()
	}
	g.mu.Unlock()

	// The bootstrap may suspend on a profile fetch; no lock across it.
	user := g.boot.Bootstrap(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GuardLoading {
		if user.Allows(g.capability) {
			g.transitionLocked(GuardAuthorized)
		} else {
			g.transitionLocked(GuardDenied)
		}
	}
	return g.decisionLocked()
}

// WatchRevocations subscribes the guard to session-user change topics so an
// admin revoking the capability mid-session flips an Authorized guard to
// Denied. Callers release the subscriptions with Unwatch when unmounting.
func (g *Guard) WatchRevocations(events *bus.Bus) {
	refreshed := events.Subscribe(domain.TopicUserRefreshed, func(payload any) {
		user, ok := payload.(*domain.User)
		if !ok {
			return
		}
		if !user.Allows(g.capability) {
			g.revoke()
		}
	})
	toggled := events.Subscribe(domain.TopicPermissionChanged, func(payload any) {
		change, ok := payload.(domain.PermissionChange)
		if !ok {
			return
		}
		if change.Capability == g.capability && !change.Granted {
			g.revoke()
		}
	})

	g.mu.Lock()
	g.subs = append(g.subs, refreshed, toggled)
	g.mu.Unlock()
}

// Unwatch removes any revocation subscriptions registered on events.
func (g *Guard) Unwatch(events *bus.Bus) {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for _, sub := range subs {
		events.Unsubscribe(sub)
	}
}

func (g *Guard) revoke() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GuardAuthorized {
		g.transitionLocked(GuardDenied)
		g.log.Info().Str("capability", string(g.capability)).Msg("authorization revoked mid-session")
	}
}

func (g *Guard) transitionLocked(next GuardState) {
	for _, allowed := range guardTransitions[g.state] {
		if next == allowed {
			g.state = next
			return
		}
	}
	g.log.Error().
		Str("from", string(g.state)).
		Str("to", string(next)).
		Msg("illegal guard transition ignored")
}

func (g *Guard) decisionLocked() Decision {
	d := Decision{State: g.state}
	if g.state == GuardDenied {
		d.RedirectTo = g.deniedPath
	}
	return d
}
