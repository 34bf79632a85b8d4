package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/session"
)

// ctxUserKey is the echo context key holding the resolved session user.
const ctxUserKey = "session_user"

// RequireSession rejects requests without a cached session and injects the
// session user into the request context for downstream handlers.
func RequireSession(sessions *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := sessions.Current(c.Request().Context())
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
			}
			c.Set(ctxUserKey, user)
			return next(c)
		}
	}
}

// SessionUser returns the user injected by RequireSession, or nil.
func SessionUser(c echo.Context) *domain.User {
	user, _ := c.Get(ctxUserKey).(*domain.User)
	return user
}
