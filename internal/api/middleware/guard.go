package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/api/metrics"
	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/service"
)

// guardDenial is the response body for a denied navigation, carrying the
// destination the dashboard shell should redirect to.
type guardDenial struct {
	Error      string `json:"error"`
	RedirectTo string `json:"redirect_to"`
}

// Guard gates a route group on one capability by running a fresh route guard
// per request: each navigation attempt gets its own Loading → settled
// machine, exactly like a freshly mounted view.
func Guard(boot service.Bootstrapper, capability domain.Capability, deniedPath string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			guard := service.NewGuard(boot, capability, deniedPath, log)
			decision := guard.Resolve(c.Request().Context())

			metrics.GuardDecisionsTotal.
				WithLabelValues(string(capability), string(decision.State)).
				Inc()

			if decision.State != service.GuardAuthorized {
				return c.JSON(http.StatusForbidden, guardDenial{
					Error:      "forbidden",
					RedirectTo: decision.RedirectTo,
				})
			}
			return next(c)
		}
	}
}
