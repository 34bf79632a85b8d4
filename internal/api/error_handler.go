package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adminboard/dashboard-core/internal/core/domain"
)

// errorResponse is the JSON envelope every API error renders as.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler maps the sentinel errors of the session core onto
// HTTP status codes. Anything unrecognized is logged with its real cause
// and answered with a generic 500 so internals never leak to the browser.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := statusFor(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func statusFor(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Bind failures and router 404s arrive as echo.HTTPError.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusBadGateway, "backend unavailable"
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable, "storage unavailable"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
