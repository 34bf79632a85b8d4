package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adminboard/dashboard-core/internal/api/metrics"
	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/service"
	"github.com/adminboard/dashboard-core/internal/core/session"
)

// SessionHandler exposes login, logout and the current-session read.
type SessionHandler struct {
	auth     *service.AuthService
	sessions *session.Store
}

func NewSessionHandler(auth *service.AuthService, sessions *session.Store) *SessionHandler {
	return &SessionHandler{auth: auth, sessions: sessions}
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User   *domain.User `json:"user,omitempty"`
	Avatar string       `json:"avatar,omitempty"`
}

// Login authenticates against the backend and establishes the session.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /session [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.auth.Login(c.Request().Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		return err
	}

	metrics.SessionsTotal.WithLabelValues("login").Inc()
	return c.JSON(http.StatusOK, sessionResponse{
		User:   user,
		Avatar: h.sessions.Avatar(c.Request().Context(), user.ID),
	})
}

// Logout destroys the cached session.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Router       /session [delete]
func (h *SessionHandler) Logout(c echo.Context) error {
	h.auth.Logout(c.Request().Context())
	metrics.SessionsTotal.WithLabelValues("logout").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Current returns the cached session user, bootstrapping through the stored
// token when the slot is cold.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	ctx := c.Request().Context()

	user := h.auth.Bootstrap(ctx)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}

	metrics.SessionsTotal.WithLabelValues("bootstrap").Inc()
	return c.JSON(http.StatusOK, sessionResponse{
		User:   user,
		Avatar: h.sessions.Avatar(ctx, user.ID),
	})
}

// Refresh re-fetches the session user's profile from the backend.
//
// @Summary      Refresh session profile
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /session/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	user, err := h.auth.Refresh(c.Request().Context())
	if err != nil {
		return err
	}

	metrics.SessionsTotal.WithLabelValues("refresh").Inc()
	return c.JSON(http.StatusOK, sessionResponse{
		User:   user,
		Avatar: h.sessions.Avatar(c.Request().Context(), user.ID),
	})
}
