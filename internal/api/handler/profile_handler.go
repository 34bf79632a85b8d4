package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adminboard/dashboard-core/internal/api/metrics"
	"github.com/adminboard/dashboard-core/internal/api/middleware"
	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
	"github.com/adminboard/dashboard-core/internal/core/service"
)

// ProfileHandler exposes the profile edit flow and per-user avatar state.
type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type updateProfileRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	FullName string `json:"full_name,omitempty"`
}

// Update edits the session user's own profile.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Editable fields"
// @Success      200   {object}  domain.User
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	self := middleware.SessionUser(c)
	updated, err := h.profiles.Update(c.Request().Context(), self.ID, ports.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(string(domain.ActionProfileUpdated), "error").Inc()
		return err
	}

	metrics.MutationsTotal.WithLabelValues(string(domain.ActionProfileUpdated), "ok").Inc()
	return c.JSON(http.StatusOK, updated)
}

type setAvatarRequest struct {
	DataURL string `json:"data_url" validate:"required,startswith=data:"`
}

// SetAvatar stores the session user's avatar and notifies subscribers.
//
// @Summary      Set own avatar
// @Tags         profile
// @Accept       json
// @Success      204
// @Failure      422  {object}  map[string]string
// @Router       /profile/avatar [put]
func (h *ProfileHandler) SetAvatar(c echo.Context) error {
	var req setAvatarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	self := middleware.SessionUser(c)
	if err := h.profiles.SetAvatar(c.Request().Context(), self.ID, req.DataURL); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearAvatar removes the session user's avatar record.
//
// @Summary      Clear own avatar
// @Tags         profile
// @Success      204
// @Router       /profile/avatar [delete]
func (h *ProfileHandler) ClearAvatar(c echo.Context) error {
	self := middleware.SessionUser(c)
	if err := h.profiles.SetAvatar(c.Request().Context(), self.ID, ""); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type avatarResponse struct {
	UserID  string `json:"user_id"`
	DataURL string `json:"data_url,omitempty"`
}

// Avatar returns the cached avatar for any user id, for views rendering
// other users (roster rows, audit trail).
//
// @Summary      Avatar by user id
// @Tags         profile
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  avatarResponse
// @Router       /avatars/{id} [get]
func (h *ProfileHandler) Avatar(c echo.Context) error {
	id := c.Param("id")
	return c.JSON(http.StatusOK, avatarResponse{
		UserID:  id,
		DataURL: h.profiles.Avatar(c.Request().Context(), id),
	})
}
