package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adminboard/dashboard-core/internal/api/metrics"
	"github.com/adminboard/dashboard-core/internal/core/domain"
	"github.com/adminboard/dashboard-core/internal/core/ports"
	"github.com/adminboard/dashboard-core/internal/core/service"
)

// AdminHandler exposes the user management surface: roster listing and
// the coordinated mutations (role, permissions, creation).
type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Roster loads the user list from the backend and returns the snapshot.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      502  {object}  map[string]string
// @Router       /users [get]
func (h *AdminHandler) Roster(c echo.Context) error {
	users, err := h.admin.LoadRoster(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=staff admin"`
}

// ChangeRole assigns a new role to the target user.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Param        id    path  string             true  "User id"
// @Param        body  body  changeRoleRequest  true  "New role"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /users/{id}/role [patch]
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	err := h.admin.ChangeRole(c.Request().Context(), c.Param("id"), domain.Role(req.Role))
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(string(domain.ActionRoleChanged), "error").Inc()
		return err
	}

	metrics.MutationsTotal.WithLabelValues(string(domain.ActionRoleChanged), "ok").Inc()
	return c.NoContent(http.StatusNoContent)
}

type togglePermissionRequest struct {
	Capability string `json:"capability" validate:"required,oneof=orders products users reports"`
}

// TogglePermission flips a single capability on the target user.
//
// @Summary      Toggle a user's permission
// @Tags         admin
// @Accept       json
// @Param        id    path  string                   true  "User id"
// @Param        body  body  togglePermissionRequest  true  "Capability to flip"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /users/{id}/permissions [patch]
func (h *AdminHandler) TogglePermission(c echo.Context) error {
	var req togglePermissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	err := h.admin.TogglePermission(c.Request().Context(), c.Param("id"), domain.Capability(req.Capability))
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(string(domain.ActionPermissionToggled), "error").Inc()
		return err
	}

	metrics.MutationsTotal.WithLabelValues(string(domain.ActionPermissionToggled), "ok").Inc()
	return c.NoContent(http.StatusNoContent)
}

type createUserRequest struct {
	Username string   `json:"username" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required"`
	FullName string   `json:"full_name"`
	Role     string   `json:"role" validate:"required,oneof=staff admin"`
	Grants   []string `json:"grants,omitempty"`
}

// CreateUser registers a new user through the backend and adds it to the
// roster snapshot.
//
// @Summary      Create a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  domain.User
// @Failure      422   {object}  map[string]string
// @Router       /users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	perms := make(domain.Permissions, len(req.Grants))
	for _, grant := range req.Grants {
		perms[domain.Capability(grant)] = true
	}

	created, err := h.admin.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Role:        domain.Role(req.Role),
		Permissions: perms,
	})
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(string(domain.ActionUserCreated), "error").Inc()
		return err
	}

	metrics.MutationsTotal.WithLabelValues(string(domain.ActionUserCreated), "ok").Inc()
	return c.JSON(http.StatusCreated, created)
}
