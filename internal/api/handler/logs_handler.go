package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adminboard/dashboard-core/internal/core/service"
)

// LogsHandler exposes the audit trail written by the mutation coordinator.
type LogsHandler struct {
	admin *service.AdminService
}

func NewLogsHandler(admin *service.AdminService) *LogsHandler {
	return &LogsHandler{admin: admin}
}

// List returns audit entries newest first.
//
// @Summary      Audit log
// @Tags         logs
// @Produce      json
// @Success      200  {array}   domain.AuditLogEntry
// @Failure      503  {object}  map[string]string
// @Router       /logs [get]
func (h *LogsHandler) List(c echo.Context) error {
	entries, err := h.admin.Logs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// Clear empties the audit trail.
//
// @Summary      Clear audit log
// @Tags         logs
// @Success      204
// @Failure      503  {object}  map[string]string
// @Router       /logs [delete]
func (h *LogsHandler) Clear(c echo.Context) error {
	if err := h.admin.ClearLogs(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
