package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/repository"
)

// AdminAuditHandler serves the read side of the audit log.  The log
// itself is append-only; there is no mutation surface here.
type AdminAuditHandler struct {
	Audit *repository.AuditLogRepo
	Users *repository.UserRepo
}

func NewAdminAuditHandler(a *repository.AuditLogRepo, u *repository.UserRepo) *AdminAuditHandler {
	return &AdminAuditHandler{Audit: a, Users: u}
}

// ListAuditLogs handles GET /api/admin/audit-logs.  The optional
// limit query parameter is clamped by the repository.
func (h *AdminAuditHandler) ListAuditLogs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Audit.ListRecent(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListUsers handles GET /api/admin/users.
func (h *AdminAuditHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
