package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/model"
	"github.com/mentorhub/project-tracker/internal/repository"
)

// Maintenance blocks non-admin traffic with 503 while the
// maintenance_mode setting is on, so admins can still reach the
// console to turn it back off.  A failed settings read fails open:
// maintenance mode is a convenience, not a security boundary.
func Maintenance(settings *repository.SettingsRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			s, err := settings.Get(ctx)
			if err != nil || !s.MaintenanceMode {
				return next(c)
			}
			if role, _ := c.Get("role").(string); role == model.RoleAdmin {
				return next(c)
			}
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "maintenance mode"})
		}
	}
}
