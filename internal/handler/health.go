package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/repository"
)

// Health returns the health-check handler used by load balancers and
// monitoring systems.  It answers 200 "ok" and records the probe time
// on the settings row; the write is best effort so a degraded
// database never turns the probe red on its own.
func Health(settings *repository.SettingsRepo) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := reqCtx(c)
		defer cancel()
		if err := settings.TouchLastHealthCheck(ctx, time.Now().UTC()); err != nil {
			c.Logger().Warnf("health: touch last_health_check failed: %v", err)
		}
		return c.String(http.StatusOK, "ok")
	}
}
