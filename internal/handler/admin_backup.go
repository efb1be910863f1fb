package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/backup"
	"github.com/mentorhub/project-tracker/internal/model"
	"github.com/mentorhub/project-tracker/internal/queue"
	"github.com/mentorhub/project-tracker/internal/repository"
	queuepublisher "github.com/mentorhub/project-tracker/internal/service"
)

// AdminBackupHandler exposes the backup engine over the admin API.
type AdminBackupHandler struct {
	Engine   *backup.Engine
	Settings *repository.SettingsRepo
	AMQPURL  string
}

func NewAdminBackupHandler(e *backup.Engine, s *repository.SettingsRepo, amqpURL string) *AdminBackupHandler {
	return &AdminBackupHandler{Engine: e, Settings: s, AMQPURL: amqpURL}
}

// TriggerBackup handles POST /api/admin/backup/trigger.  Refused with
// 503 while the backupService toggle is off.  The archive is written
// synchronously; callers should expect this request to take a while
// on large databases.
func (h *AdminBackupHandler) TriggerBackup(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if on, err := h.Settings.IsEnabled(ctx, model.ServiceBackup); err == nil && !on {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "backup service disabled"})
	}

	res, err := h.Engine.CreateBackup(c.Request().Context(), backup.KindManual)
	if err != nil {
		c.Logger().Errorf("backup: manual run failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "backup failed"})
	}

	if err := h.Settings.TouchLastBackup(ctx, time.Now().UTC()); err != nil {
		c.Logger().Warnf("backup: touch last_backup_time failed: %v", err)
	}
	if on, err := h.Settings.IsEnabled(ctx, model.ServiceNotifications); err == nil && on {
		publishBackupCompleted(h.AMQPURL, res, backup.KindManual)
	}
	return c.JSON(http.StatusCreated, res)
}

// ListBackups handles GET /api/admin/backups.
func (h *AdminBackupHandler) ListBackups(c echo.Context) error {
	items, err := h.Engine.ListBackups()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DownloadBackup handles GET /api/admin/backup/download/:filename.
func (h *AdminBackupHandler) DownloadBackup(c echo.Context) error {
	name := c.Param("filename")
	path, err := h.Engine.Path(name)
	if err != nil {
		return backupError(c, err)
	}
	return c.Attachment(path, name)
}

// DeleteBackup handles DELETE /api/admin/backup/:filename.
func (h *AdminBackupHandler) DeleteBackup(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Engine.DeleteBackup(ctx, c.Param("filename")); err != nil {
		return backupError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RestoreBackup handles POST /api/admin/backup/restore/:filename.
// Restore is deliberately not implemented; the endpoint exists so
// clients get an explicit 501 instead of a routing 404.
func (h *AdminBackupHandler) RestoreBackup(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	return backupError(c, h.Engine.RestoreBackup(ctx, c.Param("filename")))
}

// backupError maps backup engine sentinels onto HTTP status codes.
func backupError(c echo.Context, err error) error {
	switch err {
	case backup.ErrInvalidFilename:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid filename"})
	case backup.ErrBackupNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "backup not found"})
	case backup.ErrRestoreUnsupported:
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "restore not supported"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "backup operation failed"})
	}
}

// publishBackupCompleted fires the backup.completed event without
// blocking the request.
func publishBackupCompleted(url string, res backup.Result, kind string) {
	ev := queue.BackupCompletedEvent{
		Filename:    res.Filename,
		SizeBytes:   res.Size,
		Kind:        kind,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queuepublisher.PublishBackupCompleted(ctx, url, ev)
	}()
}
