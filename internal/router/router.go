// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/cache"
	"github.com/mentorhub/project-tracker/internal/config"
	"github.com/mentorhub/project-tracker/internal/handler"
	"github.com/mentorhub/project-tracker/internal/middleware"
	"github.com/mentorhub/project-tracker/internal/model"
	"github.com/mentorhub/project-tracker/internal/repository"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Projects  *handler.ProjectHandler
	Tasks     *handler.TaskHandler
	Sprints   *handler.SprintHandler
	Milestone *handler.MilestoneHandler
	Feedback  *handler.FeedbackHandler
	Settings  *handler.AdminSettingsHandler
	Backups   *handler.AdminBackupHandler
	Audit     *handler.AdminAuditHandler
}

// Deps collects the cross-cutting pieces middleware is built from.
type Deps struct {
	JWTSecret    string
	SettingsRepo *repository.SettingsRepo
	CacheStore   *cache.Store
	CacheCfg     config.CacheConfig
	RateLimit    echo.MiddlewareFunc // nil when disabled
}

// Register mounts all routes.
//
// Layout:
//
//	/healthz                public probe
//	/api/auth/*             register + login, rate limited
//	/api/*                  JWT + maintenance gate; reads cached
//	/api/admin/*            ADMIN only; never cached
func Register(e *echo.Echo, h Handlers, d Deps) {
	e.GET("/healthz", handler.Health(d.SettingsRepo))

	auth := e.Group("/api/auth")
	if d.RateLimit != nil {
		auth.Use(d.RateLimit)
	}
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	api := e.Group("/api")
	api.Use(middleware.JWTAuth(d.JWTSecret))
	api.Use(middleware.Maintenance(d.SettingsRepo))
	api.GET("/me", h.Auth.Me)

	// Resource routes share the response cache.  The middleware only
	// stores GETs and flushes everything on any mutation, so wrapping
	// the whole group is safe.
	cached := api.Group("")
	cached.Use(middleware.ResponseCache(d.CacheStore, d.CacheCfg))

	cached.POST("/projects", h.Projects.CreateProject)
	cached.GET("/projects", h.Projects.ListProjects)
	cached.GET("/projects/:id", h.Projects.GetProject)
	cached.PUT("/projects/:id", h.Projects.UpdateProject)
	cached.DELETE("/projects/:id", h.Projects.DeleteProject)
	cached.GET("/projects/:id/tasks", h.Tasks.ListTasks)
	cached.GET("/projects/:id/sprints", h.Sprints.ListSprints)
	cached.GET("/projects/:id/milestones", h.Milestone.ListMilestones)
	cached.GET("/projects/:id/feedback", h.Feedback.ListFeedback)

	cached.POST("/tasks", h.Tasks.CreateTask)
	cached.PUT("/tasks/:id", h.Tasks.UpdateTask)
	cached.POST("/tasks/:id/verify", h.Tasks.VerifyTask)
	cached.DELETE("/tasks/:id", h.Tasks.DeleteTask)

	cached.POST("/sprints", h.Sprints.CreateSprint)
	cached.GET("/sprints/:id", h.Sprints.GetSprint)
	cached.GET("/sprints/:id/burndown", h.Sprints.Burndown)

	cached.POST("/milestones", h.Milestone.CreateMilestone)
	cached.PUT("/milestones/:id", h.Milestone.UpdateMilestone)
	cached.DELETE("/milestones/:id", h.Milestone.DeleteMilestone)

	cached.POST("/feedback", h.Feedback.CreateFeedback)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	if d.RateLimit != nil {
		admin.Use(d.RateLimit)
	}
	admin.GET("/settings", h.Settings.GetSettings)
	admin.PUT("/settings", h.Settings.UpdateSettings)
	admin.POST("/backup/trigger", h.Backups.TriggerBackup)
	admin.GET("/backups", h.Backups.ListBackups)
	admin.GET("/backup/download/:filename", h.Backups.DownloadBackup)
	admin.DELETE("/backup/:filename", h.Backups.DeleteBackup)
	admin.POST("/backup/restore/:filename", h.Backups.RestoreBackup)
	admin.GET("/audit-logs", h.Audit.ListAuditLogs)
	admin.GET("/users", h.Audit.ListUsers)
}
