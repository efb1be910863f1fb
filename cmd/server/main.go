package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/backup"
	"github.com/mentorhub/project-tracker/internal/cache"
	"github.com/mentorhub/project-tracker/internal/config"
	"github.com/mentorhub/project-tracker/internal/database"
	"github.com/mentorhub/project-tracker/internal/handler"
	"github.com/mentorhub/project-tracker/internal/middleware"
	"github.com/mentorhub/project-tracker/internal/model"
	"github.com/mentorhub/project-tracker/internal/queue"
	"github.com/mentorhub/project-tracker/internal/repository"
	"github.com/mentorhub/project-tracker/internal/router"
	queuepublisher "github.com/mentorhub/project-tracker/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	projects := repository.NewProjectRepo(db)
	sprints := repository.NewSprintRepo(db)
	tasks := repository.NewTaskRepo(db)
	milestones := repository.NewMilestoneRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	settings := repository.NewSettingsRepo(db)
	audit := repository.NewAuditLogRepo(db)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	s, err := settings.Get(bootCtx)
	cancelBoot()
	if err != nil {
		log.Fatalf("settings: %v", err)
	}
	if s.CacheTTLSeconds > 0 {
		cacheCfg.DefaultTTL = time.Duration(s.CacheTTLSeconds) * time.Second
	}

	store := cache.New(s.ServiceEnabled(model.ServiceCache))

	engine := backup.New(backup.Config{
		Dir:         cfg.BackupDir,
		UploadsDir:  cfg.UploadsDir,
		DumpCommand: cfg.DumpCommand,
		DumpArgs:    dumpArgs(cfg),
		DumpTimeout: cfg.DumpTimeout,
	}, exporters(users, projects, sprints, tasks, milestones, feedback, audit), audit)

	scheduler := backup.NewScheduler(s.BackupFrequency, func(ctx context.Context) {
		runScheduledBackup(ctx, engine, settings, cfg.AMQPURL)
	})
	schedCtx, stopSched := context.WithCancel(context.Background())
	defer stopSched()
	scheduler.Start(schedCtx)
	defer scheduler.Stop()

	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartNotificationConsumer(cfg.AMQPURL); err != nil {
				log.Printf("notification consumer stopped: %v", err)
			}
		}()
	}

	var rateLimit echo.MiddlewareFunc
	if rlCfg.Enabled {
		if rdb := config.NewRedisClient(); rdb != nil {
			rateLimit = middleware.NewTokenBucket(rlCfg, rdb)
		} else {
			log.Printf("redis unreachable, rate limiting disabled")
		}
	}

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, settings),
		Projects:  handler.NewProjectHandler(projects),
		Tasks:     handler.NewTaskHandler(tasks, projects, settings, cfg.AMQPURL),
		Sprints:   handler.NewSprintHandler(sprints, projects, tasks),
		Milestone: handler.NewMilestoneHandler(milestones, projects),
		Feedback:  handler.NewFeedbackHandler(feedback, projects),
		Settings:  handler.NewAdminSettingsHandler(settings, audit, store, scheduler),
		Backups:   handler.NewAdminBackupHandler(engine, settings, cfg.AMQPURL),
		Audit:     handler.NewAdminAuditHandler(audit, users),
	}, router.Deps{
		JWTSecret:    cfg.JWTSecret,
		SettingsRepo: settings,
		CacheStore:   store,
		CacheCfg:     cacheCfg,
		RateLimit:    rateLimit,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// dumpArgs builds the mysqldump connection arguments from the same
// credentials the server itself connects with.
func dumpArgs(cfg config.Config) []string {
	args := []string{
		"--host=" + cfg.DBHost,
		"--port=" + cfg.DBPort,
		"--user=" + cfg.DBUser,
		"--single-transaction",
	}
	if cfg.DBPass != "" {
		args = append(args, "--password="+cfg.DBPass)
	}
	return append(args, cfg.DBName)
}

// exporters enumerates the collections covered by the JSON fallback
// export.  The set is closed: a new table only ends up in fallback
// backups once it is added here.
func exporters(
	users *repository.UserRepo,
	projects *repository.ProjectRepo,
	sprints *repository.SprintRepo,
	tasks *repository.TaskRepo,
	milestones *repository.MilestoneRepo,
	feedback *repository.FeedbackRepo,
	audit *repository.AuditLogRepo,
) []backup.CollectionExporter {
	return []backup.CollectionExporter{
		backup.ExporterFunc("users", func(ctx context.Context) (any, error) { return users.ListAll(ctx) }),
		backup.ExporterFunc("projects", func(ctx context.Context) (any, error) { return projects.ListAll(ctx) }),
		backup.ExporterFunc("sprints", func(ctx context.Context) (any, error) { return sprints.ListAll(ctx) }),
		backup.ExporterFunc("tasks", func(ctx context.Context) (any, error) { return tasks.ListAll(ctx) }),
		backup.ExporterFunc("milestones", func(ctx context.Context) (any, error) { return milestones.ListAll(ctx) }),
		backup.ExporterFunc("feedback", func(ctx context.Context) (any, error) { return feedback.ListAll(ctx) }),
		backup.ExporterFunc("audit_logs", func(ctx context.Context) (any, error) { return audit.ListAll(ctx) }),
	}
}

// runScheduledBackup is the scheduler's work function.  It re-reads
// the backupService toggle on every slot so flipping it off stops
// scheduled runs without touching the scheduler itself.
func runScheduledBackup(ctx context.Context, engine *backup.Engine, settings *repository.SettingsRepo, amqpURL string) {
	on, err := settings.IsEnabled(ctx, model.ServiceBackup)
	if err != nil {
		log.Printf("scheduled backup: settings read failed: %v", err)
		return
	}
	if !on {
		return
	}
	res, err := engine.CreateBackup(ctx, backup.KindScheduled)
	if err != nil {
		log.Printf("scheduled backup failed: %v", err)
		return
	}
	if err := settings.TouchLastBackup(ctx, time.Now().UTC()); err != nil {
		log.Printf("scheduled backup: touch last_backup_time failed: %v", err)
	}
	log.Printf("scheduled backup written: %s (%d bytes)", res.Filename, res.Size)
	if on, err := settings.IsEnabled(ctx, model.ServiceNotifications); err == nil && on {
		ev := queue.BackupCompletedEvent{
			Filename:    res.Filename,
			SizeBytes:   res.Size,
			Kind:        backup.KindScheduled,
			CompletedAt: time.Now().UTC().Format(time.RFC3339),
		}
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queuepublisher.PublishBackupCompleted(pubCtx, amqpURL, ev)
	}
}
