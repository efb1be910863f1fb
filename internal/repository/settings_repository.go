package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mentorhub/project-tracker/internal/model"
)

// SettingsRepo manages the singleton settings row (id = 1).  The row
// is created lazily with defaults on the first read so that a fresh
// database behaves as if every service were enabled.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo constructs a SettingsRepo with the given DB handle.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

const settingsCols = `svc_api_server, svc_database, svc_email, svc_github, svc_file_storage,
	svc_notifications, svc_cache, svc_backup, backup_frequency, maintenance_mode,
	allow_registration, cache_ttl_seconds, last_backup_time, last_health_check, updated_at`

// Get returns the settings row, inserting the defaults first if no
// row exists yet.
func (r *SettingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	s, err := r.fetch(ctx)
	if err == nil {
		return s, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	// Lazy create.  INSERT IGNORE keeps a concurrent first read from
	// failing on the primary key.
	def := model.DefaultSettings()
	const q = `INSERT IGNORE INTO settings (id, svc_api_server, svc_database, svc_email, svc_github,
		svc_file_storage, svc_notifications, svc_cache, svc_backup, backup_frequency,
		maintenance_mode, allow_registration, cache_ttl_seconds)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		def.Services[model.ServiceAPIServer], def.Services[model.ServiceDatabase],
		def.Services[model.ServiceEmail], def.Services[model.ServiceGitHub],
		def.Services[model.ServiceFileStorage], def.Services[model.ServiceNotifications],
		def.Services[model.ServiceCache], def.Services[model.ServiceBackup],
		def.BackupFrequency, def.MaintenanceMode, def.AllowRegistration, def.CacheTTLSeconds)
	if err != nil {
		return nil, err
	}
	return r.fetch(ctx)
}

func (r *SettingsRepo) fetch(ctx context.Context) (*model.Settings, error) {
	var (
		s                                              model.Settings
		apiSrv, db, email, github, files, notif, cache, backup bool
	)
	s.Services = make(map[string]bool, len(model.ServiceNames))
	err := r.db.QueryRowContext(ctx, `SELECT `+settingsCols+` FROM settings WHERE id = 1`).Scan(
		&apiSrv, &db, &email, &github, &files, &notif, &cache, &backup,
		&s.BackupFrequency, &s.MaintenanceMode, &s.AllowRegistration, &s.CacheTTLSeconds,
		&s.LastBackupTime, &s.LastHealthCheck, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Services[model.ServiceAPIServer] = apiSrv
	s.Services[model.ServiceDatabase] = db
	s.Services[model.ServiceEmail] = email
	s.Services[model.ServiceGitHub] = github
	s.Services[model.ServiceFileStorage] = files
	s.Services[model.ServiceNotifications] = notif
	s.Services[model.ServiceCache] = cache
	s.Services[model.ServiceBackup] = backup
	return &s, nil
}

// Save writes the full settings state back to the singleton row.
// Concurrent admin saves are last-write-wins; the settings document
// has no optimistic concurrency check.
func (r *SettingsRepo) Save(ctx context.Context, s *model.Settings) error {
	const q = `UPDATE settings SET svc_api_server = ?, svc_database = ?, svc_email = ?,
		svc_github = ?, svc_file_storage = ?, svc_notifications = ?, svc_cache = ?,
		svc_backup = ?, backup_frequency = ?, maintenance_mode = ?, allow_registration = ?,
		cache_ttl_seconds = ? WHERE id = 1`
	_, err := r.db.ExecContext(ctx, q,
		s.ServiceEnabled(model.ServiceAPIServer), s.ServiceEnabled(model.ServiceDatabase),
		s.ServiceEnabled(model.ServiceEmail), s.ServiceEnabled(model.ServiceGitHub),
		s.ServiceEnabled(model.ServiceFileStorage), s.ServiceEnabled(model.ServiceNotifications),
		s.ServiceEnabled(model.ServiceCache), s.ServiceEnabled(model.ServiceBackup),
		s.BackupFrequency, s.MaintenanceMode, s.AllowRegistration, s.CacheTTLSeconds)
	return err
}

// IsEnabled reports whether the named service toggle is on.  Missing
// settings rows are created with defaults, so a fresh install answers
// true for every known service.
func (r *SettingsRepo) IsEnabled(ctx context.Context, service string) (bool, error) {
	s, err := r.Get(ctx)
	if err != nil {
		return false, err
	}
	return s.ServiceEnabled(service), nil
}

// TouchLastBackup records when the most recent backup completed.
func (r *SettingsRepo) TouchLastBackup(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE settings SET last_backup_time = ? WHERE id = 1`, at)
	return err
}

// TouchLastHealthCheck records when the health endpoint was last hit.
func (r *SettingsRepo) TouchLastHealthCheck(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE settings SET last_health_check = ? WHERE id = 1`, at)
	return err
}
