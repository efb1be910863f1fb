package model

import "time"

// Service toggle names recognised in Settings.Services.  Each maps to
// a boolean column on the singleton settings row.  Components that
// perform side-effecting work consult the matching toggle before
// proceeding.
const (
	ServiceAPIServer     = "apiServer"
	ServiceDatabase      = "database"
	ServiceEmail         = "emailService"
	ServiceGitHub        = "githubIntegration"
	ServiceFileStorage   = "fileStorage"
	ServiceNotifications = "notificationService"
	ServiceCache         = "cacheService"
	ServiceBackup        = "backupService"
)

// ServiceNames lists every known toggle in a stable order.
var ServiceNames = []string{
	ServiceAPIServer,
	ServiceDatabase,
	ServiceEmail,
	ServiceGitHub,
	ServiceFileStorage,
	ServiceNotifications,
	ServiceCache,
	ServiceBackup,
}

// Backup schedule frequencies stored in settings.backup_frequency.
const (
	FrequencyHourly  = "hourly"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Settings is the singleton admin configuration row.  Exactly one row
// exists (id = 1); it is created lazily with defaults on first read,
// mutated via the admin PUT endpoint and never deleted.  Concurrent
// admin writes are last-write-wins.
type Settings struct {
	Services          map[string]bool `json:"services"`
	BackupFrequency   string          `json:"backupFrequency"`
	MaintenanceMode   bool            `json:"maintenanceMode"`
	AllowRegistration bool            `json:"allowRegistration"`
	CacheTTLSeconds   int             `json:"cacheTtlSeconds"`
	LastBackupTime    *time.Time      `json:"lastBackupTime,omitempty"`
	LastHealthCheck   *time.Time      `json:"lastHealthCheck,omitempty"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ServiceEnabled reports whether the named service toggle is on.
// Unknown names are treated as disabled.
func (s *Settings) ServiceEnabled(name string) bool {
	if s == nil || s.Services == nil {
		return false
	}
	return s.Services[name]
}

// DefaultSettings returns the settings used when no row exists yet:
// every service enabled, daily backups, five minute cache TTL.
func DefaultSettings() *Settings {
	services := make(map[string]bool, len(ServiceNames))
	for _, n := range ServiceNames {
		services[n] = true
	}
	return &Settings{
		Services:          services,
		BackupFrequency:   FrequencyDaily,
		MaintenanceMode:   false,
		AllowRegistration: true,
		CacheTTLSeconds:   300,
	}
}
