package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/backup"
	"github.com/mentorhub/project-tracker/internal/cache"
	"github.com/mentorhub/project-tracker/internal/model"
	"github.com/mentorhub/project-tracker/internal/repository"
)

// AdminSettingsHandler serves the admin settings console.  Saving
// settings immediately propagates the cache toggle to the response
// cache and the backup frequency to the scheduler, so changes take
// effect without a restart.
type AdminSettingsHandler struct {
	Settings  *repository.SettingsRepo
	Audit     *repository.AuditLogRepo
	Cache     *cache.Store
	Scheduler *backup.Scheduler
}

func NewAdminSettingsHandler(s *repository.SettingsRepo, a *repository.AuditLogRepo, cs *cache.Store, sched *backup.Scheduler) *AdminSettingsHandler {
	return &AdminSettingsHandler{Settings: s, Audit: a, Cache: cs, Scheduler: sched}
}

// settingsPatch is the partial-update body for PUT /api/admin/settings.
// Absent fields keep their current value.
type settingsPatch struct {
	Services          map[string]*bool `json:"services"`
	BackupFrequency   *string          `json:"backupFrequency"`
	MaintenanceMode   *bool            `json:"maintenanceMode"`
	AllowRegistration *bool            `json:"allowRegistration"`
	CacheTTLSeconds   *int             `json:"cacheTtlSeconds"`
}

var validFrequencies = map[string]bool{
	model.FrequencyHourly:  true,
	model.FrequencyDaily:   true,
	model.FrequencyWeekly:  true,
	model.FrequencyMonthly: true,
}

// applyPatch merges a patch into the current settings and returns a
// sorted list of the fields it changed.  Unknown service names, bad
// frequencies and non-positive TTLs are rejected before anything is
// mutated.
func applyPatch(s *model.Settings, p settingsPatch) ([]string, error) {
	known := make(map[string]bool, len(model.ServiceNames))
	for _, n := range model.ServiceNames {
		known[n] = true
	}
	for name := range p.Services {
		if !known[name] {
			return nil, fmt.Errorf("unknown service %q", name)
		}
	}
	if p.BackupFrequency != nil && !validFrequencies[*p.BackupFrequency] {
		return nil, fmt.Errorf("unknown backup frequency %q", *p.BackupFrequency)
	}
	if p.CacheTTLSeconds != nil && *p.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("cacheTtlSeconds must be positive")
	}

	var changed []string
	for name, on := range p.Services {
		if on != nil && s.Services[name] != *on {
			s.Services[name] = *on
			changed = append(changed, "services."+name)
		}
	}
	if p.BackupFrequency != nil && s.BackupFrequency != *p.BackupFrequency {
		s.BackupFrequency = *p.BackupFrequency
		changed = append(changed, "backupFrequency")
	}
	if p.MaintenanceMode != nil && s.MaintenanceMode != *p.MaintenanceMode {
		s.MaintenanceMode = *p.MaintenanceMode
		changed = append(changed, "maintenanceMode")
	}
	if p.AllowRegistration != nil && s.AllowRegistration != *p.AllowRegistration {
		s.AllowRegistration = *p.AllowRegistration
		changed = append(changed, "allowRegistration")
	}
	if p.CacheTTLSeconds != nil && s.CacheTTLSeconds != *p.CacheTTLSeconds {
		s.CacheTTLSeconds = *p.CacheTTLSeconds
		changed = append(changed, "cacheTtlSeconds")
	}
	sort.Strings(changed)
	return changed, nil
}

// GetSettings handles GET /api/admin/settings.
func (h *AdminSettingsHandler) GetSettings(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, s)
}

// UpdateSettings handles PUT /api/admin/settings.  Concurrent saves
// are last-write-wins.
func (h *AdminSettingsHandler) UpdateSettings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var patch settingsPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	changed, err := applyPatch(s, patch)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if len(changed) == 0 {
		return c.JSON(http.StatusOK, s)
	}
	if err := h.Settings.Save(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}

	// Propagate live side effects.  Turning the cache off flushes it.
	if h.Cache != nil {
		h.Cache.SetEnabled(s.ServiceEnabled(model.ServiceCache))
	}
	if h.Scheduler != nil {
		h.Scheduler.Apply(s.BackupFrequency)
	}

	if err := h.Audit.Insert(ctx, &uid, "settings.updated", "settings",
		"changed: "+strings.Join(changed, ", ")); err != nil {
		c.Logger().Warnf("audit: settings.updated insert failed: %v", err)
	}
	return c.JSON(http.StatusOK, s)
}
