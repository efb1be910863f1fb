package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/project-tracker/internal/model"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestApplyPatchMergesOnlyGivenFields(t *testing.T) {
	s := model.DefaultSettings()

	changed, err := applyPatch(s, settingsPatch{
		Services:        map[string]*bool{model.ServiceCache: boolPtr(false)},
		BackupFrequency: strPtr(model.FrequencyWeekly),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"backupFrequency", "services.cacheService"}, changed)
	assert.False(t, s.ServiceEnabled(model.ServiceCache))
	assert.Equal(t, model.FrequencyWeekly, s.BackupFrequency)
	// Untouched fields keep their defaults.
	assert.True(t, s.ServiceEnabled(model.ServiceBackup))
	assert.True(t, s.AllowRegistration)
	assert.Equal(t, 300, s.CacheTTLSeconds)
}

func TestApplyPatchNoopReportsNothingChanged(t *testing.T) {
	s := model.DefaultSettings()

	changed, err := applyPatch(s, settingsPatch{
		Services:        map[string]*bool{model.ServiceBackup: boolPtr(true)},
		BackupFrequency: strPtr(model.FrequencyDaily),
	})
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestApplyPatchRejectsUnknownService(t *testing.T) {
	s := model.DefaultSettings()

	_, err := applyPatch(s, settingsPatch{
		Services: map[string]*bool{"teleporter": boolPtr(true)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teleporter")
	// Nothing was mutated.
	assert.True(t, s.ServiceEnabled(model.ServiceCache))
}

func TestApplyPatchRejectsBadFrequency(t *testing.T) {
	s := model.DefaultSettings()

	_, err := applyPatch(s, settingsPatch{BackupFrequency: strPtr("fortnightly")})
	require.Error(t, err)
	assert.Equal(t, model.FrequencyDaily, s.BackupFrequency)
}

func TestApplyPatchRejectsNonPositiveTTL(t *testing.T) {
	s := model.DefaultSettings()

	_, err := applyPatch(s, settingsPatch{CacheTTLSeconds: intPtr(0)})
	require.Error(t, err)
	assert.Equal(t, 300, s.CacheTTLSeconds)
}

func TestApplyPatchFlagsAndTTL(t *testing.T) {
	s := model.DefaultSettings()

	changed, err := applyPatch(s, settingsPatch{
		MaintenanceMode:   boolPtr(true),
		AllowRegistration: boolPtr(false),
		CacheTTLSeconds:   intPtr(60),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"allowRegistration", "cacheTtlSeconds", "maintenanceMode"}, changed)
	assert.True(t, s.MaintenanceMode)
	assert.False(t, s.AllowRegistration)
	assert.Equal(t, 60, s.CacheTTLSeconds)
}
