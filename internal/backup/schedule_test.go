package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mentorhub/project-tracker/internal/model"
)

func TestDueSlots(t *testing.T) {
	at := func(y int, m time.Month, d, hh, mm int) time.Time {
		return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	}

	cases := []struct {
		freq string
		t    time.Time
		want bool
	}{
		{model.FrequencyHourly, at(2026, 8, 12, 14, 0), true},
		{model.FrequencyHourly, at(2026, 8, 12, 14, 30), false},

		{model.FrequencyDaily, at(2026, 8, 12, 2, 0), true},
		{model.FrequencyDaily, at(2026, 8, 12, 3, 0), false},
		{model.FrequencyDaily, at(2026, 8, 12, 2, 1), false},

		// 2026-08-09 is a Sunday.
		{model.FrequencyWeekly, at(2026, 8, 9, 2, 0), true},
		{model.FrequencyWeekly, at(2026, 8, 10, 2, 0), false},

		{model.FrequencyMonthly, at(2026, 9, 1, 2, 0), true},
		{model.FrequencyMonthly, at(2026, 9, 2, 2, 0), false},

		{"fortnightly", at(2026, 9, 1, 2, 0), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, due(c.freq, c.t), "%s at %s", c.freq, c.t)
	}
}

func TestApplySwapsFrequency(t *testing.T) {
	s := NewScheduler(model.FrequencyDaily, nil)
	assert.True(t, due(s.freq, time.Date(2026, 8, 12, 2, 0, 0, 0, time.UTC)))

	s.Apply(model.FrequencyHourly)
	assert.True(t, due(s.freq, time.Date(2026, 8, 12, 14, 0, 0, 0, time.UTC)))
	assert.False(t, due(s.freq, time.Date(2026, 8, 12, 14, 30, 0, 0, time.UTC)))
}
