package burndown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/project-tracker/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time { return &t }

func sprint(start, end time.Time) model.Sprint {
	return model.Sprint{ID: 1, ProjectID: 1, Name: "s1", StartDate: start, EndDate: end}
}

func TestTenDayScenario(t *testing.T) {
	s := sprint(date(2024, 1, 1), date(2024, 1, 10))
	tasks := []model.Task{
		{StoryPoints: 10, IsVerified: true, VerifiedAt: tp(date(2024, 1, 5))},
	}
	now := date(2024, 1, 10)

	r := Compute(s, tasks, now)

	assert.Equal(t, 10, r.TotalPoints)
	assert.Equal(t, 10, r.SecuredPoints)
	require.Len(t, r.Data, 10)

	assert.Equal(t, "2024-01-01", r.Data[0].Date)
	assert.Equal(t, 0, r.Data[0].Ideal)
	assert.Equal(t, 9, r.Data[9].Ideal, "ideal on the final day is (d-1)*rate, clamped at total")

	for i := 0; i < 4; i++ {
		require.NotNil(t, r.Data[i].Actual)
		assert.Equal(t, 0, *r.Data[i].Actual, "day %d precedes the verification", i+1)
	}
	for i := 4; i < 10; i++ {
		require.NotNil(t, r.Data[i].Actual)
		assert.Equal(t, 10, *r.Data[i].Actual, "day %d is at or after the verification", i+1)
	}
}

func TestIdempotent(t *testing.T) {
	s := sprint(date(2024, 1, 1), date(2024, 1, 10))
	tasks := []model.Task{
		{StoryPoints: 3, IsVerified: true, VerifiedAt: tp(date(2024, 1, 2))},
		{StoryPoints: 5},
	}
	now := date(2024, 1, 6)

	assert.Equal(t, Compute(s, tasks, now), Compute(s, tasks, now))
}

func TestEmptySprint(t *testing.T) {
	s := sprint(date(2024, 1, 1), date(2024, 1, 5))
	r := Compute(s, nil, date(2024, 1, 5))

	assert.Equal(t, 0, r.TotalPoints)
	assert.Equal(t, 0, r.SecuredPoints)
	require.Len(t, r.Data, 5)
	for _, p := range r.Data {
		assert.Equal(t, 0, p.Ideal)
	}
}

func TestVerifiedBeforeSprintStartCountsOnDayOne(t *testing.T) {
	s := sprint(date(2024, 2, 1), date(2024, 2, 7))
	tasks := []model.Task{
		{StoryPoints: 8, IsVerified: true, VerifiedAt: tp(date(2024, 1, 20))},
	}
	r := Compute(s, tasks, date(2024, 2, 3))

	require.NotNil(t, r.Data[0].Actual)
	assert.Equal(t, 8, *r.Data[0].Actual, "pre-sprint verification clamps into day 1, not dropped")
}

func TestFutureDaysCarryNilActual(t *testing.T) {
	s := sprint(date(2024, 3, 1), date(2024, 3, 10))
	tasks := []model.Task{{StoryPoints: 4, IsVerified: true, VerifiedAt: tp(date(2024, 3, 2))}}
	now := date(2024, 3, 4)

	r := Compute(s, tasks, now)
	require.Len(t, r.Data, 10)

	for i, p := range r.Data {
		if i < 4 { // days 1-4 are at-or-before today
			assert.NotNil(t, p.Actual, "day %d", i+1)
		} else {
			assert.Nil(t, p.Actual, "day %d is in the future", i+1)
		}
	}
}

func TestFutureSprintStillChartsDayOne(t *testing.T) {
	s := sprint(date(2030, 1, 1), date(2030, 1, 5))
	tasks := []model.Task{{StoryPoints: 2, IsVerified: true, VerifiedAt: tp(date(2026, 6, 1))}}

	r := Compute(s, tasks, date(2026, 8, 1))

	// Window covers the sprint dates even though today precedes them.
	require.Len(t, r.Data, 5)
	require.NotNil(t, r.Data[0].Actual, "day 1 always carries a real data point")
	assert.Equal(t, 2, *r.Data[0].Actual)
	assert.Nil(t, r.Data[1].Actual)
}

func TestOverrunExtendsWindowToToday(t *testing.T) {
	s := sprint(date(2024, 1, 1), date(2024, 1, 3))
	r := Compute(s, nil, date(2024, 1, 6))

	require.Len(t, r.Data, 6, "series extends past end date to today")
	assert.Equal(t, "2024-01-06", r.Data[5].Date)
}

func TestInvertedDatesClampToOneDay(t *testing.T) {
	s := sprint(date(2024, 1, 10), date(2024, 1, 5))
	tasks := []model.Task{{StoryPoints: 5, IsVerified: true, VerifiedAt: tp(date(2024, 1, 10))}}

	r := Compute(s, tasks, date(2024, 1, 12))

	assert.Equal(t, 5, r.TotalPoints)
	require.NotEmpty(t, r.Data, "inverted dates must not crash or yield an empty series")
	assert.Equal(t, "2024-01-10", r.Data[0].Date)
}

func TestVerifiedUndatedFallsBackToCompletedAtThenNow(t *testing.T) {
	s := sprint(date(2024, 1, 1), date(2024, 1, 4))
	now := date(2024, 1, 4)
	tasks := []model.Task{
		{StoryPoints: 2, IsVerified: true, CompletedAt: tp(date(2024, 1, 2))}, // completedAt fallback
		{StoryPoints: 3, IsVerified: true},                                    // undated: counts from now
	}

	r := Compute(s, tasks, now)
	require.Len(t, r.Data, 4)

	assert.Equal(t, 2, *r.Data[1].Actual, "only the completedAt task has landed by day 2")
	assert.Equal(t, 5, *r.Data[3].Actual, "the undated task lands on today")
	assert.Equal(t, 5, r.SecuredPoints)
}
