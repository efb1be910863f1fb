// Package burndown derives a day-indexed ideal-vs-actual story-point
// series for a sprint.  The computation is pure: it reads the sprint
// bounds and the already-fetched task set and mutates nothing, so the
// handler fetches rows and calls Compute.
package burndown

import (
	"math"
	"time"

	"github.com/mentorhub/project-tracker/internal/model"
)

// Point is one day of the chart.  Ideal is the linear ramp from zero
// story points on day one to the sprint total on the final day,
// rounded for display.  Actual is nil for days still in the future so
// the chart can distinguish "not yet reached" from "zero progress";
// day one always carries a value so even a future-dated sprint charts
// one real data point.
type Point struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Ideal  int    `json:"ideal"`
	Actual *int   `json:"actual"`
}

// Report is the burndown result for one sprint.
type Report struct {
	TotalPoints   int     `json:"totalPoints"`
	SecuredPoints int     `json:"securedPoints"`
	Data          []Point `json:"data"`
}

const oneDay = 24 * time.Hour

// Compute builds the burndown report for a sprint over its task set.
// now anchors "today"; callers pass time.Now() and tests pass a fixed
// instant.
//
// The chart window runs from the sprint start through the later of
// the sprint end and today, so a sprint running past its end date
// shows the overrun instead of truncating.  A task's verification
// date is verifiedAt, falling back to completedAt, falling back to
// now for verified-but-undated tasks; tasks verified before the
// sprint started count from day one.
func Compute(sprint model.Sprint, tasks []model.Task, now time.Time) Report {
	total := 0
	secured := 0
	for _, t := range tasks {
		total += t.StoryPoints
		if t.IsVerified {
			secured += t.StoryPoints
		}
	}

	// Inclusive day count.  A sprint whose end precedes its start is
	// not validated upstream; clamp to a single day rather than crash.
	duration := int(math.Ceil(float64(sprint.EndDate.Sub(sprint.StartDate))/float64(oneDay))) + 1
	if duration < 1 {
		duration = 1
	}
	rate := float64(total) / float64(duration)

	start := dateOnly(sprint.StartDate)
	end := dateOnly(sprint.EndDate)
	today := dateOnly(now)
	windowEnd := end
	if today.After(windowEnd) {
		windowEnd = today
	}

	var data []Point
	for d, day := start, 1; !d.After(windowEnd); d, day = d.AddDate(0, 0, 1), day+1 {
		ideal := float64(day-1) * rate
		if ideal > float64(total) {
			ideal = float64(total)
		}
		p := Point{Date: d.Format("2006-01-02"), Ideal: int(math.Round(ideal))}

		// Actual is defined for days at-or-before today, and always
		// for day one.
		if !d.After(today) || day == 1 {
			endOfDay := d.AddDate(0, 0, 1)
			sum := 0
			for _, t := range tasks {
				if !t.IsVerified {
					continue
				}
				if verificationTime(t, now).Before(endOfDay) {
					sum += t.StoryPoints
				}
			}
			p.Actual = &sum
		}
		data = append(data, p)
	}

	return Report{TotalPoints: total, SecuredPoints: secured, Data: data}
}

// verificationTime resolves the instant a verified task counts from.
func verificationTime(t model.Task, now time.Time) time.Time {
	if t.VerifiedAt != nil {
		return *t.VerifiedAt
	}
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return now
}

// dateOnly truncates an instant to midnight UTC.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
