package model

import "time"

// Sprint is a time-boxed iteration inside a project.  StartDate and
// EndDate bound the sprint; tasks may be attached to a sprint via
// tasks.sprint_id.  The burndown calculator consumes these bounds
// together with the sprint's task set.
type Sprint struct {
	ID        uint64    `json:"id"`
	ProjectID uint64    `json:"projectId"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
