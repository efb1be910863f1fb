package model

import "time"

// Milestone marks a dated goal inside a project.
type Milestone struct {
	ID        uint64    `json:"id"`
	ProjectID uint64    `json:"projectId"`
	Title     string    `json:"title"`
	DueDate   time.Time `json:"dueDate"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
