package model

import "time"

// Project represents a student project tracked by the platform.  A
// project is owned by a student and optionally supervised by a
// mentor.  Progress is a percentage derived from task completion and
// is recalculated by the task handlers on mutation.
type Project struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     uint64    `json:"ownerId"`
	MentorID    *uint64   `json:"mentorId,omitempty"`
	Status      string    `json:"status"` // ACTIVE, COMPLETED, ARCHIVED
	Progress    int       `json:"progress"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
