package model

import "time"

// Task statuses stored in tasks.status.
const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
)

// Task is a unit of work inside a project.  A task optionally
// belongs to a sprint and carries a story-point estimate.  A task
// counts toward a sprint's secured points once a mentor verifies it;
// VerifiedAt records when that happened.  CompletedAt is stamped when
// the student marks the task done and serves as a fallback
// verification date for tasks verified without a timestamp.
type Task struct {
	ID          uint64     `json:"id"`
	ProjectID   uint64     `json:"projectId"`
	SprintID    *uint64    `json:"sprintId,omitempty"`
	AssigneeID  *uint64    `json:"assigneeId,omitempty"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	StoryPoints int        `json:"storyPoints"`
	IsVerified  bool       `json:"isVerified"`
	VerifiedAt  *time.Time `json:"verifiedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
