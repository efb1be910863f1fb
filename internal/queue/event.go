// Package queue defines message payloads exchanged over the message broker.
package queue

const (
	// TaskVerifiedQueue carries notifications about tasks a mentor
	// has verified.
	TaskVerifiedQueue = "task.verified"
	// BackupCompletedQueue carries notifications about finished
	// backup runs, manual and scheduled alike.
	BackupCompletedQueue = "backup.completed"
)

// TaskVerifiedEvent is published when a mentor verifies a task. It
// contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type TaskVerifiedEvent struct {
	TaskID      uint64 `json:"task_id"`
	TaskTitle   string `json:"task_title"`
	ProjectID   uint64 `json:"project_id"`
	SprintID    uint64 `json:"sprint_id,omitempty"`
	StudentID   uint64 `json:"student_id"`
	VerifierID  uint64 `json:"verifier_id"`
	StoryPoints int    `json:"story_points"`
	VerifiedAt  string `json:"verified_at"`
}

// BackupCompletedEvent is published after a backup archive has been
// written to disk.
type BackupCompletedEvent struct {
	Filename    string `json:"filename"`
	SizeBytes   int64  `json:"size_bytes"`
	Kind        string `json:"kind"`
	Method      string `json:"method"`
	CompletedAt string `json:"completed_at"`
}
