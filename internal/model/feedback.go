package model

import "time"

// Feedback is a mentor comment left on a project, with an optional
// 1-5 rating.
type Feedback struct {
	ID        uint64    `json:"id"`
	ProjectID uint64    `json:"projectId"`
	AuthorID  uint64    `json:"authorId"`
	Body      string    `json:"body"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}
