package model

import "time"

// AuditLog is an append-only record of an administrative or
// security-relevant action.  ActorID is null for actions taken by the
// system itself (for example scheduled backups).  Entries are never
// updated or deleted.
type AuditLog struct {
	ID        uint64    `json:"id"`
	ActorID   *uint64   `json:"actorId,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}
