package repository

import (
	"context"
	"database/sql"

	"github.com/mentorhub/project-tracker/internal/model"
)

// AuditLogRepo manages the append-only audit trail.  Entries are
// inserted and listed, never updated or deleted.
type AuditLogRepo struct {
	db *sql.DB
}

// NewAuditLogRepo constructs an AuditLogRepo with the given DB handle.
func NewAuditLogRepo(db *sql.DB) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

// Insert appends an audit entry.  actorID is nil for system actions
// such as scheduled backups.
func (r *AuditLogRepo) Insert(ctx context.Context, actorID *uint64, action, resource, details string) error {
	const q = `INSERT INTO audit_logs (actor_id, action, resource, details) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, actorID, action, resource, details)
	return err
}

// RecordSystemAction appends an entry with no actor.  It satisfies
// the backup engine's audit sink interface.
func (r *AuditLogRepo) RecordSystemAction(ctx context.Context, action, resource, details string) error {
	return r.Insert(ctx, nil, action, resource, details)
}

// ListRecent returns up to limit entries, newest first.
func (r *AuditLogRepo) ListRecent(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor_id, action, resource, details, created_at
		 FROM audit_logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuditLogs(rows)
}

// ListAll returns every audit entry.  Used by the backup JSON export.
func (r *AuditLogRepo) ListAll(ctx context.Context) ([]model.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor_id, action, resource, details, created_at FROM audit_logs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuditLogs(rows)
}

func collectAuditLogs(rows *sql.Rows) ([]model.AuditLog, error) {
	var out []model.AuditLog
	for rows.Next() {
		var a model.AuditLog
		if err := rows.Scan(&a.ID, &a.ActorID, &a.Action, &a.Resource, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
