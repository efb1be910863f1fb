package repository

import (
	"context"
	"database/sql"

	"github.com/mentorhub/project-tracker/internal/model"
)

// MilestoneRepo manages persistence for milestones.
type MilestoneRepo struct {
	db *sql.DB
}

// NewMilestoneRepo constructs a MilestoneRepo with the given DB handle.
func NewMilestoneRepo(db *sql.DB) *MilestoneRepo {
	return &MilestoneRepo{db: db}
}

const milestoneCols = `id, project_id, title, due_date, completed, created_at, updated_at`

// Create inserts a new milestone.
func (r *MilestoneRepo) Create(ctx context.Context, m *model.Milestone) error {
	const q = `INSERT INTO milestones (project_id, title, due_date) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.ProjectID, m.Title, m.DueDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT `+milestoneCols+` FROM milestones WHERE id = ?`, m.ID).
		Scan(&m.ID, &m.ProjectID, &m.Title, &m.DueDate, &m.Completed, &m.CreatedAt, &m.UpdatedAt)
}

// GetByID retrieves a milestone by its ID or returns ErrNotFound.
func (r *MilestoneRepo) GetByID(ctx context.Context, id uint64) (*model.Milestone, error) {
	var m model.Milestone
	err := r.db.QueryRowContext(ctx, `SELECT `+milestoneCols+` FROM milestones WHERE id = ?`, id).
		Scan(&m.ID, &m.ProjectID, &m.Title, &m.DueDate, &m.Completed, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByProject returns the milestones of one project ordered by due
// date.
func (r *MilestoneRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Milestone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+milestoneCols+` FROM milestones WHERE project_id = ? ORDER BY due_date`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMilestones(rows)
}

// Update persists title, due date and completion of a milestone.
func (r *MilestoneRepo) Update(ctx context.Context, m *model.Milestone) error {
	const q = `UPDATE milestones SET title = ?, due_date = ?, completed = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, m.Title, m.DueDate, m.Completed, m.ID)
	return err
}

// Delete removes a milestone.
func (r *MilestoneRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM milestones WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every milestone.  Used by the backup JSON export.
func (r *MilestoneRepo) ListAll(ctx context.Context) ([]model.Milestone, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+milestoneCols+` FROM milestones ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMilestones(rows)
}

func collectMilestones(rows *sql.Rows) ([]model.Milestone, error) {
	var out []model.Milestone
	for rows.Next() {
		var m model.Milestone
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &m.DueDate, &m.Completed, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
