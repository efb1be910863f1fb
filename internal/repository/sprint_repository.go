package repository

import (
	"context"
	"database/sql"

	"github.com/mentorhub/project-tracker/internal/model"
)

// SprintRepo manages persistence for sprints.
type SprintRepo struct {
	db *sql.DB
}

// NewSprintRepo constructs a SprintRepo with the given DB handle.
func NewSprintRepo(db *sql.DB) *SprintRepo {
	return &SprintRepo{db: db}
}

const sprintCols = `id, project_id, name, start_date, end_date, created_at, updated_at`

// Create inserts a new sprint.  Date ordering is not validated here:
// the burndown calculator clamps a non-positive duration to one day.
func (r *SprintRepo) Create(ctx context.Context, s *model.Sprint) error {
	const q = `INSERT INTO sprints (project_id, name, start_date, end_date) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.ProjectID, s.Name, s.StartDate, s.EndDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	got, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID retrieves a sprint by its ID or returns ErrNotFound.
func (r *SprintRepo) GetByID(ctx context.Context, id uint64) (*model.Sprint, error) {
	var s model.Sprint
	err := r.db.QueryRowContext(ctx, `SELECT `+sprintCols+` FROM sprints WHERE id = ?`, id).
		Scan(&s.ID, &s.ProjectID, &s.Name, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByProject returns the sprints of one project ordered by start
// date.
func (r *SprintRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Sprint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sprintCols+` FROM sprints WHERE project_id = ? ORDER BY start_date`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSprints(rows)
}

// ListAll returns every sprint.  Used by the backup JSON export.
func (r *SprintRepo) ListAll(ctx context.Context) ([]model.Sprint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sprintCols+` FROM sprints ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSprints(rows)
}

func collectSprints(rows *sql.Rows) ([]model.Sprint, error) {
	var out []model.Sprint
	for rows.Next() {
		var s model.Sprint
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Name, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
