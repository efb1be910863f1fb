package repository

import (
	"context"
	"database/sql"

	"github.com/mentorhub/project-tracker/internal/model"
)

// ProjectRepo manages persistence for projects.
type ProjectRepo struct {
	db *sql.DB
}

// NewProjectRepo constructs a ProjectRepo with the given DB handle.
func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

const projectCols = `id, title, description, owner_id, mentor_id, status, progress, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.OwnerID, &p.MentorID,
		&p.Status, &p.Progress, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new project and populates the generated ID and
// DB-default fields on the given struct.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	const q = `INSERT INTO projects (title, description, owner_id, mentor_id) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.Title, p.Description, p.OwnerID, p.MentorID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	got, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

// GetByID retrieves a project by its ID.  It returns ErrNotFound if
// there is no matching row.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (*model.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, `SELECT `+projectCols+` FROM projects WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// List returns all projects, newest first.
func (r *ProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectCols+` FROM projects ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update persists title, description, mentor, status and progress of
// an existing project.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
	const q = `UPDATE projects SET title = ?, description = ?, mentor_id = ?, status = ?, progress = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, p.Title, p.Description, p.MentorID, p.Status, p.Progress, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "missing row" from "same values": re-check existence.
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a project.  Dependent sprints, tasks, milestones and
// feedback are removed by FK cascade.
func (r *ProjectRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every project.  Used by the backup JSON export.
func (r *ProjectRepo) ListAll(ctx context.Context) ([]model.Project, error) {
	return r.List(ctx)
}
