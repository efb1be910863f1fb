package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mentorhub/project-tracker/internal/model"
)

// TaskRepo manages persistence for tasks.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo constructs a TaskRepo with the given DB handle.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskCols = `id, project_id, sprint_id, assignee_id, title, status, COALESCE(story_points, 0),
	is_verified, verified_at, completed_at, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.SprintID, &t.AssigneeID, &t.Title, &t.Status,
		&t.StoryPoints, &t.IsVerified, &t.VerifiedAt, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new task and populates the generated ID and
// DB-default fields on the given struct.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	const q = `INSERT INTO tasks (project_id, sprint_id, assignee_id, title, status, story_points)
	           VALUES (?, ?, ?, ?, ?, ?)`
	status := t.Status
	if status == "" {
		status = model.TaskStatusTodo
	}
	res, err := r.db.ExecContext(ctx, q, t.ProjectID, t.SprintID, t.AssigneeID, t.Title, status, t.StoryPoints)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	got, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

// GetByID retrieves a task by its ID or returns ErrNotFound.
func (r *TaskRepo) GetByID(ctx context.Context, id uint64) (*model.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return t, err
}

// ListByProject returns all tasks of one project.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListBySprint returns the tasks attached to one sprint.  This is the
// task set the burndown calculator runs over.
func (r *TaskRepo) ListBySprint(ctx context.Context, sprintID uint64) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE sprint_id = ? ORDER BY id`, sprintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

// Update persists the mutable fields of an existing task.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	const q = `UPDATE tasks SET sprint_id = ?, assignee_id = ?, title = ?, status = ?,
	           story_points = ?, completed_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, t.SprintID, t.AssigneeID, t.Title, t.Status,
		t.StoryPoints, t.CompletedAt, t.ID)
	return err
}

// Verify marks a task as mentor-verified and stamps verified_at.
// Verification is idempotent: re-verifying keeps the original stamp.
func (r *TaskRepo) Verify(ctx context.Context, id uint64, at time.Time) (*model.Task, error) {
	const q = `UPDATE tasks SET is_verified = 1, status = ?,
	           verified_at = COALESCE(verified_at, ?) WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, model.TaskStatusDone, at, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a task.
func (r *TaskRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every task.  Used by the backup JSON export.
func (r *TaskRepo) ListAll(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskCols+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
