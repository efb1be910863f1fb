package repository

import (
	"context"
	"database/sql"

	"github.com/mentorhub/project-tracker/internal/model"
)

// FeedbackRepo manages persistence for project feedback.
type FeedbackRepo struct {
	db *sql.DB
}

// NewFeedbackRepo constructs a FeedbackRepo with the given DB handle.
func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

const feedbackCols = `id, project_id, author_id, body, rating, created_at`

// Create inserts a new feedback entry.
func (r *FeedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	const q = `INSERT INTO feedback (project_id, author_id, body, rating) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, f.ProjectID, f.AuthorID, f.Body, f.Rating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT `+feedbackCols+` FROM feedback WHERE id = ?`, f.ID).
		Scan(&f.ID, &f.ProjectID, &f.AuthorID, &f.Body, &f.Rating, &f.CreatedAt)
}

// ListByProject returns the feedback left on one project, newest
// first.
func (r *FeedbackRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Feedback, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+feedbackCols+` FROM feedback WHERE project_id = ? ORDER BY id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFeedback(rows)
}

// ListAll returns every feedback entry.  Used by the backup JSON
// export.
func (r *FeedbackRepo) ListAll(ctx context.Context) ([]model.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+feedbackCols+` FROM feedback ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFeedback(rows)
}

func collectFeedback(rows *sql.Rows) ([]model.Feedback, error) {
	var out []model.Feedback
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.AuthorID, &f.Body, &f.Rating, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
