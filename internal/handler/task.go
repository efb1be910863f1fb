package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/model"
	"github.com/mentorhub/project-tracker/internal/queue"
	"github.com/mentorhub/project-tracker/internal/repository"
	queuepublisher "github.com/mentorhub/project-tracker/internal/service"
)

// TaskHandler bundles dependencies for task endpoints.
type TaskHandler struct {
	Tasks    *repository.TaskRepo
	Projects *repository.ProjectRepo
	Settings *repository.SettingsRepo
	AMQPURL  string
}

func NewTaskHandler(t *repository.TaskRepo, p *repository.ProjectRepo, s *repository.SettingsRepo, amqpURL string) *TaskHandler {
	return &TaskHandler{Tasks: t, Projects: p, Settings: s, AMQPURL: amqpURL}
}

var taskStatuses = map[string]bool{
	model.TaskStatusTodo:       true,
	model.TaskStatusInProgress: true,
	model.TaskStatusDone:       true,
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var body struct {
		ProjectID   uint64  `json:"projectId"`
		SprintID    *uint64 `json:"sprintId"`
		AssigneeID  *uint64 `json:"assigneeId"`
		Title       string  `json:"title"`
		StoryPoints int     `json:"storyPoints"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(body.Title)
	if title == "" || body.ProjectID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "projectId and title are required"})
	}
	if body.StoryPoints < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storyPoints must be >= 0"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, body.ProjectID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !canEditProject(c, p) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	t := &model.Task{
		ProjectID:   body.ProjectID,
		SprintID:    body.SprintID,
		AssigneeID:  body.AssigneeID,
		Title:       title,
		StoryPoints: body.StoryPoints,
	}
	if err := h.Tasks.Create(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create task"})
	}
	h.recomputeProgress(ctx, c, t.ProjectID)
	return c.JSON(http.StatusCreated, t)
}

// ListTasks handles GET /api/projects/:id/tasks.
func (h *TaskHandler) ListTasks(c echo.Context) error {
	projectID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateTask handles PUT /api/tasks/:id.  Marking a task DONE stamps
// completed_at; moving it back clears the stamp.  Verification state
// is not touchable here, that goes through VerifyTask.
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		SprintID    *uint64 `json:"sprintId"`
		AssigneeID  *uint64 `json:"assigneeId"`
		Title       *string `json:"title"`
		Status      *string `json:"status"`
		StoryPoints *int    `json:"storyPoints"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	p, err := h.Projects.GetByID(ctx, t.ProjectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !canEditProject(c, p) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if body.SprintID != nil {
		t.SprintID = body.SprintID
	}
	if body.AssigneeID != nil {
		t.AssigneeID = body.AssigneeID
	}
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
		}
		t.Title = title
	}
	if body.StoryPoints != nil {
		if *body.StoryPoints < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "storyPoints must be >= 0"})
		}
		t.StoryPoints = *body.StoryPoints
	}
	if body.Status != nil {
		s := strings.ToUpper(strings.TrimSpace(*body.Status))
		if !taskStatuses[s] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		if s == model.TaskStatusDone && t.Status != model.TaskStatusDone {
			now := time.Now().UTC()
			t.CompletedAt = &now
		}
		if s != model.TaskStatusDone {
			t.CompletedAt = nil
		}
		t.Status = s
	}

	if err := h.Tasks.Update(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.recomputeProgress(ctx, c, t.ProjectID)
	return c.JSON(http.StatusOK, t)
}

// VerifyTask handles POST /api/tasks/:id/verify.  Only mentors and
// admins verify; verification locks the task into DONE and stamps
// verified_at once.  When the notification service is enabled a
// task.verified event is published in the background.
func (h *TaskHandler) VerifyTask(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role := getRole(c)
	if role != model.RoleMentor && role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Tasks.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	t, err := h.Tasks.Verify(ctx, id, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}
	h.recomputeProgress(ctx, c, t.ProjectID)

	if on, err := h.Settings.IsEnabled(ctx, model.ServiceNotifications); err == nil && on {
		h.publishVerified(t, uid)
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	p, err := h.Projects.GetByID(ctx, t.ProjectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !canEditProject(c, p) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Tasks.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.recomputeProgress(ctx, c, t.ProjectID)
	return c.NoContent(http.StatusNoContent)
}

// recomputeProgress refreshes the project's progress percentage from
// its current task mix.  Best effort: a failure here is logged and
// must not fail the request that triggered it.
func (h *TaskHandler) recomputeProgress(ctx context.Context, c echo.Context, projectID uint64) {
	tasks, err := h.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		c.Logger().Warnf("progress: list tasks failed: %v", err)
		return
	}
	done := 0
	for _, t := range tasks {
		if t.Status == model.TaskStatusDone {
			done++
		}
	}
	progress := 0
	if len(tasks) > 0 {
		progress = done * 100 / len(tasks)
	}
	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		c.Logger().Warnf("progress: load project failed: %v", err)
		return
	}
	p.Progress = progress
	if err := h.Projects.Update(ctx, p); err != nil {
		c.Logger().Warnf("progress: save project failed: %v", err)
	}
}

// publishVerified fires the task.verified event without blocking the
// request.
func (h *TaskHandler) publishVerified(t *model.Task, verifierID uint64) {
	ev := queue.TaskVerifiedEvent{
		TaskID:      t.ID,
		TaskTitle:   t.Title,
		ProjectID:   t.ProjectID,
		VerifierID:  verifierID,
		StoryPoints: t.StoryPoints,
	}
	if t.SprintID != nil {
		ev.SprintID = *t.SprintID
	}
	if t.AssigneeID != nil {
		ev.StudentID = *t.AssigneeID
	}
	if t.VerifiedAt != nil {
		ev.VerifiedAt = t.VerifiedAt.UTC().Format(time.RFC3339)
	}
	url := h.AMQPURL
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queuepublisher.PublishTaskVerified(ctx, url, ev)
	}()
}
