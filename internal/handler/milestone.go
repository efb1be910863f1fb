package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/model"
	"github.com/mentorhub/project-tracker/internal/repository"
)

// MilestoneHandler bundles dependencies for milestone endpoints.
type MilestoneHandler struct {
	Milestones *repository.MilestoneRepo
	Projects   *repository.ProjectRepo
}

func NewMilestoneHandler(m *repository.MilestoneRepo, p *repository.ProjectRepo) *MilestoneHandler {
	return &MilestoneHandler{Milestones: m, Projects: p}
}

// CreateMilestone handles POST /api/milestones.
func (h *MilestoneHandler) CreateMilestone(c echo.Context) error {
	var body struct {
		ProjectID uint64 `json:"projectId"`
		Title     string `json:"title"`
		DueDate   string `json:"dueDate"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(body.Title)
	if title == "" || body.ProjectID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "projectId and title are required"})
	}
	due, err := time.ParseInLocation(dateLayout, body.DueDate, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dueDate, want YYYY-MM-DD"})
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

	m := &model.Milestone{ProjectID: body.ProjectID, Title: title, DueDate: due}
	if err := h.Milestones.Create(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create milestone"})
	}
	return c.JSON(http.StatusCreated, m)
}

// ListMilestones handles GET /api/projects/:id/milestones.
func (h *MilestoneHandler) ListMilestones(c echo.Context) error {
	projectID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Milestones.ListByProject(ctx, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateMilestone handles PUT /api/milestones/:id.
func (h *MilestoneHandler) UpdateMilestone(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Title     *string `json:"title"`
		DueDate   *string `json:"dueDate"`
		Completed *bool   `json:"completed"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Milestones.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "milestone not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	p, err := h.Projects.GetByID(ctx, m.ProjectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !canEditProject(c, p) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if body.Title != nil {
		t := strings.TrimSpace(*body.Title)
		if t == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
		}
		m.Title = t
	}
	if body.DueDate != nil {
		due, err := time.ParseInLocation(dateLayout, *body.DueDate, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dueDate, want YYYY-MM-DD"})
		}
		m.DueDate = due
	}
	if body.Completed != nil {
		m.Completed = *body.Completed
	}

	if err := h.Milestones.Update(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteMilestone handles DELETE /api/milestones/:id.
func (h *MilestoneHandler) DeleteMilestone(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Milestones.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "milestone not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	p, err := h.Projects.GetByID(ctx, m.ProjectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !canEditProject(c, p) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Milestones.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
