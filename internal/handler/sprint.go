package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/burndown"
	"github.com/mentorhub/project-tracker/internal/model"
	"github.com/mentorhub/project-tracker/internal/repository"
)

// SprintHandler bundles dependencies for sprint endpoints.
type SprintHandler struct {
	Sprints  *repository.SprintRepo
	Projects *repository.ProjectRepo
	Tasks    *repository.TaskRepo
}

func NewSprintHandler(s *repository.SprintRepo, p *repository.ProjectRepo, t *repository.TaskRepo) *SprintHandler {
	return &SprintHandler{Sprints: s, Projects: p, Tasks: t}
}

const dateLayout = "2006-01-02"

// CreateSprint handles POST /api/sprints.  Dates arrive as
// YYYY-MM-DD strings and are stored at UTC midnight.
func (h *SprintHandler) CreateSprint(c echo.Context) error {
	var body struct {
		ProjectID uint64 `json:"projectId"`
		Name      string `json:"name"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" || body.ProjectID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "projectId and name are required"})
	}
	start, err := time.ParseInLocation(dateLayout, body.StartDate, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid startDate, want YYYY-MM-DD"})
	}
	end, err := time.ParseInLocation(dateLayout, body.EndDate, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid endDate, want YYYY-MM-DD"})
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endDate before startDate"})
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

	s := &model.Sprint{ProjectID: body.ProjectID, Name: name, StartDate: start, EndDate: end}
	if err := h.Sprints.Create(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create sprint"})
	}
	return c.JSON(http.StatusCreated, s)
}

// ListSprints handles GET /api/projects/:id/sprints.
func (h *SprintHandler) ListSprints(c echo.Context) error {
	projectID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Sprints.ListByProject(ctx, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetSprint handles GET /api/sprints/:id.
func (h *SprintHandler) GetSprint(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Sprints.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sprint not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, s)
}

// Burndown handles GET /api/sprints/:id/burndown.  The chart is
// recomputed from the sprint's task set on every call; nothing is
// cached here beyond the response cache middleware.
func (h *SprintHandler) Burndown(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Sprints.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sprint not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	tasks, err := h.Tasks.ListBySprint(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, burndown.Compute(*s, tasks, time.Now()))
}
