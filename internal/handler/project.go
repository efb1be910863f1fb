package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/model"
	"github.com/mentorhub/project-tracker/internal/repository"
)

// ProjectHandler bundles dependencies for project endpoints.
type ProjectHandler struct {
	Projects *repository.ProjectRepo
}

func NewProjectHandler(p *repository.ProjectRepo) *ProjectHandler {
	return &ProjectHandler{Projects: p}
}

var projectStatuses = map[string]bool{
	"ACTIVE":    true,
	"COMPLETED": true,
	"ARCHIVED":  true,
}

// canEditProject reports whether the caller may mutate the project:
// its owner, its assigned mentor, or an admin.
func canEditProject(c echo.Context, p *model.Project) bool {
	uid, err := getUserID(c)
	if err != nil {
		return false
	}
	if getRole(c) == model.RoleAdmin || p.OwnerID == uid {
		return true
	}
	return p.MentorID != nil && *p.MentorID == uid
}

// CreateProject handles POST /api/projects.  The authenticated user
// becomes the owner.
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		MentorID    *uint64 `json:"mentorId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := &model.Project{
		Title:       title,
		Description: strings.TrimSpace(body.Description),
		OwnerID:     uid,
		MentorID:    body.MentorID,
	}
	if err := h.Projects.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create project"})
	}
	return c.JSON(http.StatusCreated, p)
}

// ListProjects handles GET /api/projects.
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Projects.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetProject handles GET /api/projects/:id.
func (h *ProjectHandler) GetProject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateProject handles PUT /api/projects/:id.
func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		MentorID    *uint64 `json:"mentorId"`
		Status      *string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
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
		p.Title = t
	}
	if body.Description != nil {
		p.Description = strings.TrimSpace(*body.Description)
	}
	if body.MentorID != nil {
		p.MentorID = body.MentorID
	}
	if body.Status != nil {
		s := strings.ToUpper(strings.TrimSpace(*body.Status))
		if !projectStatuses[s] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		p.Status = s
	}

	if err := h.Projects.Update(ctx, p); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/:id.  Only the owner or
// an admin may delete; dependent rows cascade in the database.
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if getRole(c) != model.RoleAdmin && p.OwnerID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Projects.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
