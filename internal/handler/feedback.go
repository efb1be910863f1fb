package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/model"
	"github.com/mentorhub/project-tracker/internal/repository"
)

// FeedbackHandler bundles dependencies for feedback endpoints.
type FeedbackHandler struct {
	Feedback *repository.FeedbackRepo
	Projects *repository.ProjectRepo
}

func NewFeedbackHandler(f *repository.FeedbackRepo, p *repository.ProjectRepo) *FeedbackHandler {
	return &FeedbackHandler{Feedback: f, Projects: p}
}

// CreateFeedback handles POST /api/feedback.  Only mentors and admins
// leave feedback; the rating is optional, zero means unrated.
func (h *FeedbackHandler) CreateFeedback(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role := getRole(c)
	if role != model.RoleMentor && role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var body struct {
		ProjectID uint64 `json:"projectId"`
		Body      string `json:"body"`
		Rating    int    `json:"rating"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	text := strings.TrimSpace(body.Body)
	if text == "" || body.ProjectID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "projectId and body are required"})
	}
	if body.Rating < 0 || body.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be 1-5"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Projects.GetByID(ctx, body.ProjectID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	f := &model.Feedback{ProjectID: body.ProjectID, AuthorID: uid, Body: text, Rating: body.Rating}
	if err := h.Feedback.Create(ctx, f); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create feedback"})
	}
	return c.JSON(http.StatusCreated, f)
}

// ListFeedback handles GET /api/projects/:id/feedback.
func (h *FeedbackHandler) ListFeedback(c echo.Context) error {
	projectID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Feedback.ListByProject(ctx, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
