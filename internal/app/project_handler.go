package app

import (
	"net/http"
	"strconv"

	"github.com/kamruz-zzaman/portfolio-v2/internal/service"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ListProjects
// GET /api/projects?featured=
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var featured *bool
	if raw := c.Query("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			util.BadRequest(c, "Invalid featured filter")
			return
		}
		featured = &v
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), featured)
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{"projects": projects})
}

// GetProject
// GET /api/projects/:slug
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{"project": project})
}

// CreateProject
// POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req service.ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusCreated, "Project created successfully", gin.H{"project": project})
}

// UpdateProject
// PUT /api/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req service.ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Project updated successfully", gin.H{"project": project})
}

// DeleteProject
// DELETE /api/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Project deleted successfully", nil)
}
