package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkorolis/studyvault/internal/server/models"
)

type createProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type projectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toProjectResponse(p *models.Project) projectResponse {
	return projectResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

func (s *Server) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := s.projects.Create(c.Request.Context(), callerID(c), req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (s *Server) listProjects(c *gin.Context) {
	list, err := s.projects.List(c.Request.Context(), callerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]projectResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProjectResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

func (s *Server) getProject(c *gin.Context) {
	project, err := s.projects.Get(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (s *Server) deleteProject(c *gin.Context) {
	if err := s.projects.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
