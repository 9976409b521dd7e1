// Package httpapi exposes the server's HTTP surface: authentication,
// projects, file uploads and downloads, plus health and metrics endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mkorolis/studyvault/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the gin engine with graceful shutdown helpers.
type Server struct {
	addr     string
	engine   *gin.Engine
	log      zerolog.Logger
	users    *services.UserService
	projects *services.ProjectService
	files    *services.FileService
}

// New constructs the HTTP server with default middleware and routes.
func New(addr string, log zerolog.Logger, users *services.UserService, projects *services.ProjectService, files *services.FileService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:     addr,
		engine:   gin.New(),
		log:      log.With().Str("component", "http-server").Logger(),
		users:    users,
		projects: projects,
		files:    files,
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)

	authed := v1.Group("")
	authed.Use(s.requireAuth())

	authed.GET("/projects", s.listProjects)
	authed.POST("/projects", s.createProject)
	authed.GET("/projects/:id", s.getProject)
	authed.DELETE("/projects/:id", s.deleteProject)

	authed.GET("/projects/:id/files", s.listFiles)
	authed.POST("/projects/:id/files", s.uploadFile)
	authed.POST("/projects/:id/uploads", s.beginUpload)
	authed.POST("/uploads/complete", s.completeUpload)

	authed.GET("/files/:id", s.getFile)
	authed.GET("/files/:id/content", s.downloadFile)
	authed.GET("/files/:id/url", s.presignDownload)
	authed.DELETE("/files/:id", s.deleteFile)
}

// Run starts the HTTP listener and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
