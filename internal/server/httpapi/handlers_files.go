package httpapi

import (
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/mkorolis/studyvault/internal/server/models"
)

type fileResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	IsChunked   bool      `json:"is_chunked"`
	TotalChunks int       `json:"total_chunks,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toFileResponse(rec *models.FileRecord) fileResponse {
	return fileResponse{
		ID:          rec.ID,
		ProjectID:   rec.ProjectID,
		Name:        rec.Name,
		ContentType: rec.ContentType,
		Size:        rec.FileSize,
		IsChunked:   rec.IsChunked,
		TotalChunks: rec.TotalChunks,
		CreatedAt:   rec.CreatedAt,
	}
}

// uploadFile accepts a multipart form with a single "file" field and stores
// it through the chunked upload pipeline.
func (s *Server) uploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if mt, derr := mimetype.DetectReader(src); derr == nil {
			contentType = mt.String()
		}
		if _, serr := src.Seek(0, 0); serr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": serr.Error()})
			return
		}
	}

	rec, err := s.files.UploadFile(c.Request.Context(), callerID(c), c.Param("id"), header.Filename, contentType, src, header.Size,
		func(percent int, stage string) {
			s.log.Debug().Int("percent", percent).Str("stage", stage).Str("file", header.Filename).Msg("upload progress")
		})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFileResponse(rec))
}

func (s *Server) listFiles(c *gin.Context) {
	records, err := s.files.ListFiles(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]fileResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toFileResponse(rec))
	}
	c.JSON(http.StatusOK, gin.H{"files": out})
}

func (s *Server) getFile(c *gin.Context) {
	rec, err := s.files.GetFile(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFileResponse(rec))
}

// downloadFile streams the complete file body, reconstructing chunked files
// transparently.
func (s *Server) downloadFile(c *gin.Context) {
	rec, data, err := s.files.OpenFile(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+rec.Name+`"`)
	c.Data(http.StatusOK, rec.ContentType, data)
}

func (s *Server) presignDownload(c *gin.Context) {
	url, err := s.files.PresignDownload(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (s *Server) deleteFile(c *gin.Context) {
	if err := s.files.DeleteFile(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type beginUploadRequest struct {
	Name        string `json:"name" binding:"required"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size" binding:"required"`
}

// beginUpload plans a client-driven upload and hands back presigned part
// URLs.
func (s *Server) beginUpload(c *gin.Context) {
	var req beginUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ContentType == "" {
		req.ContentType = "application/octet-stream"
	}

	ticket, err := s.files.BeginChunkedUpload(c.Request.Context(), callerID(c), c.Param("id"), req.Name, req.ContentType, req.Size)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// completeUpload confirms a client-driven upload and writes the file record.
func (s *Server) completeUpload(c *gin.Context) {
	var ticket models.UploadTicket
	if err := c.ShouldBindJSON(&ticket); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.files.CompleteChunkedUpload(c.Request.Context(), callerID(c), &ticket)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFileResponse(rec))
}
