package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkorolis/studyvault/internal/common"
)

// writeError maps service errors onto HTTP statuses. Sentinels from
// internal/common carry the intent; anything unrecognized is a 500 with a
// generic body so internals do not leak.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, common.ErrNotAuthenticated),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errMessage(err)})
	case errors.Is(err, common.ErrMetadataWrite):
		s.log.Error().Err(err).Msg("metadata write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record upload"})
	default:
		var uploadErr *common.ChunkUploadError
		if errors.As(err, &uploadErr) {
			s.log.Error().Err(err).Int("chunk", uploadErr.Index).Msg("upload failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": uploadErr.Error()})
			return
		}
		s.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// errMessage keeps 401 responses informative without exposing wrapped detail.
func errMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return "refresh token expired"
	default:
		return "unauthorized"
	}
}
