package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkorolis/studyvault/internal/common"
)

// userIDKey is the gin context key the auth middleware stores the caller's
// user ID under.
const userIDKey = "userID"

// requireAuth validates the bearer token and stores the caller's user ID in
// the request context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeader)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimPrefix(header, common.BearerPrefix)

		userID, err := s.users.VerifyAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMessage(err)})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// callerID returns the authenticated user's ID, empty when unauthenticated.
func callerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
