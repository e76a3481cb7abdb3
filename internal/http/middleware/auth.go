package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/outloud-backend/internal/http/response"
	"github.com/yungbote/outloud-backend/internal/platform/ctxutil"
	"github.com/yungbote/outloud-backend/internal/services"
)

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects requests without a valid bearer token. Missing
// and invalid tokens both get 401 so callers cannot probe for which.
func RequireAuth(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("access token required"))
			c.Abort()
			return
		}
		rd, err := auth.ParseToken(token)
		if err != nil {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid or expired token"))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// OptionalAuth attaches identity when a valid token is present and
// silently continues anonymously otherwise.
func OptionalAuth(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if rd, err := auth.ParseToken(token); err == nil {
				c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
			}
		}
		c.Next()
	}
}
