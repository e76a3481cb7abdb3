package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/outloud-backend/internal/http/middleware"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

type Middleware struct {
	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		RequireAuth:  middleware.RequireAuth(s.Auth),
		OptionalAuth: middleware.OptionalAuth(s.Auth),
	}
}
