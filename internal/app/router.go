package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/outloud-backend/internal/platform/logger"
	"github.com/yungbote/outloud-backend/internal/server"
)

func wireRouter(log *logger.Logger, cfg Config, h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:          log,
		ServiceName:  cfg.ServiceName,
		Health:       h.Health,
		Auth:         h.Auth,
		Topic:        h.Topic,
		Conversation: h.Conversation,
		Evaluation:   h.Evaluation,
		RequireAuth:  m.RequireAuth,
		OptionalAuth: m.OptionalAuth,
	})
}
