package app

import (
	"github.com/yungbote/outloud-backend/internal/http/handlers"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

type Handlers struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Topic        *handlers.TopicHandler
	Conversation *handlers.ConversationHandler
	Evaluation   *handlers.EvaluationHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       handlers.NewHealthHandler(),
		Auth:         handlers.NewAuthHandler(s.Auth),
		Topic:        handlers.NewTopicHandler(s.Topic),
		Conversation: handlers.NewConversationHandler(s.Conversation),
		Evaluation:   handlers.NewEvaluationHandler(s.Evaluation),
	}
}
