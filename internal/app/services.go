package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/platform/logger"
	"github.com/yungbote/outloud-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Topic        services.TopicService
	Conversation services.ConversationService
	Evaluation   services.EvaluationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(r.User, cfg.JWTSecret, log)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	topic := services.NewTopicService(r.Topic, log)

	conversation := services.NewConversationService(
		r.Conversation,
		r.Message,
		r.Evaluation,
		r.Topic,
		c.GcpSpeech,
		c.GcpBucket,
		c.OpenaiClient,
		c.TurnLocker,
		log,
	)

	evaluation := services.NewEvaluationService(
		db,
		r.Conversation,
		r.Message,
		r.Evaluation,
		c.OpenaiClient,
		log,
	)

	return Services{
		Auth:         auth,
		Topic:        topic,
		Conversation: conversation,
		Evaluation:   evaluation,
	}, nil
}
