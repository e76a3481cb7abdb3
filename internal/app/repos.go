package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/data/repos"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

type Repos struct {
	User         repos.UserRepo
	Topic        repos.TopicRepo
	Conversation repos.ConversationRepo
	Message      repos.MessageRepo
	Evaluation   repos.EvaluationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Topic:        repos.NewTopicRepo(db, log),
		Conversation: repos.NewConversationRepo(db, log),
		Message:      repos.NewMessageRepo(db, log),
		Evaluation:   repos.NewEvaluationRepo(db, log),
	}
}
