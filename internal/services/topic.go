package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/data/repos"
	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
	"github.com/yungbote/outloud-backend/internal/platform/apierr"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

// TopicSummary omits material_text; the study material is prompt
// context, never shown to the learner before they explain.
type TopicSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Persona     string    `json:"persona"`
}

type TopicService interface {
	List(ctx context.Context) ([]TopicSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*TopicSummary, error)
}

type topicService struct {
	log    *logger.Logger
	topics repos.TopicRepo
}

func NewTopicService(topics repos.TopicRepo, log *logger.Logger) TopicService {
	return &topicService{
		log:    log.With("service", "TopicService"),
		topics: topics,
	}
}

func (s *topicService) List(ctx context.Context) ([]TopicSummary, error) {
	rows, err := s.topics.List(dbctx.New(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]TopicSummary, 0, len(rows))
	for _, t := range rows {
		out = append(out, summarize(t))
	}
	return out, nil
}

func (s *topicService) Get(ctx context.Context, id uuid.UUID) (*TopicSummary, error) {
	t, err := s.topics.GetByID(dbctx.New(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Newf(http.StatusNotFound, "topic_not_found", "topic not found")
		}
		return nil, err
	}
	out := summarize(t)
	return &out, nil
}

func summarize(t *domain.Topic) TopicSummary {
	return TopicSummary{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Persona:     t.Persona,
	}
}
