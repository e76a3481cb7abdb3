package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

type TopicRepo interface {
	Create(dbc dbctx.Context, row *domain.Topic) (*domain.Topic, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Topic, error)
	GetByTitle(dbc dbctx.Context, title string) (*domain.Topic, error)
	List(dbc dbctx.Context) ([]*domain.Topic, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, log *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: log.With("repo", "TopicRepo")}
}

func (r *topicRepo) Create(dbc dbctx.Context, row *domain.Topic) (*domain.Topic, error) {
	if row == nil {
		return nil, fmt.Errorf("missing topic")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *topicRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Topic, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Topic
	if err := txx.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *topicRepo) GetByTitle(dbc dbctx.Context, title string) (*domain.Topic, error) {
	if title == "" {
		return nil, fmt.Errorf("missing title")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Topic
	if err := txx.WithContext(dbc.Ctx).First(&out, "title = ?", title).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *topicRepo) List(dbc dbctx.Context) ([]*domain.Topic, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Topic
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Topic{}).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
