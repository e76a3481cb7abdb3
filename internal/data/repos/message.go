package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

type MessageRepo interface {
	Create(dbc dbctx.Context, row *domain.Message) (*domain.Message, error)
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*domain.Message, error)
	ListRecent(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*domain.Message, error)
	ListBySender(dbc dbctx.Context, conversationID uuid.UUID, sender string) ([]*domain.Message, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: log.With("repo", "MessageRepo")}
}

func (r *messageRepo) Create(dbc dbctx.Context, row *domain.Message) (*domain.Message, error) {
	if row == nil {
		return nil, fmt.Errorf("missing message")
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

func (r *messageRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Message
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepo) ListRecent(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*domain.Message, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Message
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	// Normalize to ASC for prompt assembly.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *messageRepo) ListBySender(dbc dbctx.Context, conversationID uuid.UUID, sender string) ([]*domain.Message, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	if sender == "" {
		return nil, fmt.Errorf("missing sender")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Message
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ? AND sender = ?", conversationID, sender).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
