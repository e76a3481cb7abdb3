package repos

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

type ConversationRepo interface {
	Create(dbc dbctx.Context, row *domain.Conversation) (*domain.Conversation, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Conversation, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Conversation, error)
	// IncrementTurn bumps turn_count only while it is below the cap.
	// Returns false when the conversation is missing or already at the
	// cap, so callers can tell a lost race from a normal increment.
	IncrementTurn(dbc dbctx.Context, id uuid.UUID) (bool, error)
	SetStatus(dbc dbctx.Context, id uuid.UUID, status string) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) Create(dbc dbctx.Context, row *domain.Conversation) (*domain.Conversation, error) {
	if row == nil {
		return nil, fmt.Errorf("missing conversation")
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

func (r *conversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Conversation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Preload("Topic").
		First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *conversationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Conversation{}).
		Preload("Topic").
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) IncrementTurn(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND turn_count < ?", id, domain.MaxTurns).
		Updates(map[string]interface{}{
			"turn_count": gorm.Expr("turn_count + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *conversationRepo) SetStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}
