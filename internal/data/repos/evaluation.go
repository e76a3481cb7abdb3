package repos

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

type EvaluationRepo interface {
	Create(dbc dbctx.Context, row *domain.Evaluation) (*domain.Evaluation, error)
	GetLatestByConversation(dbc dbctx.Context, conversationID uuid.UUID) (*domain.Evaluation, error)
}

type evaluationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvaluationRepo(db *gorm.DB, log *logger.Logger) EvaluationRepo {
	return &evaluationRepo{db: db, log: log.With("repo", "EvaluationRepo")}
}

func (r *evaluationRepo) Create(dbc dbctx.Context, row *domain.Evaluation) (*domain.Evaluation, error) {
	if row == nil {
		return nil, fmt.Errorf("missing evaluation")
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

func (r *evaluationRepo) GetLatestByConversation(dbc dbctx.Context, conversationID uuid.UUID) (*domain.Evaluation, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Evaluation
	if err := txx.WithContext(dbc.Ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// IsUniqueViolation reports a Postgres unique constraint failure
// (SQLSTATE 23505), used to detect a lost evaluation race.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
