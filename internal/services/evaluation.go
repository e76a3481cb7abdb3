package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/clients/openai"
	"github.com/yungbote/outloud-backend/internal/data/repos"
	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
	"github.com/yungbote/outloud-backend/internal/platform/apierr"
	"github.com/yungbote/outloud-backend/internal/platform/ctxutil"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

const (
	defaultSummary      = "Evaluation completed."
	defaultRetellPrompt = "Try explaining again with more detail."
)

type EvaluationService interface {
	Evaluate(ctx context.Context, conversationID uuid.UUID, caller *ctxutil.RequestData) (*domain.Evaluation, error)
	GetLatest(ctx context.Context, conversationID uuid.UUID, caller *ctxutil.RequestData) (*domain.Evaluation, error)
}

type evaluationService struct {
	log           *logger.Logger
	db            *gorm.DB
	conversations repos.ConversationRepo
	messages      repos.MessageRepo
	evaluations   repos.EvaluationRepo
	ai            openai.Client
}

func NewEvaluationService(
	db *gorm.DB,
	conversations repos.ConversationRepo,
	messages repos.MessageRepo,
	evaluations repos.EvaluationRepo,
	ai openai.Client,
	log *logger.Logger,
) EvaluationService {
	return &evaluationService{
		log:           log.With("service", "EvaluationService"),
		db:            db,
		conversations: conversations,
		messages:      messages,
		evaluations:   evaluations,
		ai:            ai,
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, conversationID uuid.UUID, caller *ctxutil.RequestData) (*domain.Evaluation, error) {
	dbc := dbctx.New(ctx)

	conv, err := s.loadAuthorized(dbc, conversationID, caller)
	if err != nil {
		return nil, err
	}
	if conv.Status == domain.ConversationStatusEvaluated {
		return nil, apierr.Newf(http.StatusBadRequest, "already_evaluated", "conversation already evaluated")
	}

	userMsgs, err := s.messages.ListBySender(dbc, conversationID, domain.SenderUser)
	if err != nil {
		return nil, err
	}
	transcript := joinTranscript(userMsgs)
	if transcript == "" {
		return nil, apierr.Newf(http.StatusBadRequest, "nothing_to_evaluate", "no user messages to evaluate")
	}

	topicTitle := ""
	materialText := ""
	if conv.Topic != nil {
		topicTitle = conv.Topic.Title
		materialText = conv.Topic.MaterialText
	}

	raw, err := s.ai.GenerateJSON(ctx,
		evaluatorSystemPrompt,
		evaluatorUserPrompt(transcript, materialText, topicTitle),
		"explanation_evaluation",
		evaluationSchema(),
	)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "evaluation_failed", err)
	}

	scores, heatmap, summary, retell := sanitizeEvaluation(raw)

	eval := &domain.Evaluation{
		ConversationID: conversationID,
		Scores:         datatypes.NewJSONType(scores),
		Heatmap:        datatypes.NewJSONType(heatmap),
		Summary:        summary,
		RetellPrompt:   retell,
	}

	err = s.withTx(ctx, func(txc dbctx.Context) error {
		if _, err := s.evaluations.Create(txc, eval); err != nil {
			return err
		}
		return s.conversations.SetStatus(txc, conversationID, domain.ConversationStatusEvaluated)
	})
	if err != nil {
		// The unique index is the backstop when two evaluate calls race
		// past the status check.
		if repos.IsUniqueViolation(err) {
			return nil, apierr.Newf(http.StatusBadRequest, "already_evaluated", "conversation already evaluated")
		}
		return nil, err
	}

	return eval, nil
}

func (s *evaluationService) GetLatest(ctx context.Context, conversationID uuid.UUID, caller *ctxutil.RequestData) (*domain.Evaluation, error) {
	dbc := dbctx.New(ctx)

	if _, err := s.loadAuthorized(dbc, conversationID, caller); err != nil {
		return nil, err
	}

	eval, err := s.evaluations.GetLatestByConversation(dbc, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Newf(http.StatusNotFound, "evaluation_not_found", "conversation not yet evaluated")
		}
		return nil, err
	}
	return eval, nil
}

func (s *evaluationService) loadAuthorized(dbc dbctx.Context, id uuid.UUID, caller *ctxutil.RequestData) (*domain.Conversation, error) {
	conv, err := s.conversations.GetByID(dbc, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Newf(http.StatusNotFound, "conversation_not_found", "conversation not found")
		}
		return nil, err
	}
	if conv.UserID != nil {
		if caller == nil || caller.UserID != *conv.UserID {
			return nil, apierr.Newf(http.StatusForbidden, "forbidden", "not your conversation")
		}
	}
	return conv, nil
}

func (s *evaluationService) withTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if s.db == nil {
		return fn(dbctx.New(ctx))
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.WithTx(ctx, tx))
	})
}

func joinTranscript(msgs []*domain.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if t := strings.TrimSpace(m.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// sanitizeEvaluation never trusts model output: scores clamp to
// [0,100] with non-numeric values treated as 0, malformed heatmap
// entries are dropped, and empty text fields get stable defaults.
func sanitizeEvaluation(raw map[string]any) (domain.EvaluationScores, []domain.HeatmapSegment, string, string) {
	scores := domain.EvaluationScores{}
	if sm, ok := raw["scores"].(map[string]any); ok {
		scores.Coverage = clampScore(sm["coverage"])
		scores.Clarity = clampScore(sm["clarity"])
		scores.Correctness = clampScore(sm["correctness"])
		scores.Causality = clampScore(sm["causality"])
	}

	heatmap := []domain.HeatmapSegment{}
	if hm, ok := raw["heatmap"].([]any); ok {
		for _, item := range hm {
			seg, ok := item.(map[string]any)
			if !ok {
				continue
			}
			text, _ := seg["text"].(string)
			if strings.TrimSpace(text) == "" {
				continue
			}
			verdict, _ := seg["verdict"].(string)
			switch verdict {
			case domain.VerdictStrong, domain.VerdictVague, domain.VerdictMisconception:
			default:
				verdict = domain.VerdictVague
			}
			note, _ := seg["note"].(string)
			heatmap = append(heatmap, domain.HeatmapSegment{
				Text:    text,
				Verdict: verdict,
				Note:    note,
			})
		}
	}

	summary, _ := raw["summary"].(string)
	if strings.TrimSpace(summary) == "" {
		summary = defaultSummary
	}
	retell, _ := raw["retell_prompt"].(string)
	if strings.TrimSpace(retell) == "" {
		retell = defaultRetellPrompt
	}

	return scores, heatmap, summary, retell
}

func clampScore(v any) int {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case int:
		n = float64(t)
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return int(n)
}
