package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/clients/gcp"
	"github.com/yungbote/outloud-backend/internal/clients/openai"
	"github.com/yungbote/outloud-backend/internal/clients/redis"
	"github.com/yungbote/outloud-backend/internal/data/repos"
	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
	"github.com/yungbote/outloud-backend/internal/platform/apierr"
	"github.com/yungbote/outloud-backend/internal/platform/ctxutil"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

const (
	maxAudioBytes  = 10 << 20
	historyWindow  = 10
	turnLockTTL    = 2 * time.Minute
	transcribeWait = 90 * time.Second
)

var allowedAudioMimes = map[string]struct{}{
	"audio/webm":  {},
	"audio/wav":   {},
	"audio/mp4":   {},
	"audio/m4a":   {},
	"audio/x-m4a": {},
	"audio/mpeg":  {},
	"audio/mp3":   {},
	"audio/ogg":   {},
}

type VoiceUpload struct {
	Data     []byte
	MimeType string
	Filename string
}

type TurnResult struct {
	UserMessage *domain.Message `json:"userMessage"`
	AIMessage   *domain.Message `json:"aiMessage"`
	TurnCount   int             `json:"turn_count"`
	CanContinue bool            `json:"can_continue"`
}

type ConversationDetail struct {
	Conversation *domain.Conversation `json:"conversation"`
	Messages     []*domain.Message    `json:"messages"`
	Evaluation   *domain.Evaluation   `json:"evaluation,omitempty"`
}

type ConversationService interface {
	Create(ctx context.Context, topicID uuid.UUID, persona string, caller *ctxutil.RequestData) (*domain.Conversation, error)
	GetDetail(ctx context.Context, id uuid.UUID, caller *ctxutil.RequestData) (*ConversationDetail, error)
	ListForUser(ctx context.Context, caller *ctxutil.RequestData) ([]*domain.Conversation, error)
	SubmitVoiceTurn(ctx context.Context, id uuid.UUID, caller *ctxutil.RequestData, upload VoiceUpload) (*TurnResult, error)
}

type conversationService struct {
	log           *logger.Logger
	conversations repos.ConversationRepo
	messages      repos.MessageRepo
	evaluations   repos.EvaluationRepo
	topics        repos.TopicRepo
	speech        gcp.Speech
	bucket        gcp.BucketService
	ai            openai.Client
	locker        redis.TurnLocker
}

func NewConversationService(
	conversations repos.ConversationRepo,
	messages repos.MessageRepo,
	evaluations repos.EvaluationRepo,
	topics repos.TopicRepo,
	speech gcp.Speech,
	bucket gcp.BucketService,
	ai openai.Client,
	locker redis.TurnLocker,
	log *logger.Logger,
) ConversationService {
	return &conversationService{
		log:           log.With("service", "ConversationService"),
		conversations: conversations,
		messages:      messages,
		evaluations:   evaluations,
		topics:        topics,
		speech:        speech,
		bucket:        bucket,
		ai:            ai,
		locker:        locker,
	}
}

func (s *conversationService) Create(ctx context.Context, topicID uuid.UUID, persona string, caller *ctxutil.RequestData) (*domain.Conversation, error) {
	p, ok := domain.ParsePersona(persona)
	if !ok {
		return nil, apierr.Newf(http.StatusBadRequest, "invalid_persona", "persona must be one of mentor, critic, buddy, coach")
	}

	dbc := dbctx.New(ctx)
	topic, err := s.topics.GetByID(dbc, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Newf(http.StatusNotFound, "topic_not_found", "topic not found")
		}
		return nil, err
	}

	conv := &domain.Conversation{
		TopicID:   topic.ID,
		Persona:   string(p),
		TurnCount: 0,
		Status:    domain.ConversationStatusActive,
	}
	if caller != nil {
		uid := caller.UserID
		conv.UserID = &uid
	}

	created, err := s.conversations.Create(dbc, conv)
	if err != nil {
		return nil, err
	}
	created.Topic = topic
	return created, nil
}

func (s *conversationService) GetDetail(ctx context.Context, id uuid.UUID, caller *ctxutil.RequestData) (*ConversationDetail, error) {
	dbc := dbctx.New(ctx)
	conv, err := s.loadAuthorized(dbc, id, caller)
	if err != nil {
		return nil, err
	}

	var (
		msgs []*domain.Message
		eval *domain.Evaluation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		msgs, err = s.messages.ListByConversation(dbctx.New(gctx), id)
		return err
	})
	g.Go(func() error {
		e, err := s.evaluations.GetLatestByConversation(dbctx.New(gctx), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		eval = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ConversationDetail{
		Conversation: conv,
		Messages:     msgs,
		Evaluation:   eval,
	}, nil
}

func (s *conversationService) ListForUser(ctx context.Context, caller *ctxutil.RequestData) ([]*domain.Conversation, error) {
	if caller == nil {
		return nil, apierr.Newf(http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return s.conversations.ListByUser(dbctx.New(ctx), caller.UserID)
}

func (s *conversationService) SubmitVoiceTurn(ctx context.Context, id uuid.UUID, caller *ctxutil.RequestData, upload VoiceUpload) (*TurnResult, error) {
	// Reject bad uploads before any I/O.
	if len(upload.Data) == 0 {
		return nil, apierr.Newf(http.StatusBadRequest, "missing_audio", "audio file required")
	}
	mime := normalizeMime(upload.MimeType)
	if _, ok := allowedAudioMimes[mime]; !ok {
		return nil, apierr.Newf(http.StatusBadRequest, "unsupported_media_type", "unsupported audio type %q", upload.MimeType)
	}
	if len(upload.Data) > maxAudioBytes {
		return nil, apierr.Newf(http.StatusBadRequest, "payload_too_large", "audio exceeds %d bytes", maxAudioBytes)
	}

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, id, turnLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apierr.Newf(http.StatusConflict, "turn_in_progress", "another turn is being processed")
		}
		defer release()
	}

	dbc := dbctx.New(ctx)
	conv, err := s.loadAuthorized(dbc, id, caller)
	if err != nil {
		return nil, err
	}
	if !conv.CanContinue() {
		return nil, apierr.Newf(http.StatusForbidden, "turn_limit_reached", "conversation already has %d turns", domain.MaxTurns)
	}
	topic := conv.Topic
	if topic == nil {
		return nil, fmt.Errorf("conversation %s missing topic", conv.ID)
	}

	userAudioURL := s.storeUserAudio(ctx, conv.ID, upload, mime)

	transcript, err := s.transcribe(ctx, upload.Data, mime)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.messages.Create(dbc, &domain.Message{
		ConversationID: conv.ID,
		Sender:         domain.SenderUser,
		Text:           transcript,
		AudioURL:       userAudioURL,
	})
	if err != nil {
		return nil, err
	}

	history, err := s.messages.ListRecent(dbc, conv.ID, historyWindow)
	if err != nil {
		return nil, err
	}

	instructions := PersonaInstructions(domain.PersonaOrNeutral(conv.Persona), topic.Title, topic.MaterialText)
	replyText, err := s.ai.GenerateReply(ctx, instructions, toTurns(history))
	if err != nil {
		// The user message stays: the learner's words are kept even
		// when the reply cannot be produced.
		s.log.Error("reply generation failed", "conversation_id", conv.ID, "error", err.Error())
		return nil, apierr.New(http.StatusBadGateway, "generation_failed", err)
	}

	aiAudioURL := s.synthesizeReply(ctx, conv.ID, replyText)

	aiMsg, err := s.messages.Create(dbc, &domain.Message{
		ConversationID: conv.ID,
		Sender:         domain.SenderAI,
		Text:           replyText,
		AudioURL:       aiAudioURL,
	})
	if err != nil {
		return nil, err
	}

	bumped, err := s.conversations.IncrementTurn(dbc, conv.ID)
	if err != nil {
		return nil, err
	}
	if !bumped {
		// A concurrent submitter consumed the last turn between the
		// limit check and the increment.
		return nil, apierr.Newf(http.StatusForbidden, "turn_limit_reached", "conversation already has %d turns", domain.MaxTurns)
	}

	turnCount := conv.TurnCount + 1
	return &TurnResult{
		UserMessage: userMsg,
		AIMessage:   aiMsg,
		TurnCount:   turnCount,
		CanContinue: turnCount < domain.MaxTurns,
	}, nil
}

func (s *conversationService) loadAuthorized(dbc dbctx.Context, id uuid.UUID, caller *ctxutil.RequestData) (*domain.Conversation, error) {
	conv, err := s.conversations.GetByID(dbc, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Newf(http.StatusNotFound, "conversation_not_found", "conversation not found")
		}
		return nil, err
	}
	// Owned conversations are private to the owner. Ownerless ones are
	// readable by whoever holds the conversation ID.
	if conv.UserID != nil {
		if caller == nil || caller.UserID != *conv.UserID {
			return nil, apierr.Newf(http.StatusForbidden, "forbidden", "not your conversation")
		}
	}
	return conv, nil
}

func (s *conversationService) transcribe(ctx context.Context, audio []byte, mime string) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, transcribeWait)
	defer cancel()

	transcript, err := s.speech.Transcribe(tctx, audio, mime)
	if err != nil {
		if gcp.IsUnavailable(err) {
			return "", apierr.New(http.StatusServiceUnavailable, "stt_unavailable", err)
		}
		return "", apierr.New(http.StatusInternalServerError, "transcription_failed", err)
	}
	if strings.TrimSpace(transcript) == "" {
		return "", apierr.Newf(http.StatusInternalServerError, "transcription_failed", "empty transcript")
	}
	return transcript, nil
}

// storeUserAudio uploads the recording and returns its public URL.
// Failures degrade to a text-only message rather than failing the turn.
func (s *conversationService) storeUserAudio(ctx context.Context, convID uuid.UUID, upload VoiceUpload, mime string) *string {
	key := fmt.Sprintf("%s/%d_%s", convID, time.Now().UnixMilli(), sanitizeFilename(upload.Filename))
	if err := s.bucket.Upload(ctx, gcp.BucketCategoryUserAudio, key, mime, bytes.NewReader(upload.Data)); err != nil {
		s.log.Warn("user audio upload failed", "conversation_id", convID, "error", err.Error())
		return nil
	}
	url := s.bucket.GetPublicURL(gcp.BucketCategoryUserAudio, key)
	return &url
}

func (s *conversationService) synthesizeReply(ctx context.Context, convID uuid.UUID, text string) *string {
	audio, err := s.ai.Synthesize(ctx, text)
	if err != nil {
		s.log.Warn("tts failed, continuing text-only", "conversation_id", convID, "error", err.Error())
		return nil
	}
	key := fmt.Sprintf("%s/%d.mp3", convID, time.Now().UnixMilli())
	if err := s.bucket.Upload(ctx, gcp.BucketCategoryAIAudio, key, "audio/mpeg", bytes.NewReader(audio)); err != nil {
		s.log.Warn("ai audio upload failed, continuing text-only", "conversation_id", convID, "error", err.Error())
		return nil
	}
	url := s.bucket.GetPublicURL(gcp.BucketCategoryAIAudio, key)
	return &url
}

func toTurns(msgs []*domain.Message) []openai.Turn {
	out := make([]openai.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Sender == domain.SenderAI {
			role = "assistant"
		}
		out = append(out, openai.Turn{Role: role, Text: m.Text})
	}
	return out
}

func normalizeMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	// Recorders append codec parameters, e.g. audio/webm;codecs=opus.
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		return "recording"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
