package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/clients/gcp"
	"github.com/yungbote/outloud-backend/internal/clients/openai"
	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

// ---- repos ----

type fakeUserRepo struct {
	byID       map[uuid.UUID]*domain.User
	byUsername map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:       map[uuid.UUID]*domain.User{},
		byUsername: map[string]*domain.User{},
	}
}

func (r *fakeUserRepo) Create(dbc dbctx.Context, row *domain.User) (*domain.User, error) {
	if _, ok := r.byUsername[row.Username]; ok {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now()
	r.byID[row.ID] = row
	r.byUsername[row.Username] = row
	return row, nil
}

func (r *fakeUserRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(dbc dbctx.Context, username string) (*domain.User, error) {
	if u, ok := r.byUsername[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeTopicRepo struct {
	topics map[uuid.UUID]*domain.Topic
}

func newFakeTopicRepo(topics ...*domain.Topic) *fakeTopicRepo {
	r := &fakeTopicRepo{topics: map[uuid.UUID]*domain.Topic{}}
	for _, t := range topics {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		r.topics[t.ID] = t
	}
	return r
}

func (r *fakeTopicRepo) Create(dbc dbctx.Context, row *domain.Topic) (*domain.Topic, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	r.topics[row.ID] = row
	return row, nil
}

func (r *fakeTopicRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Topic, error) {
	if t, ok := r.topics[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTopicRepo) GetByTitle(dbc dbctx.Context, title string) (*domain.Topic, error) {
	for _, t := range r.topics {
		if t.Title == title {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTopicRepo) List(dbc dbctx.Context) ([]*domain.Topic, error) {
	out := make([]*domain.Topic, 0, len(r.topics))
	for _, t := range r.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeConversationRepo struct {
	convs  map[uuid.UUID]*domain.Conversation
	topics *fakeTopicRepo
}

func newFakeConversationRepo(topics *fakeTopicRepo) *fakeConversationRepo {
	return &fakeConversationRepo{convs: map[uuid.UUID]*domain.Conversation{}, topics: topics}
}

func (r *fakeConversationRepo) Create(dbc dbctx.Context, row *domain.Conversation) (*domain.Conversation, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now()
	row.CreatedAt = now
	row.UpdatedAt = now
	r.convs[row.ID] = row
	return row, nil
}

func (r *fakeConversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Conversation, error) {
	conv, ok := r.convs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if conv.Topic == nil && r.topics != nil {
		if t, err := r.topics.GetByID(dbc, conv.TopicID); err == nil {
			conv.Topic = t
		}
	}
	// Return a snapshot, like the real repo scanning into a fresh row,
	// so later in-place mutations don't leak into the caller's copy.
	out := *conv
	return &out, nil
}

func (r *fakeConversationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	out := []*domain.Conversation{}
	for _, conv := range r.convs {
		if conv.UserID != nil && *conv.UserID == userID {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeConversationRepo) IncrementTurn(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	conv, ok := r.convs[id]
	if !ok || conv.TurnCount >= domain.MaxTurns {
		return false, nil
	}
	conv.TurnCount++
	conv.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeConversationRepo) SetStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	conv, ok := r.convs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conv.Status = status
	conv.UpdatedAt = time.Now()
	return nil
}

type fakeMessageRepo struct {
	msgs []*domain.Message
}

func (r *fakeMessageRepo) Create(dbc dbctx.Context, row *domain.Message) (*domain.Message, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now().Add(time.Duration(len(r.msgs)) * time.Millisecond)
	r.msgs = append(r.msgs, row)
	return row, nil
}

func (r *fakeMessageRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	out := []*domain.Message{}
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) ListRecent(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*domain.Message, error) {
	all, _ := r.ListByConversation(dbc, conversationID)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (r *fakeMessageRepo) ListBySender(dbc dbctx.Context, conversationID uuid.UUID, sender string) ([]*domain.Message, error) {
	out := []*domain.Message{}
	for _, m := range r.msgs {
		if m.ConversationID == conversationID && m.Sender == sender {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeEvaluationRepo struct {
	evals map[uuid.UUID]*domain.Evaluation
}

func newFakeEvaluationRepo() *fakeEvaluationRepo {
	return &fakeEvaluationRepo{evals: map[uuid.UUID]*domain.Evaluation{}}
}

func (r *fakeEvaluationRepo) Create(dbc dbctx.Context, row *domain.Evaluation) (*domain.Evaluation, error) {
	if _, ok := r.evals[row.ConversationID]; ok {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now()
	r.evals[row.ConversationID] = row
	return row, nil
}

func (r *fakeEvaluationRepo) GetLatestByConversation(dbc dbctx.Context, conversationID uuid.UUID) (*domain.Evaluation, error) {
	if e, ok := r.evals[conversationID]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ---- providers ----

type fakeSpeech struct {
	transcript string
	err        error
}

func (s *fakeSpeech) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return s.transcript, s.err
}

func (s *fakeSpeech) Close() error { return nil }

type fakeBucket struct {
	uploads map[string][]byte
	err     error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{uploads: map[string][]byte{}}
}

func (b *fakeBucket) Upload(ctx context.Context, category gcp.BucketCategory, key string, contentType string, file io.Reader) error {
	if b.err != nil {
		return b.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.uploads[string(category)+"/"+key] = data
	return nil
}

func (b *fakeBucket) Delete(ctx context.Context, category gcp.BucketCategory, key string) error {
	delete(b.uploads, string(category)+"/"+key)
	return nil
}

func (b *fakeBucket) Download(ctx context.Context, category gcp.BucketCategory, key string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

func (b *fakeBucket) GetPublicURL(category gcp.BucketCategory, key string) string {
	return fmt.Sprintf("https://storage.test/%s/%s", category, key)
}

func (b *fakeBucket) Close() error { return nil }

type fakeAI struct {
	reply    string
	replyErr error

	jsonOut map[string]any
	jsonErr error

	audio  []byte
	ttsErr error

	lastInstructions string
	historyLen       int
}

func (a *fakeAI) GenerateReply(ctx context.Context, instructions string, history []openai.Turn) (string, error) {
	a.lastInstructions = instructions
	a.historyLen = len(history)
	if a.replyErr != nil {
		return "", a.replyErr
	}
	return a.reply, nil
}

func (a *fakeAI) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if a.jsonErr != nil {
		return nil, a.jsonErr
	}
	return a.jsonOut, nil
}

func (a *fakeAI) GenerateText(ctx context.Context, system string, user string) (string, error) {
	return a.reply, a.replyErr
}

func (a *fakeAI) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if a.ttsErr != nil {
		return nil, a.ttsErr
	}
	return a.audio, nil
}
