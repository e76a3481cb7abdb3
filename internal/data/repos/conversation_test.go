package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/outloud-backend/internal/data/repos"
	"github.com/yungbote/outloud-backend/internal/data/repos/testutil"
	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
)

func seedTopic(t *testing.T, dbc dbctx.Context) *domain.Topic {
	t.Helper()
	topics := repos.NewTopicRepo(testutil.DB(t), testutil.Logger(t))
	topic, err := topics.Create(dbc, &domain.Topic{
		Title:        "Photosynthesis " + uuid.NewString(),
		Description:  "how plants make sugar",
		Persona:      "mentor",
		MaterialText: "chlorophyll absorbs light",
	})
	if err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	return topic
}

func seedConversation(t *testing.T, dbc dbctx.Context, userID *uuid.UUID) *domain.Conversation {
	t.Helper()
	convs := repos.NewConversationRepo(testutil.DB(t), testutil.Logger(t))
	topic := seedTopic(t, dbc)
	conv, err := convs.Create(dbc, &domain.Conversation{
		UserID:  userID,
		TopicID: topic.ID,
		Persona: "mentor",
		Status:  domain.ConversationStatusActive,
	})
	if err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	return conv
}

func TestConversationIncrementTurnStopsAtCap(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)
	convs := repos.NewConversationRepo(db, testutil.Logger(t))

	conv := seedConversation(t, dbc, nil)

	for i := 0; i < domain.MaxTurns; i++ {
		bumped, err := convs.IncrementTurn(dbc, conv.ID)
		if err != nil {
			t.Fatalf("increment %d: %v", i+1, err)
		}
		if !bumped {
			t.Fatalf("increment %d should succeed", i+1)
		}
	}

	bumped, err := convs.IncrementTurn(dbc, conv.ID)
	if err != nil {
		t.Fatalf("increment past cap: %v", err)
	}
	if bumped {
		t.Fatalf("increment past cap should report false")
	}

	got, err := convs.GetByID(dbc, conv.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TurnCount != domain.MaxTurns {
		t.Fatalf("turn_count = %d, want %d", got.TurnCount, domain.MaxTurns)
	}
}

func TestConversationIncrementTurnMissingRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)
	convs := repos.NewConversationRepo(db, testutil.Logger(t))

	bumped, err := convs.IncrementTurn(dbc, uuid.New())
	if err != nil {
		t.Fatalf("IncrementTurn: %v", err)
	}
	if bumped {
		t.Fatalf("missing conversation should not increment")
	}
}

func TestConversationGetByIDPreloadsTopic(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)
	convs := repos.NewConversationRepo(db, testutil.Logger(t))

	conv := seedConversation(t, dbc, nil)

	got, err := convs.GetByID(dbc, conv.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Topic == nil || got.Topic.ID != conv.TopicID {
		t.Fatalf("topic not preloaded: %+v", got.Topic)
	}
}

func TestConversationListByUserOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)
	convs := repos.NewConversationRepo(db, testutil.Logger(t))
	users := repos.NewUserRepo(db, testutil.Logger(t))

	user, err := users.Create(dbc, &domain.User{Username: "u_" + uuid.NewString(), IsGuest: true})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	first := seedConversation(t, dbc, &user.ID)
	second := seedConversation(t, dbc, &user.ID)
	seedConversation(t, dbc, nil)

	// A turn on the older conversation moves it to the front.
	time.Sleep(10 * time.Millisecond)
	if _, err := convs.IncrementTurn(dbc, first.ID); err != nil {
		t.Fatalf("IncrementTurn: %v", err)
	}

	got, err := convs.ListByUser(dbc, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("wrong order: %s then %s", got[0].ID, got[1].ID)
	}
}
