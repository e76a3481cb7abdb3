package repos_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/yungbote/outloud-backend/internal/data/repos"
	"github.com/yungbote/outloud-backend/internal/data/repos/testutil"
	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
)

func TestMessageListRecentWindow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)
	msgs := repos.NewMessageRepo(db, testutil.Logger(t))

	conv := seedConversation(t, dbc, nil)

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 12; i++ {
		sender := domain.SenderUser
		if i%2 == 1 {
			sender = domain.SenderAI
		}
		if _, err := msgs.Create(dbc, &domain.Message{
			ConversationID: conv.ID,
			Sender:         sender,
			Text:           fmt.Sprintf("message %d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("create message %d: %v", i, err)
		}
	}

	recent, err := msgs.ListRecent(dbc, conv.ID, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 10 {
		t.Fatalf("expected 10 messages, got %d", len(recent))
	}
	// Oldest two fall out of the window and order is ascending.
	if recent[0].Text != "message 2" || recent[9].Text != "message 11" {
		t.Fatalf("window wrong: first=%q last=%q", recent[0].Text, recent[9].Text)
	}

	// Out-of-range limits fall back to the default window.
	recent, err = msgs.ListRecent(dbc, conv.ID, 0)
	if err != nil {
		t.Fatalf("ListRecent default: %v", err)
	}
	if len(recent) != 10 {
		t.Fatalf("default window = %d, want 10", len(recent))
	}
}

func TestMessageListBySender(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)
	msgs := repos.NewMessageRepo(db, testutil.Logger(t))

	conv := seedConversation(t, dbc, nil)

	base := time.Now().Add(-time.Minute)
	rows := []struct {
		sender string
		text   string
	}{
		{domain.SenderUser, "plants use light"},
		{domain.SenderAI, "go on"},
		{domain.SenderUser, "and make sugar"},
	}
	for i, row := range rows {
		if _, err := msgs.Create(dbc, &domain.Message{
			ConversationID: conv.ID,
			Sender:         row.sender,
			Text:           row.text,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("create message %d: %v", i, err)
		}
	}

	userMsgs, err := msgs.ListBySender(dbc, conv.ID, domain.SenderUser)
	if err != nil {
		t.Fatalf("ListBySender: %v", err)
	}
	if len(userMsgs) != 2 {
		t.Fatalf("expected 2 user messages, got %d", len(userMsgs))
	}
	if userMsgs[0].Text != "plants use light" || userMsgs[1].Text != "and make sugar" {
		t.Fatalf("wrong order: %q then %q", userMsgs[0].Text, userMsgs[1].Text)
	}
}
