package repos_test

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/data/repos"
	"github.com/yungbote/outloud-backend/internal/data/repos/testutil"
	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
)

func TestEvaluationUniquePerConversation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)
	evals := repos.NewEvaluationRepo(db, testutil.Logger(t))

	conv := seedConversation(t, dbc, nil)

	row := &domain.Evaluation{
		ConversationID: conv.ID,
		Scores: datatypes.NewJSONType(domain.EvaluationScores{
			Coverage: 80, Clarity: 70, Correctness: 90, Causality: 60,
		}),
		Heatmap: datatypes.NewJSONType([]domain.HeatmapSegment{
			{Text: "plants use light", Verdict: domain.VerdictStrong},
		}),
		Summary:      "Solid explanation.",
		RetellPrompt: "Explain the Calvin cycle in 20 seconds.",
	}
	if _, err := evals.Create(dbc, row); err != nil {
		t.Fatalf("create evaluation: %v", err)
	}

	_, err := evals.Create(dbc, &domain.Evaluation{ConversationID: conv.ID})
	if err == nil {
		t.Fatalf("second evaluation for the same conversation should fail")
	}
	if !repos.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestEvaluationGetLatestRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)
	evals := repos.NewEvaluationRepo(db, testutil.Logger(t))

	conv := seedConversation(t, dbc, nil)

	if _, err := evals.GetLatestByConversation(dbc, conv.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	row := &domain.Evaluation{
		ConversationID: conv.ID,
		Scores: datatypes.NewJSONType(domain.EvaluationScores{
			Coverage: 55, Clarity: 65, Correctness: 75, Causality: 45,
		}),
		Heatmap: datatypes.NewJSONType([]domain.HeatmapSegment{
			{Text: "it does stuff", Verdict: domain.VerdictVague, Note: "filler words"},
		}),
		Summary:      "Needs more causal detail.",
		RetellPrompt: "In 20 seconds, explain why the light reactions need water.",
	}
	if _, err := evals.Create(dbc, row); err != nil {
		t.Fatalf("create evaluation: %v", err)
	}

	got, err := evals.GetLatestByConversation(dbc, conv.ID)
	if err != nil {
		t.Fatalf("GetLatestByConversation: %v", err)
	}
	scores := got.Scores.Data()
	if scores.Correctness != 75 {
		t.Fatalf("scores did not round-trip: %+v", scores)
	}
	heatmap := got.Heatmap.Data()
	if len(heatmap) != 1 || heatmap[0].Verdict != domain.VerdictVague {
		t.Fatalf("heatmap did not round-trip: %+v", heatmap)
	}
}
