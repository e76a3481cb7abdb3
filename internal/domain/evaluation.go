package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	VerdictStrong        = "strong"
	VerdictVague         = "vague"
	VerdictMisconception = "misconception"
)

// EvaluationScores are the four rubric dimensions, each in [0,100].
type EvaluationScores struct {
	Coverage    int `json:"coverage"`
	Clarity     int `json:"clarity"`
	Correctness int `json:"correctness"`
	Causality   int `json:"causality"`
}

// HeatmapSegment labels a span of the learner's transcript.
type HeatmapSegment struct {
	Text    string `json:"text"`
	Verdict string `json:"verdict"`
	Note    string `json:"note,omitempty"`
}

type Evaluation struct {
	ID             uuid.UUID                                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID                                 `gorm:"type:uuid;not null;uniqueIndex:idx_evaluation_conversation;column:conversation_id" json:"conversation_id"`
	Scores         datatypes.JSONType[EvaluationScores]      `gorm:"column:scores" json:"scores"`
	Heatmap        datatypes.JSONType[[]HeatmapSegment]      `gorm:"column:heatmap" json:"heatmap"`
	Summary        string                                    `gorm:"type:text;not null;column:summary" json:"summary"`
	RetellPrompt   string                                    `gorm:"type:text;not null;column:retell_prompt" json:"retell_prompt"`
	CreatedAt      time.Time                                 `gorm:"not null;default:now()" json:"created_at"`
}

func (Evaluation) TableName() string { return "evaluation" }
