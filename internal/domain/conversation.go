package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ConversationStatusActive    = "active"
	ConversationStatusEvaluated = "evaluated"
)

// MaxTurns caps the number of user/ai exchanges per conversation.
const MaxTurns = 3

type Conversation struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`
	TopicID   uuid.UUID  `gorm:"type:uuid;not null;index;column:topic_id" json:"topic_id"`
	Topic     *Topic     `gorm:"foreignKey:TopicID;references:ID" json:"topic,omitempty"`
	Persona   string     `gorm:"not null;column:persona" json:"persona"`
	TurnCount int        `gorm:"not null;default:0;column:turn_count" json:"turn_count"`
	Status    string     `gorm:"not null;default:'active';column:status" json:"status"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

func (c *Conversation) CanContinue() bool {
	return c.TurnCount < MaxTurns
}
