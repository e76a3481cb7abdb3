package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SenderUser = "user"
	SenderAI   = "ai"
)

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index;column:conversation_id" json:"conversation_id"`
	Sender         string    `gorm:"not null;column:sender" json:"sender"`
	Text           string    `gorm:"type:text;not null;column:text" json:"text"`
	AudioURL       *string   `gorm:"column:audio_url" json:"audio_url,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Message) TableName() string { return "message" }
