package domain

import (
	"time"

	"github.com/google/uuid"
)

// Topic is curated study material a conversation is grounded in.
// Topics are seeded by cmd/seed-topics, never created over HTTP.
type Topic struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title        string    `gorm:"not null;column:title" json:"title"`
	Description  string    `gorm:"column:description" json:"description"`
	Persona      string    `gorm:"column:persona" json:"persona"`
	MaterialText string    `gorm:"type:text;column:material_text" json:"-"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Topic) TableName() string { return "topic" }
