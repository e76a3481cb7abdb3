package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	PasswordHash *string   `gorm:"column:password_hash" json:"-"`
	IsGuest      bool      `gorm:"not null;default:false;column:is_guest" json:"is_guest"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (User) TableName() string { return "app_user" }
