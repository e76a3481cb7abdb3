package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/domain"
)

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Topic{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.Evaluation{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
