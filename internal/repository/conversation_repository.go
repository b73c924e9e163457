package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gnosis-influencer/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetByID returns the conversation or nil when no row matches; a missing
// conversation is a normal outcome, not an error.
func (r *ConversationRepository) GetByID(id uint) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.First(&conversation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conversation, nil
}

// Touch refreshes last_update after messages were appended.
func (r *ConversationRepository) Touch(id uint) error {
	if err := r.db.Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("last_update", time.Now()).Error; err != nil {
		return fmt.Errorf("touch conversation failed: %w", err)
	}
	return nil
}
