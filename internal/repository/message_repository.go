package repository

import (
	"fmt"

	"gorm.io/gorm"

	"gnosis-influencer/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// ListByConversationID returns the full history ascending by timestamp,
// the canonical reading order.
func (r *MessageRepository) ListByConversationID(conversationID uint) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

// CreateBatch inserts all messages in one transaction so a reply thread
// is committed whole or not at all.
func (r *MessageRepository) CreateBatch(messages []model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&messages).Error
	})
	if err != nil {
		return fmt.Errorf("create message batch failed: %w", err)
	}
	return nil
}
