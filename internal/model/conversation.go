package model

import "time"

// Conversation binds one user to one AI persona for a content domain.
// Rows are created by the conversation service; this service only reads
// them and appends AI messages.
type Conversation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	ContentID  uint      `gorm:"not null;index" json:"content_id"`
	StartDate  time.Time `gorm:"not null;autoCreateTime" json:"start_date"`
	LastUpdate time.Time `gorm:"not null;autoUpdateTime" json:"last_update"`
	Messages   []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}
