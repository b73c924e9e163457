package model

import "time"

type SenderRole string

const (
	SenderUser SenderRole = "user"
	SenderAI   SenderRole = "ai"
)

// Message is one turn in a conversation. Messages are totally ordered by
// Timestamp within a conversation; that order is the canonical reading
// order. AI messages always carry the content chunk that grounded them.
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;index" json:"conversation_id"`
	Sender         SenderRole `gorm:"size:8;not null" json:"sender"`
	ContentChunkID *uint      `gorm:"index" json:"content_chunk_id,omitempty"`
	MessageText    string     `gorm:"type:text;not null" json:"message_text"`
	Timestamp      time.Time  `gorm:"not null;index" json:"timestamp"`
}
