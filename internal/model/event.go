package model

import "time"

// ReplyAppendedEvent is published after a reply batch commits. Consumers
// use it to refresh conversation metadata without blocking the request.
type ReplyAppendedEvent struct {
	ConversationID uint      `json:"conversation_id"`
	ContentChunkID uint      `json:"content_chunk_id"`
	MessageCount   int       `json:"message_count"`
	AppendedAt     time.Time `json:"appended_at"`
}
