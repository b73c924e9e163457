package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gnosis-influencer/internal/ai"
	"gnosis-influencer/internal/model"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUpstream             = errors.New("upstream service unavailable")
	ErrNoReplyBasis         = errors.New("no message to base a reply on")
	ErrNoSimilarContent     = errors.New("no similar content found")
	ErrGeneration           = errors.New("reply generation failed")
	ErrInvalidModelOutput   = errors.New("invalid model output")
)

// ConversationStore reads conversations. GetByID returns nil (not an
// error) when the id does not resolve.
type ConversationStore interface {
	GetByID(id uint) (*model.Conversation, error)
}

// MessageStore reads a conversation's history and appends reply batches
// atomically.
type MessageStore interface {
	ListByConversationID(conversationID uint) ([]model.Message, error)
	CreateBatch(messages []model.Message) error
}

// PersonaProvider fetches the system instructions steering the AI's voice
// for a content domain.
type PersonaProvider interface {
	SystemInstructions(ctx context.Context, contentID uint) (string, error)
}

// ChunkFetcher resolves a content chunk id to its text.
type ChunkFetcher interface {
	ChunkText(ctx context.Context, chunkID uint) (string, error)
}

type SearchInput struct {
	UserID    uint
	ContentID uint
	QueryText string
	Limit     int
}

type SearchMatch struct {
	ChunkID uint
	Text    string
}

// SimilaritySearcher finds the content chunks most similar to a query.
// Ranking is the collaborator's business; only the ordered matches come
// back. Implementations may scope by user only or by user and content.
type SimilaritySearcher interface {
	SearchSimilar(ctx context.Context, input SearchInput) ([]SearchMatch, error)
}

// ChatCompleter invokes the generative model and returns its raw text.
type ChatCompleter interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// ReplyEventPublisher announces a committed reply batch to downstream
// consumers.
type ReplyEventPublisher interface {
	Publish(ctx context.Context, event model.ReplyAppendedEvent) error
}

type GenerateReplyInput struct {
	ConversationID uint
	ContentChunkID uint // 0 = resolve by similarity search
}

type GenerateReplyResult struct {
	ConversationID uint            `json:"conversation_id"`
	ContentChunkID uint            `json:"content_chunk_id"`
	Messages       []model.Message `json:"messages"`
}

type grounding struct {
	ChunkID uint
	Text    string
}

// ReplyService runs the grounding-and-generation pipeline: load history,
// resolve grounding, fetch persona, compose prompt, generate, validate,
// persist. Strictly linear, no retries; every failure maps to one of the
// sentinel errors above.
type ReplyService struct {
	conversations ConversationStore
	messages      MessageStore
	personas      PersonaProvider
	chunks        ChunkFetcher
	searcher      SimilaritySearcher
	llm           ChatCompleter
	publisher     ReplyEventPublisher
	chatCfg       ai.ChatConfig
	log           *logrus.Logger
}

func NewReplyService(
	conversations ConversationStore,
	messages MessageStore,
	personas PersonaProvider,
	chunks ChunkFetcher,
	searcher SimilaritySearcher,
	llm ChatCompleter,
	publisher ReplyEventPublisher,
	chatCfg ai.ChatConfig,
	log *logrus.Logger,
) *ReplyService {
	if log == nil {
		log = logrus.New()
	}
	return &ReplyService{
		conversations: conversations,
		messages:      messages,
		personas:      personas,
		chunks:        chunks,
		searcher:      searcher,
		llm:           llm,
		publisher:     publisher,
		chatCfg:       chatCfg,
		log:           log,
	}
}

func (s *ReplyService) GenerateReply(ctx context.Context, input GenerateReplyInput) (*GenerateReplyResult, error) {
	if input.ConversationID == 0 {
		return nil, ErrInvalidInput
	}
	logEntry := s.log.WithFields(logrus.Fields{
		"conversation_id":  input.ConversationID,
		"content_chunk_id": input.ContentChunkID,
	})

	conversation, err := s.conversations.GetByID(input.ConversationID)
	if err != nil {
		logEntry.WithError(err).Error("load conversation failed")
		return nil, err
	}
	if conversation == nil {
		logEntry.Warn("conversation not found")
		return nil, ErrConversationNotFound
	}

	history, err := s.messages.ListByConversationID(conversation.ID)
	if err != nil {
		logEntry.WithError(err).Error("load history failed")
		return nil, err
	}
	logEntry.WithField("history_len", len(history)).Debug("conversation loaded")

	ground, err := s.resolveGrounding(ctx, conversation, history, input.ContentChunkID)
	if err != nil {
		return nil, err
	}
	logEntry = logEntry.WithField("grounding_chunk_id", ground.ChunkID)

	instructions, err := s.personas.SystemInstructions(ctx, conversation.ContentID)
	if err != nil {
		logEntry.WithError(err).Error("persona fetch failed")
		return nil, fmt.Errorf("%w: fetch persona: %v", ErrUpstream, err)
	}

	prompt := buildPromptMessages(instructions, history, ground.Text)

	raw, err := s.llm.Complete(ctx, s.chatCfg, prompt)
	if err != nil {
		logEntry.WithError(err).Error("model call failed")
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	texts, err := parseThread(raw)
	if err != nil {
		logEntry.WithError(err).Warn("model output rejected")
		return nil, err
	}

	now := time.Now()
	chunkID := ground.ChunkID
	batch := make([]model.Message, len(texts))
	for i, text := range texts {
		batch[i] = model.Message{
			ConversationID: conversation.ID,
			Sender:         model.SenderAI,
			ContentChunkID: &chunkID,
			MessageText:    text,
			// staggered so the timestamp ordering preserves thread order
			Timestamp: now.Add(time.Duration(i) * time.Millisecond),
		}
	}
	if err := s.messages.CreateBatch(batch); err != nil {
		logEntry.WithError(err).Error("persist reply batch failed")
		return nil, err
	}
	logEntry.WithField("appended", len(batch)).Info("reply appended to conversation")

	if s.publisher != nil {
		event := model.ReplyAppendedEvent{
			ConversationID: conversation.ID,
			ContentChunkID: ground.ChunkID,
			MessageCount:   len(batch),
			AppendedAt:     now,
		}
		// batch is already committed, losing the event only delays the
		// async last_update refresh
		if err := s.publisher.Publish(ctx, event); err != nil {
			logEntry.WithError(err).Warn("publish reply event failed")
		}
	}

	return &GenerateReplyResult{
		ConversationID: conversation.ID,
		ContentChunkID: ground.ChunkID,
		Messages:       batch,
	}, nil
}

// resolveGrounding picks the content chunk the reply is based on: the
// explicitly requested chunk if any, otherwise the best similarity match
// for the two most recent messages.
func (s *ReplyService) resolveGrounding(
	ctx context.Context,
	conversation *model.Conversation,
	history []model.Message,
	chunkID uint,
) (grounding, error) {
	if chunkID != 0 {
		text, err := s.chunks.ChunkText(ctx, chunkID)
		if err != nil {
			return grounding{}, fmt.Errorf("%w: fetch chunk %d: %v", ErrUpstream, chunkID, err)
		}
		return grounding{ChunkID: chunkID, Text: text}, nil
	}

	if len(history) == 0 {
		return grounding{}, ErrNoReplyBasis
	}

	parts := make([]string, 0, 2)
	for i := len(history) - 1; i >= 0 && len(parts) < 2; i-- {
		parts = append(parts, history[i].MessageText)
	}

	matches, err := s.searcher.SearchSimilar(ctx, SearchInput{
		UserID:    conversation.UserID,
		ContentID: conversation.ContentID,
		QueryText: strings.Join(parts, " "),
		Limit:     1,
	})
	if err != nil {
		return grounding{}, fmt.Errorf("%w: similarity search: %v", ErrUpstream, err)
	}
	if len(matches) == 0 {
		return grounding{}, ErrNoSimilarContent
	}
	return grounding{ChunkID: matches[0].ChunkID, Text: matches[0].Text}, nil
}
