package app

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"gnosis-influencer/internal/ai"
	"gnosis-influencer/internal/model"
)

var errFakeUpstream = errors.New("fake upstream failure")

type fakeConversationStore struct {
	conversations map[uint]*model.Conversation
	err           error
	calls         int
}

func (f *fakeConversationStore) GetByID(id uint) (*model.Conversation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.conversations[id], nil
}

type fakeMessageStore struct {
	history   map[uint][]model.Message
	created   [][]model.Message
	listErr   error
	createErr error
}

func (f *fakeMessageStore) ListByConversationID(conversationID uint) ([]model.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.history[conversationID], nil
}

func (f *fakeMessageStore) CreateBatch(messages []model.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, messages)
	return nil
}

type fakePersonaProvider struct {
	instructions string
	err          error
	calls        int
}

func (f *fakePersonaProvider) SystemInstructions(ctx context.Context, contentID uint) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.instructions, nil
}

type fakeChunkFetcher struct {
	text        string
	err         error
	lastChunkID uint
	calls       int
}

func (f *fakeChunkFetcher) ChunkText(ctx context.Context, chunkID uint) (string, error) {
	f.calls++
	f.lastChunkID = chunkID
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeSearcher struct {
	matches   []SearchMatch
	err       error
	lastInput SearchInput
	calls     int
}

func (f *fakeSearcher) SearchSimilar(ctx context.Context, input SearchInput) ([]SearchMatch, error) {
	f.calls++
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

type fakeCompleter struct {
	output       string
	err          error
	lastMessages []ai.ChatMessage
	calls        int
}

func (f *fakeCompleter) Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error) {
	f.calls++
	f.lastMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

type fakePublisher struct {
	events []model.ReplyAppendedEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event model.ReplyAppendedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

// pipelineFixture wires a ReplyService with fakes for every collaborator.
type pipelineFixture struct {
	conversations *fakeConversationStore
	messages      *fakeMessageStore
	personas      *fakePersonaProvider
	chunks        *fakeChunkFetcher
	searcher      *fakeSearcher
	llm           *fakeCompleter
	publisher     *fakePublisher
	service       *ReplyService
}

func newPipelineFixture() *pipelineFixture {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	f := &pipelineFixture{
		conversations: &fakeConversationStore{conversations: map[uint]*model.Conversation{}},
		messages:      &fakeMessageStore{history: map[uint][]model.Message{}},
		personas:      &fakePersonaProvider{instructions: "You are the content's voice."},
		chunks:        &fakeChunkFetcher{text: "chunk text"},
		searcher:      &fakeSearcher{matches: []SearchMatch{{ChunkID: 42, Text: "matched text"}}},
		llm:           &fakeCompleter{output: `[{"tweet":"a"},{"tweet":"b"}]`},
		publisher:     &fakePublisher{},
	}
	f.service = NewReplyService(
		f.conversations,
		f.messages,
		f.personas,
		f.chunks,
		f.searcher,
		f.llm,
		f.publisher,
		ai.ChatConfig{BaseURL: "http://llm", APIKey: "key", Model: "gpt-4o"},
		quiet,
	)
	return f
}

// captureLog rebuilds the service around a buffer-backed logger so tests
// can assert on emitted entries.
func (f *pipelineFixture) captureLog() *bytes.Buffer {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)
	f.service = NewReplyService(
		f.conversations,
		f.messages,
		f.personas,
		f.chunks,
		f.searcher,
		f.llm,
		f.publisher,
		ai.ChatConfig{BaseURL: "http://llm", APIKey: "key", Model: "gpt-4o"},
		log,
	)
	return &buf
}

func (f *pipelineFixture) addConversation(id, userID, contentID uint) {
	f.conversations.conversations[id] = &model.Conversation{
		ID:        id,
		UserID:    userID,
		ContentID: contentID,
	}
}

func (f *pipelineFixture) addMessage(conversationID uint, sender model.SenderRole, text string) {
	f.messages.history[conversationID] = append(f.messages.history[conversationID], model.Message{
		ConversationID: conversationID,
		Sender:         sender,
		MessageText:    text,
	})
}
