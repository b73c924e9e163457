package app

import (
	"gnosis-influencer/internal/ai"
	"gnosis-influencer/internal/model"
)

const (
	firstTurnInstruction = "Write an informative twitter thread that explains the point you're making below."
	replyInstruction     = "Reply to the user's query based on the following content. \nUser query: "

	// the compatibility contract the validator enforces; changing this
	// wording requires updating parseThread expectations
	threadFormatInstruction = "\nReply in json format as a list of tweets, in the form [{'tweet': 'tweet text'}, {'tweet': 'tweet text'}, ...]"
)

// buildPromptMessages composes the ordered instruction sequence for the
// model: persona system entry, the full history with roles mapped to the
// chat API's user/assistant, and a final user entry carrying the task
// instruction, the thread format contract and the grounding text.
// Pure and deterministic.
func buildPromptMessages(systemInstructions string, history []model.Message, chunkText string) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{
		Role:    "system",
		Content: systemInstructions,
	})

	var lastUserText string
	for _, msg := range history {
		role := "assistant"
		if msg.Sender == model.SenderUser {
			role = "user"
			lastUserText = msg.MessageText
		}
		messages = append(messages, ai.ChatMessage{
			Role:    role,
			Content: msg.MessageText,
		})
	}

	var prompt string
	if len(history) == 0 {
		prompt = firstTurnInstruction
	} else {
		prompt = replyInstruction + lastUserText
	}
	prompt += threadFormatInstruction
	prompt += "\n\nContent: " + chunkText

	return append(messages, ai.ChatMessage{
		Role:    "user",
		Content: prompt,
	})
}
