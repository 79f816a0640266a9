package domain

import "context"

// ChatModel generates a completion from a system and a user prompt.
type ChatModel interface {
	Generate(ctx context.Context, req ChatRequest) (ChatResult, error)
}

// ChatRequest is a single-turn completion request.
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
}

// ChatResult carries the generated text and token usage.
type ChatResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}
