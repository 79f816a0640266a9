package openai

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paralegal/internal/domain"
	"github.com/kailas-cloud/paralegal/internal/metrics"
)

// Compile-time check.
var _ domain.ChatModel = (*ChatModel)(nil)

// ChatConfig holds the chat completion settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// ChatModel generates answers through the chat completions API.
type ChatModel struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewChatModel creates an OpenAI-compatible chat model client.
func NewChatModel(cfg *ChatConfig) *ChatModel {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatModel{
		client: newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
		logger: logger,
	}
}

// Generate sends a system and a user message and returns the first choice.
func (m *ChatModel) Generate(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error) {
	temperature := req.Temperature
	if temperature == 0 {
		// go-openai drops a zero temperature and the API then samples at 1.
		temperature = math.SmallestNonzeroFloat32
	}
	creq := openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	}

	start := time.Now()
	resp, err := m.client.CreateChatCompletion(ctx, creq)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(m.model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(m.model, "api_error").Inc()
		return domain.ChatResult{}, parseAPIError("chat", err, domain.ErrLanguageModelError)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(m.model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(m.model, "empty_response").Inc()
		return domain.ChatResult{}, fmt.Errorf("chat response has no choices: %w", domain.ErrLanguageModelError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(m.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(m.model).Observe(duration.Seconds())
	metrics.LLMTokensTotal.WithLabelValues(m.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.LLMTokensTotal.WithLabelValues(m.model, "completion").Add(float64(resp.Usage.CompletionTokens))

	m.logger.Debug("chat completion",
		zap.String("model", m.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
	)

	return domain.ChatResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (m *ChatModel) HealthCheck(ctx context.Context) error {
	if _, err := m.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
