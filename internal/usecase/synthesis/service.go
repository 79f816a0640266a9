package synthesis

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Defaults match the generation settings the prompt was tuned for.
const (
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.3
)

// Service asks the language model for an answer grounded in retrieved passages.
type Service struct {
	model       ChatModel
	maxTokens   int
	temperature float32
}

// Option configures a Service.
type Option func(*Service)

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(s *Service) { s.temperature = t }
}

// New creates a synthesis service.
func New(model ChatModel, opts ...Option) *Service {
	s := &Service{
		model:       model,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Synthesize returns the raw model text for query given the passages.
// The model is called even when documents is empty.
func (s *Service) Synthesize(ctx context.Context, query string, documents []string) (string, error) {
	req := s.Request(query, documents)
	res, err := s.model.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return res.Text, nil
}

// Request builds the chat request sent for query and documents.
func (s *Service) Request(query string, documents []string) domain.ChatRequest {
	return domain.ChatRequest{
		SystemPrompt: SystemPrompt,
		UserPrompt:   BuildUserPrompt(BuildContext(documents), query),
		MaxTokens:    s.maxTokens,
		Temperature:  s.temperature,
	}
}
