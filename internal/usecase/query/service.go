package query

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paralegal/internal/domain"
	"github.com/kailas-cloud/paralegal/internal/logger"
	"github.com/kailas-cloud/paralegal/internal/usecase/confidence"
)

const (
	// DefaultMaxResultsLimit caps max_results unless configured otherwise.
	DefaultMaxResultsLimit = 20

	previewRunes  = 200
	previewMarker = "..."

	degradedPrefix = "I apologize, but I encountered an error while processing your request: "
)

// Service answers legal questions from retrieved passages.
type Service struct {
	retriever   Retriever
	synthesizer Synthesizer
	limit       int
	logger      *zap.Logger
	degraded    prometheus.Counter
	confidence  prometheus.Observer
	retrieved   prometheus.Observer
}

// Option configures a Service.
type Option func(*Service)

// WithMaxResultsLimit sets the cap applied to max_results.
func WithMaxResultsLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the degraded counter and the confidence and retrieved-count observers.
// Any of them may be nil.
func WithMetrics(degraded prometheus.Counter, conf, retrieved prometheus.Observer) Option {
	return func(s *Service) {
		s.degraded = degraded
		s.confidence = conf
		s.retrieved = retrieved
	}
}

// New creates a query service.
func New(r Retriever, syn Synthesizer, opts ...Option) *Service {
	s := &Service{
		retriever:   r,
		synthesizer: syn,
		limit:       DefaultMaxResultsLimit,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// MaxResultsLimit returns the cap applied to max_results.
func (s *Service) MaxResultsLimit() int { return s.limit }

// Validate checks text and maxResults before any collaborator is called.
func (s *Service) Validate(text string, maxResults int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: query must not be empty", domain.ErrInvalidQuery)
	}
	if maxResults < 0 {
		return fmt.Errorf("%w: max_results must not be negative", domain.ErrInvalidQuery)
	}
	return nil
}

// Query retrieves up to maxResults passages, capped at MaxResultsLimit,
// and synthesizes an answer. Retrieval failures are returned. Failures after retrieval produce a
// degraded answer with confidence 0 and no sources.
func (s *Service) Query(ctx context.Context, text string, maxResults int) (domain.Answer, error) {
	if err := s.Validate(text, maxResults); err != nil {
		return domain.Answer{}, err
	}

	matches, err := s.retriever.Retrieve(ctx, text, min(maxResults, s.limit))
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	if s.retrieved != nil {
		s.retrieved.Observe(float64(len(matches)))
	}

	answer, err := s.answer(ctx, text, matches)
	if err != nil {
		s.log(ctx).Warn("query degraded",
			zap.Int("retrieved", len(matches)),
			zap.Error(err),
		)
		if s.degraded != nil {
			s.degraded.Inc()
		}
		return Degraded(err), nil
	}

	if s.confidence != nil {
		s.confidence.Observe(answer.Confidence)
	}
	return answer, nil
}

// answer runs synthesis, estimation and source building. Panics are returned as errors.
func (s *Service) answer(ctx context.Context, text string, matches domain.RetrievalResult) (ans domain.Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	body, err := s.synthesizer.Synthesize(ctx, text, matches.Contents())
	if err != nil {
		return domain.Answer{}, err
	}

	conf := confidence.Estimate(matches.Distances())

	return domain.Answer{
		Answer:     body,
		Sources:    BuildSources(matches),
		Confidence: confidence.Clamp(conf),
	}, nil
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// Degraded builds the fallback answer reported after a synthesis failure.
func Degraded(err error) domain.Answer {
	return domain.Answer{
		Answer:     degradedPrefix + err.Error(),
		Sources:    []domain.Source{},
		Confidence: 0.0,
		Degraded:   true,
	}
}

// BuildSources converts matches to caller-facing sources in rank order.
func BuildSources(matches domain.RetrievalResult) []domain.Source {
	sources := make([]domain.Source, len(matches))
	for i, m := range matches {
		sources[i] = domain.Source{
			Content:        Preview(m.Document.Content),
			Metadata:       m.Document.Metadata,
			RelevanceScore: 1 - m.Distance,
		}
	}
	return sources
}

// Preview truncates content to 200 characters plus "..." when it is longer.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= previewRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewRunes]) + previewMarker
}
