package query

import (
	"context"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Retriever finds passages nearest to the question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (domain.RetrievalResult, error)
}

// Synthesizer turns the question and the passages into an answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, documents []string) (string, error)
}
