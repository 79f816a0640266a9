package retrieval

import (
	"context"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Searcher runs nearest-neighbor lookups against the document store.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) (domain.RetrievalResult, error)
}

// Embedder vectorizes the question text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
