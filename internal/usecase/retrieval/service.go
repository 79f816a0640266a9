package retrieval

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Service finds the reference passages nearest to a question.
type Service struct {
	store Searcher
	embed Embedder
}

// New creates a retrieval service.
func New(store Searcher, embed Embedder) *Service {
	return &Service{store: store, embed: embed}
}

// Retrieve embeds query and returns up to k passages by ascending distance.
// k <= 0 yields an empty result without touching the embedder or the store.
func (s *Service) Retrieve(ctx context.Context, query string, k int) (domain.RetrievalResult, error) {
	if k <= 0 {
		return domain.RetrievalResult{}, nil
	}

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.store.Search(ctx, emb.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}
	if matches == nil {
		matches = domain.RetrievalResult{}
	}
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
