//go:build !cgo

package local

import (
	"context"
	"errors"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

// ErrNotAvailable is returned by builds without CGO, which cannot load onnxruntime.
var ErrNotAvailable = errors.New("local embedder not available (binary built without CGO support, use provider openai)")

// Embedder is a stub for non-CGO builds.
type Embedder struct{}

// NewEmbedder validates cfg and reports that local embeddings need CGO.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if _, _, err := cfg.withDefaults(); err != nil {
		return nil, err
	}
	return nil, ErrNotAvailable
}

// Dimensions returns 0.
func (e *Embedder) Dimensions() int { return 0 }

// Embed always fails.
func (e *Embedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, ErrNotAvailable
}

// HealthCheck always fails.
func (e *Embedder) HealthCheck(context.Context) error { return ErrNotAvailable }

// Close is a no-op.
func (e *Embedder) Close() error { return nil }
