package seed

import (
	"context"
	"time"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Store is the write side of the document store.
type Store interface {
	Count(ctx context.Context) (int, error)
	Upsert(ctx context.Context, doc domain.Document, vector []float32) error
}

// Locker serializes seeding across processes sharing one store.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// Embedder vectorizes passage content.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
