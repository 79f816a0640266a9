package db

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Store is the document store facade every driver implements.
type Store interface {
	Pinger
	DocumentStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentStore holds the corpus and answers nearest-neighbor queries.
type DocumentStore interface {
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
	// Upsert stores a document by id. Storing the same id twice keeps one copy.
	Upsert(ctx context.Context, doc domain.Document, vector []float32) error
	// Search returns up to k documents ordered by ascending distance.
	// An empty store yields an empty result, not an error.
	Search(ctx context.Context, vector []float32, k int) (domain.RetrievalResult, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Locker provides a best-effort exclusive lock shared between processes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// WaitForReady polls Ping until the store responds or timeout expires.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := p.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
