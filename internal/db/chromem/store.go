package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paralegal/internal/db"
	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Compile-time check.
var _ db.Store = (*Store)(nil)

const (
	metaType  = "type"
	metaTopic = "topic"
)

var errNoEmbedFunc = errors.New("chromem store requires precomputed embeddings")

// Config configures the embedded chromem-go store.
type Config struct {
	// Path is the persistence directory. Empty means in-memory only.
	Path       string
	Compress   bool
	Collection string
}

// Store implements db.Store on an embedded chromem-go collection.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	persistent bool
}

// NewStore opens a persistent chromem database at cfg.Path. When the directory
// cannot be used it logs a warning and falls back to an in-memory database.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cdb, persistent := openDB(cfg, logger)

	col, err := cdb.GetOrCreateCollection(cfg.Collection, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %s: %w", cfg.Collection, err)
	}

	logger.Info("chromem store initialized",
		zap.String("collection", cfg.Collection),
		zap.Bool("persistent", persistent),
		zap.Int("documents", col.Count()),
	)

	return &Store{db: cdb, collection: col, persistent: persistent}, nil
}

func openDB(cfg Config, logger *zap.Logger) (*chromem.DB, bool) {
	if cfg.Path == "" {
		return chromem.NewDB(), false
	}

	path, err := expandPath(cfg.Path)
	if err == nil {
		err = os.MkdirAll(path, 0o755)
	}
	if err == nil {
		var pdb *chromem.DB
		pdb, err = chromem.NewPersistentDB(path, cfg.Compress)
		if err == nil {
			return pdb, true
		}
	}

	logger.Warn("persistent store unavailable, using in-memory store",
		zap.String("path", cfg.Path),
		zap.Error(err),
	)
	return chromem.NewDB(), false
}

// expandPath expands ~ to the home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

func noEmbed(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedFunc
}

// Persistent reports whether documents survive a restart.
func (s *Store) Persistent() bool { return s.persistent }

// Ping always succeeds for the embedded store.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op; persistent writes are flushed per document.
func (s *Store) Close() {}

// WaitForReady returns immediately for the embedded store.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Count returns the number of stored documents.
func (s *Store) Count(context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Upsert stores the document, replacing any previous entry with the same id.
func (s *Store) Upsert(ctx context.Context, doc domain.Document, vector []float32) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if len(vector) == 0 {
		return fmt.Errorf("vector is required")
	}

	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:        doc.ID,
		Content:   doc.Content,
		Embedding: vector,
		Metadata: map[string]string{
			metaType:  doc.Metadata.Type,
			metaTopic: doc.Metadata.Topic,
		},
	})
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// Search returns up to k nearest documents by cosine distance, ascending.
// k is capped at the collection size.
func (s *Store) Search(ctx context.Context, vector []float32, k int) (domain.RetrievalResult, error) {
	if k <= 0 {
		return domain.RetrievalResult{}, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}

	count := s.collection.Count()
	if count == 0 {
		return domain.RetrievalResult{}, nil
	}
	k = min(k, count)

	results, err := s.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	matches := make(domain.RetrievalResult, len(results))
	for i, r := range results {
		matches[i] = domain.Match{
			Document: domain.Document{
				ID:      r.ID,
				Content: r.Content,
				Metadata: domain.Metadata{
					Type:  r.Metadata[metaType],
					Topic: r.Metadata[metaTopic],
				},
			},
			Distance: float64(1 - r.Similarity),
		}
	}
	return matches, nil
}
