//go:build cgo

package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	fastembed "github.com/anush008/fastembed-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Compile-time checks.
var (
	_ domain.Embedder      = (*Embedder)(nil)
	_ domain.HealthChecker = (*Embedder)(nil)
)

var errClosed = errors.New("local embedder is closed")

var fastembedModels = map[string]fastembed.EmbeddingModel{
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-small-en":                      fastembed.BGESmallEN,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"BAAI/bge-base-en":                       fastembed.BGEBaseEN,
	"BAAI/bge-small-zh-v1.5":                 fastembed.BGESmallZH,
}

// Embedder runs a sentence-transformers model in-process through onnxruntime.
type Embedder struct {
	mu    sync.RWMutex
	model *fastembed.FlagEmbedding
	name  string
	dim   int
}

// NewEmbedder loads the configured model, downloading it into CacheDir on first use.
func NewEmbedder(cfg Config) (*Embedder, error) {
	cfg, dim, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if cfg.ONNXPath != "" {
		// fastembed reads the library location from the environment.
		if err := os.Setenv("ONNX_PATH", cfg.ONNXPath); err != nil {
			return nil, fmt.Errorf("set ONNX_PATH: %w", err)
		}
	}

	id, ok := fastembedModels[cfg.Model]
	if !ok {
		id = fastembed.EmbeddingModel(cfg.Model)
	}
	showProgress := false
	model, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                id,
		CacheDir:             cfg.CacheDir,
		MaxLength:            cfg.MaxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize fastembed model %s: %w", cfg.Model, err)
	}

	cfg.Logger.Info("Local embedding model loaded",
		zap.String("model", cfg.Model),
		zap.Int("dimensions", dim),
		zap.String("cache_dir", cfg.CacheDir),
	)
	return &Embedder{model: model, name: cfg.Model, dim: dim}, nil
}

// Dimensions returns the vector size of the loaded model.
func (e *Embedder) Dimensions() int { return e.dim }

// Embed implements domain.Embedder. Passages and questions both go through
// PassageEmbed so they carry the same prefix and stay comparable.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("local embed: %w", err)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.model == nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, errClosed)
	}

	vecs, err := e.model.PassageEmbed([]string{text}, 1)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: local embed: %v", domain.ErrEmbeddingProviderError, err)
	}
	if len(vecs) != 1 || len(vecs[0]) != e.dim {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %s returned an unexpected vector shape",
			domain.ErrEmbeddingProviderError, e.name)
	}
	return domain.EmbeddingResult{Embedding: vecs[0]}, nil
}

// HealthCheck embeds a short text to confirm the runtime still works.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	_, err := e.Embed(ctx, "ok")
	return err
}

// Close releases the onnxruntime session.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil
	}
	err := e.model.Destroy()
	e.model = nil
	return err
}
