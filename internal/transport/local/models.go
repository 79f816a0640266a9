// Package local provides on-device sentence embeddings backed by ONNX models.
package local

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultModel is the sentence-transformers model used when none is configured.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

const defaultMaxLength = 512

var defaultCacheDir = filepath.Join(".", "local_cache")

// ErrUnsupportedModel is returned for model names with no ONNX build.
var ErrUnsupportedModel = errors.New("local: unsupported model")

// modelDimensions maps accepted model names to their vector size.
// Both Hugging Face names and fastembed identifiers are accepted.
var modelDimensions = map[string]int{
	"sentence-transformers/all-MiniLM-L6-v2": 384,
	"BAAI/bge-small-en-v1.5":                 384,
	"BAAI/bge-small-en":                      384,
	"BAAI/bge-base-en-v1.5":                  768,
	"BAAI/bge-base-en":                       768,
	"BAAI/bge-small-zh-v1.5":                 512,
	"fast-all-MiniLM-L6-v2":                  384,
	"fast-bge-small-en-v1.5":                 384,
	"fast-bge-small-en":                      384,
	"fast-bge-base-en-v1.5":                  768,
	"fast-bge-base-en":                       768,
	"fast-bge-small-zh-v1.5":                 512,
}

// ModelDimensions returns the vector size of model.
func ModelDimensions(model string) (int, bool) {
	d, ok := modelDimensions[model]
	return d, ok
}

// Config holds the local embedder settings.
type Config struct {
	Model      string
	CacheDir   string // model download cache
	MaxLength  int    // max input tokens per text
	ONNXPath   string // onnxruntime shared library; empty uses ONNX_PATH or the system default
	Dimensions int    // expected vector size; 0 accepts the model's own
	Logger     *zap.Logger
}

// withDefaults fills unset fields and checks the model against Dimensions.
func (c Config) withDefaults() (Config, int, error) {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	dim, ok := modelDimensions[c.Model]
	if !ok {
		return c, 0, fmt.Errorf("%w: %q", ErrUnsupportedModel, c.Model)
	}
	if c.Dimensions != 0 && c.Dimensions != dim {
		return c, 0, fmt.Errorf("model %s produces %d dimensions, configured %d", c.Model, dim, c.Dimensions)
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.MaxLength <= 0 {
		c.MaxLength = defaultMaxLength
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c, dim, nil
}
