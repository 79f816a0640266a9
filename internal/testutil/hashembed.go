// Package testutil holds test doubles shared across package tests.
package testutil

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

// Compile-time check.
var _ domain.Embedder = (*HashEmbedder)(nil)

// DefaultDimensions is the vector size used when none is configured.
const DefaultDimensions = 384

const emptyToken = "\x00empty"

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"can": {}, "do": {}, "does": {}, "for": {}, "from": {}, "how": {}, "in": {},
	"is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "what": {},
	"when": {}, "which": {}, "who": {}, "with": {},
}

// HashEmbedder maps text to a unit vector by feature hashing lowercase word tokens.
// Identical text always yields an identical vector, and texts sharing
// vocabulary land close together, which is enough for retrieval tests.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a feature-hashing embedder with dim dimensions.
func NewHashEmbedder(dim int) (*HashEmbedder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dim)
	}
	return &HashEmbedder{dim: dim}, nil
}

// Dimensions returns the vector size.
func (e *HashEmbedder) Dimensions() int { return e.dim }

// Embed implements domain.Embedder.
func (e *HashEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("hash embed: %w", err)
	}

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		tokens = []string{emptyToken}
	}

	vec := make([]float64, e.dim)
	for _, tok := range tokens {
		h := xxhash.Sum64String(tok)
		idx := int(h % uint64(e.dim))
		if h&(1<<63) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, e.dim)
	if norm == 0 {
		// Collisions cancelled every token; fall back to a fixed direction.
		out[0] = 1
	} else {
		for i, v := range vec {
			out[i] = float32(v / norm)
		}
	}

	return domain.EmbeddingResult{
		Embedding:    out,
		PromptTokens: len(tokens),
		TotalTokens:  len(tokens),
	}, nil
}

// HealthCheck always succeeds.
func (e *HashEmbedder) HealthCheck(context.Context) error { return nil }

// Close is a no-op.
func (e *HashEmbedder) Close() error { return nil }

// Tokenize splits text into lowercase word tokens without stopwords.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, stem(f))
	}
	return out
}

// stem strips a plural "s" so "contracts" and "contract" share a bucket.
func stem(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}
