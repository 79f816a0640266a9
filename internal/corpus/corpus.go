// Package corpus loads the reference passages seeded into the document store.
package corpus

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

//go:embed legal.yaml
var defaultCorpus []byte

type file struct {
	Documents []domain.Document `yaml:"documents"`
}

// Default returns the built-in legal corpus.
func Default() ([]domain.Document, error) {
	return Parse(defaultCorpus)
}

// Load reads a corpus from path, or the built-in corpus when path is empty.
func Load(path string) ([]domain.Document, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	docs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return docs, nil
}

// Parse decodes and validates a YAML corpus.
func Parse(data []byte) ([]domain.Document, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if err := Validate(f.Documents); err != nil {
		return nil, err
	}
	return f.Documents, nil
}

// Validate checks that docs is non-empty with unique ids and non-empty content.
func Validate(docs []domain.Document) error {
	if len(docs) == 0 {
		return domain.ErrEmptyCorpus
	}
	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document %d: id is required", i)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("document %q: duplicate id", d.ID)
		}
		seen[d.ID] = struct{}{}
		if d.Content == "" {
			return fmt.Errorf("document %q: content is required", d.ID)
		}
	}
	return nil
}
