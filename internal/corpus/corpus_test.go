package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

func TestDefault(t *testing.T) {
	docs, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(docs) != 30 {
		t.Errorf("expected 30 documents, got %d", len(docs))
	}

	byID := make(map[string]domain.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	for _, id := range []string{
		"contract_formation_1", "contract_formation_2", "tort_negligence_1",
		"tort_negligence_2", "property_adverse_possession_1", "criminal_assault_1",
		"constitutional_first_amendment_1", "employment_at_will_1", "family_divorce_1",
		"intellectual_property_copyright_1",
	} {
		if _, ok := byID[id]; !ok {
			t.Errorf("missing document %s", id)
		}
	}

	c := byID["contract_formation_2"]
	if c.Metadata.Type != "contract_law" || c.Metadata.Topic != "consideration" {
		t.Errorf("unexpected metadata: %+v", c.Metadata)
	}
	if !strings.HasPrefix(c.Content, "Consideration is something of value") {
		t.Errorf("unexpected content: %q", c.Content)
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "documents: []"},
		{"missing id", "documents:\n  - content: x\n"},
		{"missing content", "documents:\n  - id: a\n"},
		{"duplicate id", "documents:\n  - {id: a, content: x}\n  - {id: a, content: y}\n"},
		{"malformed", "documents: ["},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParse_EmptyIsErrEmptyCorpus(t *testing.T) {
	_, err := Parse([]byte("documents: []"))
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	body := "documents:\n  - id: a\n    content: text\n    metadata: {type: statute, topic: t}\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	docs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 1 || docs[0].Metadata.Type != "statute" {
		t.Errorf("unexpected docs: %+v", docs)
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	docs, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) == 0 {
		t.Error("expected default corpus")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error")
	}
}
