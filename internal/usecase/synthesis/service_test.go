package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

type mockChatModel struct {
	text  string
	err   error
	calls int
	got   domain.ChatRequest
}

func (m *mockChatModel) Generate(_ context.Context, req domain.ChatRequest) (domain.ChatResult, error) {
	m.calls++
	m.got = req
	return domain.ChatResult{Text: m.text}, m.err
}

func TestSynthesize_PromptShape(t *testing.T) {
	model := &mockChatModel{text: "Consideration is a bargained-for exchange."}
	svc := New(model)

	docs := []string{"Consideration is something of value.", "A contract needs offer and acceptance."}
	answer, err := svc.Synthesize(context.Background(), "What is consideration?", docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Consideration is a bargained-for exchange." {
		t.Errorf("expected raw model text, got %q", answer)
	}

	req := model.got
	if req.SystemPrompt != SystemPrompt {
		t.Errorf("unexpected system prompt: %q", req.SystemPrompt)
	}
	if !strings.Contains(req.UserPrompt, docs[0]+"\n\n"+docs[1]) {
		t.Error("user prompt must contain passages joined by a blank line")
	}
	if !strings.Contains(req.UserPrompt, "User Question: What is consideration?") {
		t.Error("user prompt must contain the verbatim question")
	}
	if !strings.Contains(req.UserPrompt, "don't contain enough information") {
		t.Error("user prompt must instruct the model to admit insufficient context")
	}
	if !strings.Contains(req.UserPrompt, "citations") {
		t.Error("user prompt must ask for citations")
	}
	if req.MaxTokens != DefaultMaxTokens || req.Temperature != DefaultTemperature {
		t.Errorf("unexpected generation settings: %d / %v", req.MaxTokens, req.Temperature)
	}
}

func TestSynthesize_EmptyContextStillCallsModel(t *testing.T) {
	model := &mockChatModel{text: "The documents don't cover this."}
	svc := New(model)

	if _, err := svc.Synthesize(context.Background(), "q", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.calls != 1 {
		t.Errorf("expected 1 model call, got %d", model.calls)
	}
	if !strings.Contains(model.got.UserPrompt, "Legal Documents:\n\n\nUser Question: q") {
		t.Errorf("unexpected prompt for empty context: %q", model.got.UserPrompt)
	}
}

func TestSynthesize_Options(t *testing.T) {
	model := &mockChatModel{}
	svc := New(model, WithMaxTokens(256), WithTemperature(0))

	if _, err := svc.Synthesize(context.Background(), "q", []string{"d"}); err != nil {
		t.Fatal(err)
	}
	if model.got.MaxTokens != 256 || model.got.Temperature != 0 {
		t.Errorf("options not applied: %+v", model.got)
	}
}

func TestSynthesize_ModelError(t *testing.T) {
	svc := New(&mockChatModel{err: domain.ErrLanguageModelError})

	_, err := svc.Synthesize(context.Background(), "q", []string{"d"})
	if !errors.Is(err, domain.ErrLanguageModelError) {
		t.Fatalf("expected ErrLanguageModelError, got %v", err)
	}
}

func TestBuildContext(t *testing.T) {
	if got := BuildContext([]string{"a", "b", "c"}); got != "a\n\nb\n\nc" {
		t.Errorf("BuildContext = %q", got)
	}
	if got := BuildContext(nil); got != "" {
		t.Errorf("BuildContext(nil) = %q", got)
	}
}
