package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

type mockSearcher struct {
	result domain.RetrievalResult
	err    error
	calls  int
	gotK   int
	gotVec []float32
}

func (m *mockSearcher) Search(_ context.Context, vector []float32, k int) (domain.RetrievalResult, error) {
	m.calls++
	m.gotK = k
	m.gotVec = vector
	return m.result, m.err
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return domain.EmbeddingResult{Embedding: m.vec}, m.err
}

func matches(ids ...string) domain.RetrievalResult {
	out := make(domain.RetrievalResult, len(ids))
	for i, id := range ids {
		out[i] = domain.Match{Document: domain.Document{ID: id}, Distance: float64(i) * 0.1}
	}
	return out
}

func TestRetrieve_Success(t *testing.T) {
	store := &mockSearcher{result: matches("a", "b")}
	emb := &mockEmbedder{vec: []float32{0.5, 0.5}}
	svc := New(store, emb)

	res, err := svc.Retrieve(context.Background(), "What is consideration?", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 2 || res[0].Document.ID != "a" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if store.gotK != 5 {
		t.Errorf("k = %d, want 5", store.gotK)
	}
	if len(store.gotVec) != 2 || store.gotVec[0] != 0.5 {
		t.Errorf("store received %v", store.gotVec)
	}
}

func TestRetrieve_ZeroK(t *testing.T) {
	store := &mockSearcher{}
	emb := &mockEmbedder{}
	svc := New(store, emb)

	res, err := svc.Retrieve(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil || len(res) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", res)
	}
	if store.calls != 0 || emb.calls != 0 {
		t.Errorf("expected no collaborator calls, got store=%d embed=%d", store.calls, emb.calls)
	}
}

func TestRetrieve_EmptyStore(t *testing.T) {
	svc := New(&mockSearcher{}, &mockEmbedder{vec: []float32{1}})

	res, err := svc.Retrieve(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil || len(res) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", res)
	}
}

func TestRetrieve_TruncatesToK(t *testing.T) {
	svc := New(&mockSearcher{result: matches("a", "b", "c")}, &mockEmbedder{vec: []float32{1}})

	res, err := svc.Retrieve(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 2 {
		t.Errorf("expected 2 results, got %d", len(res))
	}
}

func TestRetrieve_EmbedError(t *testing.T) {
	store := &mockSearcher{}
	svc := New(store, &mockEmbedder{err: domain.ErrEmbeddingProviderError})

	_, err := svc.Retrieve(context.Background(), "q", 5)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if store.calls != 0 {
		t.Error("store must not be queried after embed failure")
	}
}

func TestRetrieve_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := New(&mockSearcher{err: storeErr}, &mockEmbedder{vec: []float32{1}})

	_, err := svc.Retrieve(context.Background(), "q", 5)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}
