package domain

import "testing"

func TestRetrievalResult_PreservesRankOrder(t *testing.T) {
	r := RetrievalResult{
		{Document: Document{ID: "a", Content: "first"}, Distance: 0.1},
		{Document: Document{ID: "b", Content: "second"}, Distance: 0.4},
		{Document: Document{ID: "c", Content: "third"}, Distance: 0.9},
	}

	contents := r.Contents()
	distances := r.Distances()

	wantContents := []string{"first", "second", "third"}
	wantDistances := []float64{0.1, 0.4, 0.9}
	for i := range r {
		if contents[i] != wantContents[i] {
			t.Errorf("contents[%d] = %q, want %q", i, contents[i], wantContents[i])
		}
		if distances[i] != wantDistances[i] {
			t.Errorf("distances[%d] = %v, want %v", i, distances[i], wantDistances[i])
		}
	}
}

func TestRetrievalResult_Empty(t *testing.T) {
	var r RetrievalResult

	if got := r.Contents(); len(got) != 0 {
		t.Errorf("expected no contents, got %v", got)
	}
	if got := r.Distances(); len(got) != 0 {
		t.Errorf("expected no distances, got %v", got)
	}
}
