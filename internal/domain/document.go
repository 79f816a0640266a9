package domain

// DefaultMaxResults is the number of passages retrieved when the caller does not say.
const DefaultMaxResults = 5

// Metadata classifies a reference passage.
type Metadata struct {
	Type  string `json:"type" yaml:"type"`
	Topic string `json:"topic" yaml:"topic"`
}

// Document is a reference passage of the corpus. Immutable once seeded.
type Document struct {
	ID       string   `yaml:"id"`
	Content  string   `yaml:"content"`
	Metadata Metadata `yaml:"metadata"`
}

// Query is a caller question. MaxResults 0 is valid and retrieves nothing.
type Query struct {
	Text       string
	MaxResults int
}

// Match is a single nearest-neighbor hit. Distance 0 means identical.
type Match struct {
	Document Document
	Distance float64
}

// RetrievalResult is ordered by ascending distance (nearest first).
type RetrievalResult []Match

// Contents returns the passage texts in rank order.
func (r RetrievalResult) Contents() []string {
	out := make([]string, len(r))
	for i, m := range r {
		out[i] = m.Document.Content
	}
	return out
}

// Distances returns the distances in rank order.
func (r RetrievalResult) Distances() []float64 {
	out := make([]float64, len(r))
	for i, m := range r {
		out[i] = m.Distance
	}
	return out
}
