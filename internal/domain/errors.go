package domain

import "errors"

var (
	// ErrInvalidQuery signals a malformed query (empty text, negative result count).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLanguageModelError signals a chat completion failure.
	ErrLanguageModelError = errors.New("language model error")
	// ErrStoreUnavailable signals that the document store cannot serve requests.
	ErrStoreUnavailable = errors.New("document store unavailable")
	// ErrEmptyCorpus signals a corpus without documents.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)
