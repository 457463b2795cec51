package domain

import "errors"

// Closed error taxonomy for the pipeline. Callers dispatch with errors.Is;
// adapters wrap the underlying cause so detail is preserved.
var (
	// ErrNotReady is returned when the pipeline is used before
	// initialization has completed.
	ErrNotReady = errors.New("pipeline not initialized")

	// ErrInvalidCategory is returned when a category is not in the
	// configured category set.
	ErrInvalidCategory = errors.New("unknown category")

	// ErrInvalidGenerationType is returned for a generation type outside
	// the closed component/styles/layout set.
	ErrInvalidGenerationType = errors.New("unknown generation type")

	// ErrInvalidTopK is returned for a zero or negative top-k.
	ErrInvalidTopK = errors.New("top_k must be a positive integer")

	// ErrEmptyText is returned when content or a query is empty; empty
	// text is a caller error, never silently embedded.
	ErrEmptyText = errors.New("empty text")

	// ErrEmbedding wraps failures of the embedding service.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration wraps failures of the generative model.
	ErrGeneration = errors.New("generation failed")

	// ErrStoreIntegrity marks writes the store rejected to avoid storing
	// inconsistent data, e.g. an embedding dimension mismatch.
	ErrStoreIntegrity = errors.New("store integrity violation")
)
