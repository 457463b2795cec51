package port

import "delm/internal/domain"

// PatternStore persists pattern records and their embeddings. It is the only
// shared mutable resource in the pipeline: one instance is created at startup
// and shared read-mostly across all requests.
type PatternStore interface {
	// Insert stores a pattern. Category and embedding dimension are
	// validated before any mutation; an existing id is replaced whole,
	// atomically. Concurrent readers see either the old record or the new
	// one, never an intermediate state.
	Insert(p domain.Pattern) error

	// Query returns up to k results ranked by descending cosine similarity
	// to vector, restricted to category when it is non-empty. Ties are
	// broken by insertion order, earlier insertion first. When fewer than
	// k patterns are eligible all of them are returned; zero eligible
	// patterns yields an empty slice, not an error.
	Query(vector []float32, category string, k int) ([]domain.RetrievalResult, error)

	// Count returns the number of distinct pattern ids currently stored.
	Count() (int, error)

	// Delete removes a pattern by id. Deleting an absent id is a no-op.
	Delete(id string) error

	Close() error
}
