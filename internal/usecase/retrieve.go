package usecase

import (
	"fmt"
	"strings"

	"delm/internal/domain"
	"delm/internal/port"
)

// Retriever embeds a query and runs a filtered similarity search against the
// pattern store. Each call is independent and side-effect-free on the store;
// the embedding call never runs under a store lock.
type Retriever struct {
	embedder port.Embedder
	store    port.PatternStore
	minScore float64 // Filter results below this score (0 = disabled)
}

// NewRetriever creates a new retriever.
func NewRetriever(embedder port.Embedder, store port.PatternStore, minScore float64) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		minScore: minScore,
	}
}

// Retrieve returns up to topK patterns ranked by similarity to query,
// restricted to category when it is non-empty. A zero or negative topK is a
// caller error, never silently clamped.
func (r *Retriever) Retrieve(query, category string, topK int) ([]domain.RetrievalResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, topK)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query", domain.ErrEmptyText)
	}

	vectors, err := r.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: embedder returned no vector", domain.ErrEmbedding)
	}

	results, err := r.store.Query(vectors[0], category, topK)
	if err != nil {
		return nil, err
	}

	if r.minScore > 0 {
		results = filterByScore(results, r.minScore)
	}
	return results, nil
}

// filterByScore removes results below the minimum score threshold.
func filterByScore(results []domain.RetrievalResult, min float64) []domain.RetrievalResult {
	filtered := make([]domain.RetrievalResult, 0, len(results))
	for _, r := range results {
		if r.Score >= min {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
