package store

import (
	"fmt"
	"math"
	"sort"

	"delm/internal/domain"
)

// candidate pairs a result with the insertion sequence used for tie-breaking.
type candidate struct {
	result domain.RetrievalResult
	seq    uint64
}

// rank orders candidates by descending score, ties broken by insertion order
// (earlier insertion wins), and returns the top k.
func rank(cands []candidate, k int) []domain.RetrievalResult {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].result.Score != cands[j].result.Score {
			return cands[i].result.Score > cands[j].result.Score
		}
		return cands[i].seq < cands[j].seq
	})

	if k > len(cands) {
		k = len(cands)
	}
	results := make([]domain.RetrievalResult, 0, k)
	for _, c := range cands[:k] {
		results = append(results, c.result)
	}
	return results
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// validateInsert rejects a pattern before any mutation takes place.
func validateInsert(p domain.Pattern, categories *domain.CategorySet, dimension int) error {
	if p.ID == "" {
		return fmt.Errorf("%w: pattern id must not be empty", domain.ErrStoreIntegrity)
	}
	if !categories.Contains(p.Category) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCategory, p.Category)
	}
	if len(p.Embedding) != dimension {
		return fmt.Errorf("%w: embedding dimension mismatch: expected %d, got %d",
			domain.ErrStoreIntegrity, dimension, len(p.Embedding))
	}
	return nil
}

// validateQuery rejects malformed similarity queries.
func validateQuery(vector []float32, k, dimension int) error {
	if k <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, k)
	}
	if len(vector) != dimension {
		return fmt.Errorf("%w: query dimension mismatch: expected %d, got %d",
			domain.ErrStoreIntegrity, dimension, len(vector))
	}
	return nil
}
