package usecase

import (
	"errors"
	"fmt"
	"testing"

	"delm/internal/adapter/embedding"
	"delm/internal/adapter/store"
	"delm/internal/domain"
)

// stubEmbedder returns fixed vectors per text, for score-controlled tests.
type stubEmbedder struct {
	vectors map[string][]float32
	dim     int
}

func (e *stubEmbedder) Embed(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := e.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no stub vector for %q", text)
		}
		out[i] = vec
	}
	return out, nil
}

func (e *stubEmbedder) Dimension() int    { return e.dim }
func (e *stubEmbedder) ModelName() string { return "stub" }

func testCategories() *domain.CategorySet {
	return domain.NewCategorySet([]string{"components", "styles", "layouts"})
}

func TestRetriever_ValidatesInput(t *testing.T) {
	embedder := embedding.NewMockEmbedder(8)
	st := store.NewMemoryStore(testCategories(), 8)
	r := NewRetriever(embedder, st, 0)

	if _, err := r.Retrieve("query", "", 0); !errors.Is(err, domain.ErrInvalidTopK) {
		t.Errorf("expected ErrInvalidTopK for top_k=0, got %v", err)
	}
	if _, err := r.Retrieve("query", "", -1); !errors.Is(err, domain.ErrInvalidTopK) {
		t.Errorf("expected ErrInvalidTopK for top_k=-1, got %v", err)
	}
	if _, err := r.Retrieve("  ", "", 5); !errors.Is(err, domain.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText for blank query, got %v", err)
	}
}

func TestRetriever_SelfSimilarity(t *testing.T) {
	embedder := embedding.NewMockEmbedder(16)
	st := store.NewMemoryStore(testCategories(), 16)
	r := NewRetriever(embedder, st, 0)

	contents := map[string]string{
		"p1": "button code A",
		"p2": "grid code B",
		"p3": "card markup C",
	}
	for id, content := range contents {
		vecs, err := embedder.Embed([]string{content})
		if err != nil {
			t.Fatal(err)
		}
		err = st.Insert(domain.Pattern{
			ID: id, Name: id, Category: "components", Content: content, Embedding: vecs[0],
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	// A query identical to stored content must return that pattern first
	for id, content := range contents {
		results, err := r.Retrieve(content, "components", 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 1 || results[0].PatternID != id {
			t.Errorf("query %q: expected %s first, got %v", content, id, results)
		}
	}
}

func TestRetriever_EmptyStore(t *testing.T) {
	embedder := embedding.NewMockEmbedder(8)
	st := store.NewMemoryStore(testCategories(), 8)
	r := NewRetriever(embedder, st, 0)

	results, err := r.Retrieve("anything", "", 5)
	if err != nil {
		t.Fatalf("empty store retrieval must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestRetriever_MinScoreThreshold(t *testing.T) {
	embedder := &stubEmbedder{
		dim: 4,
		vectors: map[string][]float32{
			"query": {1, 0, 0, 0},
		},
	}
	st := store.NewMemoryStore(testCategories(), 4)

	insert := func(id string, vec []float32) {
		t.Helper()
		if err := st.Insert(domain.Pattern{ID: id, Category: "components", Content: id, Embedding: vec}); err != nil {
			t.Fatal(err)
		}
	}
	insert("close", []float32{1, 0.1, 0, 0})
	insert("orthogonal", []float32{0, 1, 0, 0})

	r := NewRetriever(embedder, st, 0.5)
	results, err := r.Retrieve("query", "", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].PatternID != "close" {
		t.Errorf("expected only close to pass the threshold, got %v", results)
	}
}

func TestRetriever_EmbeddingFailure(t *testing.T) {
	embedder := &stubEmbedder{dim: 4, vectors: map[string][]float32{}}
	st := store.NewMemoryStore(testCategories(), 4)
	r := NewRetriever(embedder, st, 0)

	if _, err := r.Retrieve("unembeddable", "", 5); !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("expected ErrEmbedding, got %v", err)
	}
}
