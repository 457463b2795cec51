package store

import (
	"errors"
	"testing"

	"delm/internal/domain"
)

func testCategories() *domain.CategorySet {
	return domain.NewCategorySet([]string{"components", "styles", "layouts"})
}

func pattern(id, category string, embedding []float32) domain.Pattern {
	return domain.Pattern{
		ID:        id,
		Name:      "pattern " + id,
		Category:  category,
		Content:   "content of " + id,
		Embedding: embedding,
	}
}

func TestMemoryStore_InsertAndCount(t *testing.T) {
	s := NewMemoryStore(testCategories(), 4)

	if count, _ := s.Count(); count != 0 {
		t.Errorf("expected empty store, got count=%d", count)
	}

	if err := s.Insert(pattern("p1", "components", []float32{1, 0, 0, 0})); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.Insert(pattern("p2", "layouts", []float32{0, 1, 0, 0})); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected count=2, got %d", count)
	}
}

func TestMemoryStore_OverwriteKeepsCount(t *testing.T) {
	s := NewMemoryStore(testCategories(), 4)

	if err := s.Insert(pattern("btn-1", "components", []float32{1, 0, 0, 0})); err != nil {
		t.Fatal(err)
	}

	updated := pattern("btn-1", "components", []float32{0, 0, 1, 0})
	updated.Content = "new button code"
	if err := s.Insert(updated); err != nil {
		t.Fatal(err)
	}

	count, _ := s.Count()
	if count != 1 {
		t.Errorf("overwrite must not change count, got %d", count)
	}

	// A query matching the new embedding returns the new content
	results, err := s.Query([]float32{0, 0, 1, 0}, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].PatternID != "btn-1" {
		t.Fatalf("expected btn-1, got %v", results)
	}
	if results[0].Content != "new button code" {
		t.Errorf("expected replaced content, got %q", results[0].Content)
	}
	if results[0].Score < 0.99 {
		t.Errorf("expected near-perfect similarity with new embedding, got %f", results[0].Score)
	}
}

func TestMemoryStore_InvalidCategory(t *testing.T) {
	s := NewMemoryStore(testCategories(), 4)

	err := s.Insert(pattern("p1", "unknown", []float32{1, 0, 0, 0}))
	if !errors.Is(err, domain.ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}

	if count, _ := s.Count(); count != 0 {
		t.Errorf("rejected insert must not mutate store, count=%d", count)
	}
}

func TestMemoryStore_DimensionMismatch(t *testing.T) {
	s := NewMemoryStore(testCategories(), 4)

	err := s.Insert(pattern("p1", "components", []float32{1, 0}))
	if !errors.Is(err, domain.ErrStoreIntegrity) {
		t.Errorf("expected ErrStoreIntegrity, got %v", err)
	}

	if err := s.Insert(pattern("p2", "components", []float32{1, 0, 0, 0})); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Query([]float32{1, 0}, "", 1); !errors.Is(err, domain.ErrStoreIntegrity) {
		t.Errorf("expected ErrStoreIntegrity for query dimension mismatch, got %v", err)
	}
}

func TestMemoryStore_QueryCategoryFilter(t *testing.T) {
	s := NewMemoryStore(testCategories(), 4)

	if err := s.Insert(pattern("p1", "components", []float32{1, 0, 0, 0})); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(pattern("p2", "layouts", []float32{1, 0, 0, 0})); err != nil {
		t.Fatal(err)
	}

	results, err := s.Query([]float32{1, 0, 0, 0}, "components", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].PatternID != "p1" || results[0].Category != "components" {
		t.Errorf("expected p1/components, got %s/%s", results[0].PatternID, results[0].Category)
	}

	// No eligible patterns is an empty result, not an error
	results, err = s.Query([]float32{1, 0, 0, 0}, "styles", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for styles, got %d", len(results))
	}
}

func TestMemoryStore_QueryEmptyStore(t *testing.T) {
	s := NewMemoryStore(testCategories(), 4)

	results, err := s.Query([]float32{1, 0, 0, 0}, "", 5)
	if err != nil {
		t.Fatalf("empty store query must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestMemoryStore_QueryTopKBounds(t *testing.T) {
	s := NewMemoryStore(testCategories(), 4)

	if _, err := s.Query([]float32{1, 0, 0, 0}, "", 0); !errors.Is(err, domain.ErrInvalidTopK) {
		t.Errorf("expected ErrInvalidTopK for k=0, got %v", err)
	}
	if _, err := s.Query([]float32{1, 0, 0, 0}, "", -3); !errors.Is(err, domain.ErrInvalidTopK) {
		t.Errorf("expected ErrInvalidTopK for k=-3, got %v", err)
	}

	if err := s.Insert(pattern("p1", "components", []float32{1, 0, 0, 0})); err != nil {
		t.Fatal(err)
	}
	results, err := s.Query([]float32{1, 0, 0, 0}, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("k beyond store size returns all eligible, got %d", len(results))
	}
}

func TestMemoryStore_RankingAndTieBreak(t *testing.T) {
	s := NewMemoryStore(testCategories(), 4)

	// p-far is orthogonal to the query; p-a and p-b tie exactly
	if err := s.Insert(pattern("p-far", "components", []float32{0, 0, 0, 1})); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(pattern("p-a", "components", []float32{1, 0, 0, 0})); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(pattern("p-b", "components", []float32{1, 0, 0, 0})); err != nil {
		t.Fatal(err)
	}

	results, err := s.Query([]float32{1, 0, 0, 0}, "", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].PatternID != "p-a" || results[1].PatternID != "p-b" {
		t.Errorf("tie must break by insertion order, got %s then %s", results[0].PatternID, results[1].PatternID)
	}
	if results[2].PatternID != "p-far" {
		t.Errorf("expected p-far last, got %s", results[2].PatternID)
	}
	if results[0].Score < results[2].Score {
		t.Error("results must be ordered by descending score")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore(testCategories(), 4)

	if err := s.Insert(pattern("p1", "components", []float32{1, 0, 0, 0})); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("absent"); err != nil {
		t.Errorf("deleting absent id must be a no-op, got %v", err)
	}
	if count, _ := s.Count(); count != 0 {
		t.Errorf("expected count=0 after delete, got %d", count)
	}
}
