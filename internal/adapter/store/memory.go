package store

import (
	"sync"

	"delm/internal/domain"
)

// MemoryStore is a volatile in-memory pattern store. Mutations take the write
// lock only for the map commit; readers see the pre-insert snapshot until the
// commit and the new state atomically afterwards.
type MemoryStore struct {
	mu         sync.RWMutex
	categories *domain.CategorySet
	dimension  int
	patterns   map[string]memEntry
	nextSeq    uint64
}

type memEntry struct {
	pattern domain.Pattern
	seq     uint64
}

// NewMemoryStore creates an in-memory store validating against the given
// category set and embedding dimension.
func NewMemoryStore(categories *domain.CategorySet, dimension int) *MemoryStore {
	return &MemoryStore{
		categories: categories,
		dimension:  dimension,
		patterns:   make(map[string]memEntry),
	}
}

// Insert stores a pattern, replacing any existing record with the same id.
// An overwrite keeps the original insertion sequence so tie-break ordering
// does not shift when a pattern is updated in place.
func (s *MemoryStore) Insert(p domain.Pattern) error {
	if err := validateInsert(p, s.categories, s.dimension); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeq
	if existing, ok := s.patterns[p.ID]; ok {
		seq = existing.seq
	} else {
		s.nextSeq++
	}
	s.patterns[p.ID] = memEntry{pattern: clonePattern(p), seq: seq}
	return nil
}

// Query returns up to k patterns ranked by descending cosine similarity,
// restricted to category when it is non-empty.
func (s *MemoryStore) Query(vector []float32, category string, k int) ([]domain.RetrievalResult, error) {
	if err := validateQuery(vector, k, s.dimension); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cands := make([]candidate, 0, len(s.patterns))
	for _, entry := range s.patterns {
		if category != "" && entry.pattern.Category != category {
			continue
		}
		cands = append(cands, candidate{
			result: toResult(entry.pattern, cosineSimilarity(vector, entry.pattern.Embedding)),
			seq:    entry.seq,
		})
	}
	return rank(cands, k), nil
}

// Count returns the number of distinct pattern ids currently stored.
func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns), nil
}

// Delete removes a pattern by id; absent ids are a no-op.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.patterns, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// clonePattern copies the record so callers cannot mutate stored state.
func clonePattern(p domain.Pattern) domain.Pattern {
	out := p
	out.Embedding = append([]float32(nil), p.Embedding...)
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	return out
}

func toResult(p domain.Pattern, score float64) domain.RetrievalResult {
	return domain.RetrievalResult{
		PatternID: p.ID,
		Score:     score,
		Name:      p.Name,
		Category:  p.Category,
		Tags:      append([]string(nil), p.Tags...),
		Content:   p.Content,
	}
}
