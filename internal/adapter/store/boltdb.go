package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"delm/internal/domain"
	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current storage schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var (
	bucketPatterns   = []byte("patterns")
	bucketMeta       = []byte("meta")
	keySchemaVersion = []byte("schema_version")
)

// BoltStore persists patterns in BoltDB and keeps a full in-memory copy for
// brute-force similarity search. Exact linear-scan ranking is deliberate: the
// pattern catalogue is small and curated, so correctness beats an
// approximate index.
type BoltStore struct {
	db         *bbolt.DB
	categories *domain.CategorySet
	dimension  int

	mu       sync.RWMutex
	patterns map[string]memEntry
	nextSeq  uint64
}

type storedPattern struct {
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags,omitempty"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
	Seq       uint64    `json:"seq"`
}

// NewBoltStore opens (or creates) a BoltDB-backed pattern store at path.
func NewBoltStore(path string, categories *domain.CategorySet, dimension int) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketPatterns, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{
		db:         db,
		categories: categories,
		dimension:  dimension,
		patterns:   make(map[string]memEntry),
	}

	if err := s.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.loadPatterns(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}

	return s, nil
}

// checkSchema initializes the schema version on first open and refuses
// databases written by a newer version.
func (s *BoltStore) checkSchema() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)

		data := b.Get(keySchemaVersion)
		if data == nil {
			v, err := json.Marshal(CurrentSchemaVersion)
			if err != nil {
				return err
			}
			return b.Put(keySchemaVersion, v)
		}

		var version int
		if err := json.Unmarshal(data, &version); err != nil {
			return fmt.Errorf("corrupt schema version: %w", err)
		}
		if version > CurrentSchemaVersion {
			return fmt.Errorf("database created by newer version (v%d > v%d)", version, CurrentSchemaVersion)
		}
		return nil
	})
}

// loadPatterns loads all stored records into memory and recovers the
// insertion sequence counter.
func (s *BoltStore) loadPatterns() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPatterns).ForEach(func(k, v []byte) error {
			var stored storedPattern
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("corrupt pattern record %q: %w", k, err)
			}
			if len(stored.Embedding) != s.dimension {
				return fmt.Errorf("%w: stored pattern %q has dimension %d, store expects %d",
					domain.ErrStoreIntegrity, k, len(stored.Embedding), s.dimension)
			}
			s.patterns[string(k)] = memEntry{
				pattern: domain.Pattern{
					ID:        string(k),
					Name:      stored.Name,
					Category:  stored.Category,
					Tags:      stored.Tags,
					Content:   stored.Content,
					Embedding: stored.Embedding,
				},
				seq: stored.Seq,
			}
			if stored.Seq >= s.nextSeq {
				s.nextSeq = stored.Seq + 1
			}
			return nil
		})
	})
}

// Insert stores a pattern, replacing any existing record with the same id as
// a single transaction. The in-memory copy is updated only after the
// transaction commits, so readers never observe a half-written record.
func (s *BoltStore) Insert(p domain.Pattern) error {
	if err := validateInsert(p, s.categories, s.dimension); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeq
	newID := true
	if existing, ok := s.patterns[p.ID]; ok {
		seq = existing.seq
		newID = false
	}

	stored := storedPattern{
		Name:      p.Name,
		Category:  p.Category,
		Tags:      p.Tags,
		Content:   p.Content,
		Embedding: p.Embedding,
		Seq:       seq,
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPatterns).Put([]byte(p.ID), data)
	})
	if err != nil {
		return err
	}

	s.patterns[p.ID] = memEntry{pattern: clonePattern(p), seq: seq}
	if newID {
		s.nextSeq++
	}
	return nil
}

// Query returns up to k patterns ranked by descending cosine similarity,
// restricted to category when it is non-empty.
func (s *BoltStore) Query(vector []float32, category string, k int) ([]domain.RetrievalResult, error) {
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
func (s *BoltStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns), nil
}

// Delete removes a pattern by id; absent ids are a no-op.
func (s *BoltStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPatterns).Delete([]byte(id))
	})
	if err != nil {
		return err
	}
	delete(s.patterns, id)
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
