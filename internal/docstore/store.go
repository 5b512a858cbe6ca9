// Package docstore maps chunk ids to chunk text and provenance. It shares its
// id space with the vector index and is persisted next to it.
package docstore

import (
	"fmt"
	"slices"

	"articlerag/internal/domain"
)

// Store is an in-memory, insertion-ordered id → chunk map.
// It is not safe for concurrent writes.
type Store struct {
	chunks   map[int64]domain.Chunk
	order    []int64
	articles map[string]struct{}
	maxID    int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		chunks:   make(map[int64]domain.Chunk),
		articles: make(map[string]struct{}),
		maxID:    -1,
	}
}

// Put adds a chunk under its id.
func (s *Store) Put(c domain.Chunk) error {
	if _, ok := s.chunks[c.ID]; ok {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateID, c.ID)
	}
	s.chunks[c.ID] = c
	s.order = append(s.order, c.ID)
	if c.ArticleKey != "" {
		s.articles[c.ArticleKey] = struct{}{}
	}
	s.maxID = max(s.maxID, c.ID)
	return nil
}

// Get returns the chunk stored under id.
func (s *Store) Get(id int64) (domain.Chunk, error) {
	c, ok := s.chunks[id]
	if !ok {
		return domain.Chunk{}, fmt.Errorf("chunk %d: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (s *Store) Len() int { return len(s.order) }

// IDs returns ids in insertion order.
func (s *Store) IDs() []int64 { return slices.Clone(s.order) }

// MaxID returns the largest id stored, or -1 when empty.
func (s *Store) MaxID() int64 { return s.maxID }

// HasArticle reports whether chunks of the article with this key are stored.
func (s *Store) HasArticle(key string) bool {
	_, ok := s.articles[key]
	return ok
}
