package vectorindex

import (
	"container/heap"
	"fmt"
	"slices"
	"sync"

	"articlerag/internal/domain"
)

// FlatL2 is an exact index: vectors live in one contiguous slice and search is
// a linear scan. Ties on distance go to the earlier insertion.
type FlatL2 struct {
	mu        sync.RWMutex
	dimension int
	ids       []int64
	data      []float32
	pos       map[int64]int
}

var _ Index = (*FlatL2)(nil)

// NewFlatL2 creates an empty index of the given dimension.
func NewFlatL2(dimension int) (*FlatL2, error) {
	if dimension <= 0 {
		return nil, domain.Configf("index dimension must be positive, got %d", dimension)
	}
	return &FlatL2{dimension: dimension, pos: make(map[int64]int)}, nil
}

func (x *FlatL2) Dimension() int { return x.dimension }

func (x *FlatL2) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Add appends a copy of vector under id.
func (x *FlatL2) Add(id int64, vector []float32) error {
	if len(vector) != x.dimension {
		return fmt.Errorf("id %d: %w", id, &domain.DimensionMismatchError{Op: "add", Expected: x.dimension, Actual: len(vector)})
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.pos[id]; ok {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateID, id)
	}
	x.pos[id] = len(x.ids)
	x.ids = append(x.ids, id)
	x.data = append(x.data, vector...)
	return nil
}

// Search returns the k ids nearest to query, ascending by squared distance.
// k larger than Len is clamped.
func (x *FlatL2) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != x.dimension {
		return nil, &domain.DimensionMismatchError{Op: "search", Expected: x.dimension, Actual: len(query)}
	}
	if k <= 0 {
		return nil, domain.Configf("k must be positive, got %d", k)
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	k = min(k, len(x.ids))

	h := make(candidates, 0, k)
	for i := range x.ids {
		c := candidate{pos: i, dist: SquaredL2(query, x.row(i))}
		if len(h) < k {
			heap.Push(&h, c)
			continue
		}
		if c.before(h[0]) {
			h[0] = c
			heap.Fix(&h, 0)
		}
	}

	slices.SortFunc(h, func(a, b candidate) int {
		switch {
		case a.before(b):
			return -1
		case b.before(a):
			return 1
		}
		return 0
	})
	hits := make([]Hit, len(h))
	for i, c := range h {
		hits[i] = Hit{ID: x.ids[c.pos], Distance: c.dist}
	}
	return hits, nil
}

// IDs returns a copy of the ids in insertion order.
func (x *FlatL2) IDs() []int64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return slices.Clone(x.ids)
}

// Vector returns a copy of the vector stored under id.
func (x *FlatL2) Vector(id int64) ([]float32, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	i, ok := x.pos[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(x.row(i)), true
}

func (x *FlatL2) row(i int) []float32 {
	return x.data[i*x.dimension : (i+1)*x.dimension]
}

type candidate struct {
	pos  int
	dist float32
}

func (c candidate) before(o candidate) bool {
	if c.dist != o.dist {
		return c.dist < o.dist
	}
	return c.pos < o.pos
}

// candidates is a max-heap: the root is the worst of the current best k.
type candidates []candidate

func (h candidates) Len() int           { return len(h) }
func (h candidates) Less(i, j int) bool { return h[j].before(h[i]) }
func (h candidates) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candidates) Push(v any)        { *h = append(*h, v.(candidate)) }
func (h *candidates) Pop() any {
	old := *h
	c := old[len(old)-1]
	*h = old[:len(old)-1]
	return c
}
