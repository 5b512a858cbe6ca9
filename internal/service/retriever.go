package service

import (
	"context"
	"errors"
	"fmt"

	"articlerag/internal/docstore"
	"articlerag/internal/domain"
	"articlerag/internal/vectorindex"
)

// Retriever finds the passages closest to a query. It never mutates the
// index or store and is safe for concurrent use once building is done.
type Retriever struct {
	embedder domain.Embedder
	index    vectorindex.Index
	store    *docstore.Store
}

func NewRetriever(emb domain.Embedder, idx vectorindex.Index, store *docstore.Store) *Retriever {
	return &Retriever{embedder: emb, index: idx, store: store}
}

// Retrieve returns up to k passages ordered by ascending distance to query.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Passage, error) {
	if k <= 0 {
		return nil, domain.Configf("k must be positive, got %d", k)
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return nil, err
		}
		return nil, domain.NewOracleError("embed query", err)
	}
	hits, err := r.index.Search(vec, k)
	if err != nil {
		return nil, err
	}
	passages := make([]domain.Passage, 0, len(hits))
	for _, h := range hits {
		c, err := r.store.Get(h.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCorrupt, err)
		}
		passages = append(passages, domain.NewPassage(c, h.Distance))
	}
	return passages, nil
}
