// Package service wires chunking, embedding, the vector index and the
// document store into the build and query pipelines.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"articlerag/internal/chunker"
	"articlerag/internal/docstore"
	"articlerag/internal/domain"
	"articlerag/internal/logger"
	"articlerag/internal/progress"
	"articlerag/internal/snapshot"
	"articlerag/internal/vectorindex"
)

// BuildStats summarizes one build.
type BuildStats struct {
	Articles int // articles indexed
	Skipped  int // already present in the store
	Empty    int // no text after normalization
	Chunks   int // chunks added
}

// Builder turns articles into chunks, embeds them and grows an index/store pair.
type Builder struct {
	chunker  *chunker.Chunker
	embedder domain.Embedder
	workers  int
	progress progress.Reporter
	log      *slog.Logger
}

type BuilderOption func(*Builder)

// WithWorkers bounds the number of concurrent embedding calls.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithProgress(p progress.Reporter) BuilderOption {
	return func(b *Builder) { b.progress = p }
}

func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) { b.log = l }
}

func NewBuilder(ch *chunker.Chunker, emb domain.Embedder, opts ...BuilderOption) *Builder {
	b := &Builder{chunker: ch, embedder: emb, workers: 1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) logger() *slog.Logger {
	if b.log != nil {
		return b.log
	}
	return logger.L()
}

// Build chunks and embeds articles and appends them to idx and store.
// Ids continue after the largest id in store, in article then chunk order.
// Articles whose key is already in store are skipped. If any embedding
// fails nothing is inserted.
func (b *Builder) Build(ctx context.Context, articles []domain.Article, idx vectorindex.Index, store *docstore.Store) (BuildStats, error) {
	var stats BuildStats
	if idx.Dimension() != b.embedder.Dimension() {
		return stats, domain.Configf("index dimension %d does not match embedder %s dimension %d",
			idx.Dimension(), b.embedder.Name(), b.embedder.Dimension())
	}
	log := b.logger()

	var plan []domain.Chunk
	next := store.MaxID() + 1
	batch := make(map[string]struct{})
	for _, a := range articles {
		key := a.Key()
		if _, dup := batch[key]; dup || store.HasArticle(key) {
			log.Debug("article already indexed", "title", a.Title, "key", key)
			stats.Skipped++
			continue
		}
		batch[key] = struct{}{}
		if chunker.Normalize(a.Text) == "" {
			log.Warn("article has no text", "title", a.Title, "source", a.Source)
			stats.Empty++
			continue
		}
		for window := range b.chunker.Split(a.Text) {
			plan = append(plan, domain.Chunk{ID: next, Text: window, Metadata: a.Metadata(), ArticleKey: key})
			next++
		}
		stats.Articles++
	}
	if len(plan) == 0 {
		return stats, nil
	}

	vectors, err := b.embedAll(ctx, plan, idx.Dimension())
	if err != nil {
		return BuildStats{}, err
	}
	for i, c := range plan {
		if err := idx.Add(c.ID, vectors[i]); err != nil {
			return BuildStats{}, fmt.Errorf("add chunk %d: %w", c.ID, err)
		}
		if err := store.Put(c); err != nil {
			return BuildStats{}, fmt.Errorf("store chunk %d: %w", c.ID, err)
		}
	}
	stats.Chunks = len(plan)
	log.Info("indexed articles", "articles", stats.Articles, "chunks", stats.Chunks, "skipped", stats.Skipped)
	return stats, nil
}

// embedAll embeds every planned chunk with at most b.workers calls in flight.
// Each result lands in the slot of its chunk, so order does not depend on
// scheduling.
func (b *Builder) embedAll(ctx context.Context, plan []domain.Chunk, dim int) ([][]float32, error) {
	vectors := make([][]float32, len(plan))
	if b.progress != nil {
		b.progress.Start(len(plan))
		defer b.progress.Finish()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range plan {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := b.embedder.Embed(gctx, plan[i].Text)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return domain.NewOracleError(fmt.Sprintf("embed chunk %d", plan[i].ID), err)
			}
			if len(v) != dim {
				return &domain.DimensionMismatchError{Op: fmt.Sprintf("embed chunk %d", plan[i].ID), Expected: dim, Actual: len(v)}
			}
			vectors[i] = v
			if b.progress != nil {
				b.progress.Increment()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// BuildSnapshot grows the snapshot in dir with articles, creating it when
// absent. The snapshot is only rewritten after a fully successful build.
func (b *Builder) BuildSnapshot(ctx context.Context, articles []domain.Article, dir string) (BuildStats, error) {
	var (
		idx   *vectorindex.FlatL2
		store *docstore.Store
		err   error
	)
	existing := snapshot.Exists(dir)
	if existing {
		snap, err := LoadSnapshot(ctx, dir, b.embedder)
		if err != nil {
			return BuildStats{}, err
		}
		idx, store = snap.Index, snap.Store
		b.logger().Info("loaded snapshot", "dir", dir, "chunks", idx.Len())
	} else {
		if idx, err = vectorindex.NewFlatL2(b.embedder.Dimension()); err != nil {
			return BuildStats{}, err
		}
		store = docstore.New()
	}

	stats, err := b.Build(ctx, articles, idx, store)
	if err != nil {
		return stats, err
	}
	if existing && stats.Chunks == 0 {
		b.logger().Info("snapshot up to date", "dir", dir)
		return stats, nil
	}
	m := snapshot.Manifest{
		Embedder:  b.embedder.Name(),
		ChunkUnit: b.chunker.Tokenizer().Name(),
		ChunkSize: b.chunker.ChunkSize(),
		Overlap:   b.chunker.Overlap(),
	}
	if err := snapshot.Save(ctx, dir, idx, store, m); err != nil {
		return stats, fmt.Errorf("save snapshot: %w", err)
	}
	b.logger().Info("snapshot saved", "dir", dir, "chunks", idx.Len())
	return stats, nil
}

// LoadSnapshot loads the snapshot in dir for use with emb. A snapshot built
// by another embedder or dimension is a configuration error, since its
// vectors are not comparable with emb's.
func LoadSnapshot(ctx context.Context, dir string, emb domain.Embedder) (*snapshot.Snapshot, error) {
	if !snapshot.Exists(dir) {
		return nil, fmt.Errorf("snapshot %s: %w", dir, domain.ErrNotFound)
	}
	snap, err := snapshot.Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	if snap.Manifest.Dimension != emb.Dimension() {
		return nil, domain.Configf("snapshot %s has dimension %d, embedder %s produces %d",
			dir, snap.Manifest.Dimension, emb.Name(), emb.Dimension())
	}
	if snap.Manifest.Embedder != emb.Name() {
		return nil, domain.Configf("snapshot %s was built with embedder %q, configured embedder is %q",
			dir, snap.Manifest.Embedder, emb.Name())
	}
	return snap, nil
}
