package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"articlerag/internal/docstore"
	"articlerag/internal/domain"
	"articlerag/internal/vectorindex"
)

func pair(t *testing.T, ids ...int64) (*vectorindex.FlatL2, *docstore.Store) {
	t.Helper()
	idx, err := vectorindex.NewFlatL2(2)
	require.NoError(t, err)
	store := docstore.New()
	for _, id := range ids {
		require.NoError(t, idx.Add(id, []float32{float32(id), -float32(id)}))
		require.NoError(t, store.Put(domain.Chunk{ID: id, Text: "chunk", Metadata: domain.Metadata{Title: "T"}}))
	}
	return idx, store
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "db")
	idx, store := pair(t, 0, 1, 2)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.False(t, Exists(dir))
	require.NoError(t, Save(ctx, dir, idx, store, Manifest{Embedder: "hashing", ChunkUnit: "word", ChunkSize: 10, Overlap: 2, CreatedAt: created}))
	require.True(t, Exists(dir))

	snap, err := Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, idx.IDs(), snap.Index.IDs())
	assert.Equal(t, store.IDs(), snap.Store.IDs())
	assert.Equal(t, Manifest{
		Version: FormatVersion, Dimension: 2, Count: 3, Embedder: "hashing",
		ChunkUnit: "word", ChunkSize: 10, Overlap: 2, CreatedAt: created,
	}, snap.Manifest)
}

func TestSave_ReplacesWholeSnapshot(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	dir := filepath.Join(parent, "db")

	idx, store := pair(t, 0)
	require.NoError(t, Save(ctx, dir, idx, store, Manifest{}))
	idx, store = pair(t, 0, 1)
	require.NoError(t, Save(ctx, dir, idx, store, Manifest{}))

	snap, err := Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Index.Len())

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Len(t, entries, 1, "staging and old directories must be cleaned up")
	assert.Equal(t, "db", entries[0].Name())
}

func TestSave_InconsistentPairLeavesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "db")
	idx, store := pair(t, 0)
	require.NoError(t, Save(ctx, dir, idx, store, Manifest{}))

	idx, store = pair(t, 0, 1)
	require.NoError(t, idx.Add(5, []float32{5, 5}))
	err := Save(ctx, dir, idx, store, Manifest{})
	assert.ErrorIs(t, err, domain.ErrCorrupt)

	snap, err := Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, snap.Index.IDs())
}

func TestSave_CancelledLeavesPreviousSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	idx, store := pair(t, 0)
	require.NoError(t, Save(context.Background(), dir, idx, store, Manifest{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	idx, store = pair(t, 0, 1, 2)
	assert.Error(t, Save(ctx, dir, idx, store, Manifest{}))

	snap, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Index.Len())
}

func TestConsistent(t *testing.T) {
	idx, store := pair(t, 0, 1)
	assert.NoError(t, Consistent(idx, store))

	require.NoError(t, store.Put(domain.Chunk{ID: 9}))
	assert.ErrorIs(t, Consistent(idx, store), domain.ErrCorrupt)

	idx2, _ := pair(t, 0, 1, 3)
	assert.ErrorIs(t, Consistent(idx2, store), domain.ErrCorrupt)
}

func TestLoad_MissingPart(t *testing.T) {
	ctx := context.Background()
	for _, file := range []string{IndexFile, StoreFile, ManifestFile} {
		t.Run(file, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "db")
			idx, store := pair(t, 0, 1)
			require.NoError(t, Save(ctx, dir, idx, store, Manifest{}))
			require.NoError(t, os.Remove(filepath.Join(dir, file)))

			_, err := Load(ctx, dir)
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func TestLoad_MismatchedParts(t *testing.T) {
	ctx := context.Background()
	dirA := filepath.Join(t.TempDir(), "a")
	dirB := filepath.Join(t.TempDir(), "b")
	idx, store := pair(t, 0, 1)
	require.NoError(t, Save(ctx, dirA, idx, store, Manifest{}))
	idx, store = pair(t, 0, 2)
	require.NoError(t, Save(ctx, dirB, idx, store, Manifest{}))

	data, err := os.ReadFile(filepath.Join(dirB, StoreFile))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dirA, StoreFile), data, 0o644))

	_, err = Load(ctx, dirA)
	assert.ErrorIs(t, err, domain.ErrCorrupt)
}
