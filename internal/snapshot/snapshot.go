// Package snapshot persists a vector index and its document store as one
// unit. A snapshot directory is replaced as a whole: readers either see the
// previous pair or the new one.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"articlerag/internal/docstore"
	"articlerag/internal/domain"
	"articlerag/internal/vectorindex"
)

const (
	IndexFile    = "vectors.idx"
	StoreFile    = "chunks.db"
	ManifestFile = "manifest.yaml"

	// FormatVersion is bumped whenever the on-disk layout changes.
	FormatVersion = 1
)

// Manifest describes how a snapshot was built.
type Manifest struct {
	Version   int       `yaml:"version"`
	Dimension int       `yaml:"dimension"`
	Count     int       `yaml:"count"`
	Embedder  string    `yaml:"embedder"`
	ChunkUnit string    `yaml:"chunk_unit,omitempty"`
	ChunkSize int       `yaml:"chunk_size,omitempty"`
	Overlap   int       `yaml:"overlap,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Snapshot is a loaded index/store pair.
type Snapshot struct {
	Index    *vectorindex.FlatL2
	Store    *docstore.Store
	Manifest Manifest
}

// Exists reports whether dir holds a snapshot manifest.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ManifestFile))
	return err == nil
}

// Consistent checks that idx and store hold exactly the same ids.
func Consistent(idx vectorindex.Index, store *docstore.Store) error {
	if idx.Len() != store.Len() {
		return fmt.Errorf("%w: index holds %d vectors, store holds %d chunks", domain.ErrCorrupt, idx.Len(), store.Len())
	}
	for _, id := range idx.IDs() {
		if _, err := store.Get(id); err != nil {
			return fmt.Errorf("%w: index id %d has no chunk", domain.ErrCorrupt, id)
		}
	}
	return nil
}

// Save writes idx, store and m into a staging directory beside dir, then
// swaps it in place of dir. On any error before the swap dir is untouched.
func Save(ctx context.Context, dir string, idx vectorindex.Index, store *docstore.Store, m Manifest) error {
	if err := Consistent(idx, store); err != nil {
		return err
	}
	m.Version = FormatVersion
	m.Dimension = idx.Dimension()
	m.Count = idx.Len()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	dir = filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("create snapshot parent: %w", err)
	}
	staging := dir + ".staging-" + uuid.NewString()
	if err := os.Mkdir(staging, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := vectorindex.Save(filepath.Join(staging, IndexFile), idx); err != nil {
		return err
	}
	if err := docstore.Save(ctx, filepath.Join(staging, StoreFile), store); err != nil {
		return err
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return swap(staging, dir)
}

func swap(staging, dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.Rename(staging, dir); err != nil {
			return fmt.Errorf("publish snapshot: %w", err)
		}
		return nil
	}
	old := dir + ".old-" + uuid.NewString()
	if err := os.Rename(dir, old); err != nil {
		return fmt.Errorf("move previous snapshot aside: %w", err)
	}
	if err := os.Rename(staging, dir); err != nil {
		if rerr := os.Rename(old, dir); rerr != nil {
			return fmt.Errorf("publish snapshot: %w (previous snapshot left at %s: %v)", err, old, rerr)
		}
		return fmt.Errorf("publish snapshot: %w", err)
	}
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("remove previous snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot in dir and verifies that its parts agree.
func Load(ctx context.Context, dir string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", domain.ErrCorrupt, err)
	}
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("%w: snapshot format %d, want %d", domain.ErrCorrupt, m.Version, FormatVersion)
	}

	idx, err := vectorindex.Load(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, err
	}
	store, err := docstore.Load(ctx, filepath.Join(dir, StoreFile))
	if err != nil {
		return nil, err
	}
	if idx.Dimension() != m.Dimension || idx.Len() != m.Count {
		return nil, fmt.Errorf("%w: manifest says %d vectors of dimension %d, index has %d of dimension %d",
			domain.ErrCorrupt, m.Count, m.Dimension, idx.Len(), idx.Dimension())
	}
	if err := Consistent(idx, store); err != nil {
		return nil, err
	}
	return &Snapshot{Index: idx, Store: store, Manifest: m}, nil
}
