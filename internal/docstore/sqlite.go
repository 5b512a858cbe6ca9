package docstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"articlerag/internal/domain"
)

//go:embed schema.sql
var schema string

// SchemaVersion is written to the meta table of every saved store.
const SchemaVersion = 1

// Save writes s to a fresh SQLite database at a temporary path next to path
// and renames it into place.
func Save(ctx context.Context, path string, s *Store) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmp := f.Name()
	f.Close()
	defer os.Remove(tmp)

	if err := write(ctx, tmp, s); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

func write(ctx context.Context, path string, s *Store) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, text, title, author, date, bio, source, article_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range s.order {
		c := s.chunks[id]
		m := c.Metadata
		if _, err := stmt.ExecContext(ctx, c.ID, c.Text, m.Title, m.Author, m.Date, m.Bio, m.Source, c.ArticleKey); err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.ID, err)
		}
	}
	for key, value := range map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"count":          strconv.Itoa(len(s.order)),
	} {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("write meta %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit store: %w", err)
	}
	return db.Close()
}

// Load reads a store written by Save.
func Load(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	var version, count int
	if err := db.QueryRowContext(ctx, "SELECT CAST(value AS INTEGER) FROM meta WHERE key = 'schema_version'").Scan(&version); err != nil {
		return nil, fmt.Errorf("%w: store %s: read schema version: %v", domain.ErrCorrupt, path, err)
	}
	if version != SchemaVersion {
		return nil, fmt.Errorf("%w: store %s: schema version %d, want %d", domain.ErrCorrupt, path, version, SchemaVersion)
	}
	if err := db.QueryRowContext(ctx, "SELECT CAST(value AS INTEGER) FROM meta WHERE key = 'count'").Scan(&count); err != nil {
		return nil, fmt.Errorf("%w: store %s: read count: %v", domain.ErrCorrupt, path, err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, text, title, author, date, bio, source, article_key
		FROM chunks ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	s := New()
	for rows.Next() {
		var c domain.Chunk
		m := &c.Metadata
		if err := rows.Scan(&c.ID, &c.Text, &m.Title, &m.Author, &m.Date, &m.Bio, &m.Source, &c.ArticleKey); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := s.Put(c); err != nil {
			return nil, errors.Join(domain.ErrCorrupt, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	if s.Len() != count {
		return nil, fmt.Errorf("%w: store %s: %d chunks, meta says %d", domain.ErrCorrupt, path, s.Len(), count)
	}
	return s, nil
}
