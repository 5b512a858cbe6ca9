package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"articlerag/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		snapshotDir, buildDataDir, queryTopK = "", "", 0
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeConfig(t *testing.T, dir, embedder string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`embedder:
  type: %s
  dimension: 256
chunker:
  unit: word
  chunk_size: 12
  overlap: 3
index:
  snapshot_dir: %s
  workers: 2
generator:
  type: extractive
  max_sentences: 2
query:
  top_k: 2
`, embedder, filepath.Join(dir, "db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestBuildAndQuery(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "raw")
	require.NoError(t, os.MkdirAll(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "energy.txt"),
		[]byte("Oil prices rose sharply this winter. Refineries could not keep up with demand."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "football.txt"),
		[]byte("The football final ended in a draw. Fans celebrated in the streets all night."), 0o644))
	cfgFile := writeConfig(t, dir, "hashing")

	out, err := run(t, "--config", cfgFile, "build", "--data-dir", data)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Indexed 2 articles")

	out, err = run(t, "--config", cfgFile, "build", "--data-dir", data)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Indexed 0 articles (0 chunks)")
	assert.Contains(t, out, "2 already indexed")

	out, err = run(t, "--config", cfgFile, "query", "-k", "1", "why", "did", "oil", "prices", "rise?")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Answer:")
	assert.Contains(t, out, "Oil prices rose sharply this winter.")
	assert.Contains(t, out, "[1] energy")
	assert.NotContains(t, out, "[2]")
	assert.Contains(t, out, "Sources:")
}

func TestQuery_MissingSnapshot(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "--config", writeConfig(t, dir, "hashing"), "query", "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, out, "Error:")
}

func TestBuild_EmptyDataDir(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--config", writeConfig(t, dir, "hashing"), "build", "--data-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no articles found")
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--config", writeConfig(t, dir, "word2vec"), "build")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
