package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"articlerag/internal/chunker"
	"articlerag/internal/embedding"
	"articlerag/internal/extract"
	"articlerag/internal/logger"
	"articlerag/internal/progress"
	"articlerag/internal/service"
)

var (
	buildDataDir string
	buildWorkers int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Extract, chunk, embed and index articles",
	Long: `Extracts every .epub and .txt file in the data directory and adds the
articles to the snapshot. Articles already in the snapshot are skipped, so
running build again after adding files only embeds the new ones.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildDataDir, "data-dir", "", "directory of raw articles (overrides extract.data_dir)")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "concurrent embedding calls (overrides index.workers)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dataDir := cfg.Extract.DataDir
	if buildDataDir != "" {
		dataDir = buildDataDir
	}
	workers := cfg.Index.Workers
	if buildWorkers > 0 {
		workers = buildWorkers
	}

	logger.Section("Extract")
	articles, err := extract.Dir(ctx, dataDir)
	if err != nil {
		return fmt.Errorf("extract articles: %w", err)
	}
	if len(articles) == 0 {
		return fmt.Errorf("no articles found in %s", dataDir)
	}
	logger.Info("articles extracted", "count", len(articles), "dir", dataDir)

	tok, ok := chunker.TokenizerFor(cfg.Chunker.Unit)
	if !ok {
		return fmt.Errorf("unknown chunk unit %q", cfg.Chunker.Unit)
	}
	ch, err := chunker.New(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap, chunker.WithTokenizer(tok))
	if err != nil {
		return err
	}
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return err
	}

	logger.Section("Index")
	b := service.NewBuilder(ch, emb,
		service.WithWorkers(workers),
		service.WithProgress(progress.NewBar(progress.Enabled(), os.Stderr, "embedding")),
	)
	stats, err := b.BuildSnapshot(ctx, articles, cfg.Index.SnapshotDir)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	cmd.Printf("Indexed %d articles (%d chunks) into %s; %d already indexed, %d without text.\n",
		stats.Articles, stats.Chunks, cfg.Index.SnapshotDir, stats.Skipped, stats.Empty)
	return nil
}
