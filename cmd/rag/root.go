package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"articlerag/internal/config"
	"articlerag/internal/embedding"
	"articlerag/internal/generation"
	"articlerag/internal/logger"
	"articlerag/internal/service"
	"articlerag/internal/snapshot"
)

var (
	cfgPath     string
	verbose     bool
	snapshotDir string
	cfg         *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "rag",
	Short: "Question answering over a collection of articles",
	Long: `Extracts articles from EPUB and text archives, indexes them as overlapping
chunks in a vector index, and answers questions from the closest passages.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (default ./config.yaml or ~/.config/articlerag/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&snapshotDir, "snapshot", "", "snapshot directory (overrides index.snapshot_dir)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	_ = godotenv.Load()

	var err error
	var path string
	if cfgPath == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		path = cfgPath
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if snapshotDir != "" {
		cfg.Index.SnapshotDir = snapshotDir
	}
	logger.Debug("config loaded", "path", path, "embedder", cfg.Embedder.Type, "generator", cfg.Generator.Type)
	return cfg.Validate()
}

// openEngine loads the configured snapshot and assembles a query engine over it.
func openEngine(ctx context.Context) (*service.QueryEngine, *snapshot.Snapshot, error) {
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return nil, nil, err
	}
	snap, err := service.LoadSnapshot(ctx, cfg.Index.SnapshotDir, emb)
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}
	gen, err := generation.New(cfg.Generator)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("snapshot loaded", "dir", cfg.Index.SnapshotDir, "chunks", snap.Index.Len(), "created", snap.Manifest.CreatedAt)
	retriever := service.NewRetriever(emb, snap.Index, snap.Store)
	return service.NewQueryEngine(retriever, gen), snap, nil
}
