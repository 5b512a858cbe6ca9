package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"articlerag/internal/progress"
	"articlerag/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		stop := progress.StartSpinner(progress.Enabled(), "loading snapshot")
		engine, snap, err := openEngine(ctx)
		stop()
		if err != nil {
			return err
		}
		subtitle := fmt.Sprintf("%d passages indexed with %s", snap.Index.Len(), snap.Manifest.Embedder)
		m := tui.New(ctx, engine, cfg.Query.TopK, subtitle)
		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
