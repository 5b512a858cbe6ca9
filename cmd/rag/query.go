package main

import (
	"strings"

	"github.com/spf13/cobra"

	"articlerag/internal/progress"
	"articlerag/internal/service"
)

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question from the indexed articles",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of passages to retrieve (overrides query.top_k)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	k := cfg.Query.TopK
	if queryTopK > 0 {
		k = queryTopK
	}

	stop := progress.StartSpinner(progress.Enabled(), "loading snapshot")
	engine, _, err := openEngine(ctx)
	stop()
	if err != nil {
		return err
	}

	answer, err := engine.Ask(ctx, strings.Join(args, " "), k)
	if err != nil {
		return err
	}
	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, a *service.Answer) {
	cmd.Println("Answer:")
	cmd.Println(a.Text)

	cmd.Println()
	cmd.Println("Passages:")
	if len(a.Passages) == 0 {
		cmd.Println("  (none)")
	}
	for i, p := range a.Passages {
		title := p.Title
		if title == "" {
			title = "Untitled"
		}
		cmd.Printf("  [%d] %s (distance %.4f)\n", i+1, title, p.Distance)
		cmd.Printf("      %s\n", p.Text)
	}

	cites := service.Citations(a.Passages)
	if len(cites) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, c := range cites {
		line := c.Title
		if line == "" {
			line = "Untitled"
		}
		if c.Author != "" {
			line += ", " + c.Author
		}
		if c.Date != "" {
			line += ", " + c.Date
		}
		cmd.Printf("  - %s\n", line)
	}
}
