// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List past digest runs and their papers",
	Long: `History reads the run database. Without arguments it lists recent runs,
newest first. With a run ID it lists that run's papers and decisions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum runs to list (0 = configured default)")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}

	store, err := history.NewStore(cfg.History)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	jsonOut, _ := cmd.Flags().GetBool("json")
	ctx := context.Background()

	if len(args) == 1 {
		papers, err := store.RunPapers(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOut {
			return encodeJSON(os.Stdout, papers)
		}
		return formatRunPapers(os.Stdout, papers)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOut {
		return encodeJSON(os.Stdout, runs)
	}
	return formatRuns(os.Stdout, runs)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-16s  %-6s  %-11s  %s\n", "Run ID", "Started", "Papers", "Recommended", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-16s  %-6d  %-11d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.PaperCount, r.Recommended, r.Status)
	}
	fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
	return nil
}

func formatRunPapers(w io.Writer, papers []history.Entry) error {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers recorded for this run.")
		return nil
	}

	fmt.Fprintf(w, "%-14s  %-10s  %-8s  %s\n", "Paper", "Decision", "Cluster", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, p := range papers {
		title := p.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%-14s  %-10s  %-8d  %s\n", p.PaperID, p.Decision, p.ClusterID, title)
	}
	fmt.Fprintf(w, "\n%d paper(s)\n", len(papers))
	return nil
}
