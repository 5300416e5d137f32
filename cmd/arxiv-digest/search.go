// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/arxiv"
	"github.com/pdiddy/arxiv-digest/internal/watermark"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Preview the papers the next run would process",
	Long: `Search runs the incremental arXiv query without reviewing, reporting,
or advancing the watermark. It shows exactly what the next "run" would
pick up, which makes it the tool for tuning the query and the date window.

PDF enrichment is skipped; only feed metadata is fetched.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "override the configured topic query")
	searchCmd.Flags().StringSlice("category", nil, "override the configured categories")
	searchCmd.Flags().Int("days-back", 0, "override the submitted-date window")
	searchCmd.Flags().Int("max-results", 0, "override the per-run processing cap")
	searchCmd.Flags().StringSlice("id", nil, "restrict to explicit arXiv IDs")
	searchCmd.Flags().Bool("title-only", false, "scope the free-text query to titles")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("snapshot", false, "also write a YAML snapshot to the data dir")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}
	applySearchFlags(cmd, &cfg.Search)

	marks := watermark.NewFileStore(filepath.Join(cfg.History.DataDir, watermarkFile))
	client := arxiv.NewClient(cfg.Search, marks, nil)

	res, err := client.Search(context.Background(), os.Stderr)
	if err != nil {
		return fmt.Errorf("searching arXiv: %w", err)
	}

	if snap, _ := cmd.Flags().GetBool("snapshot"); snap && len(res.Papers) > 0 {
		path, err := arxiv.SaveSnapshot(res.Papers, client.BuildQuery(), cfg.History.DataDir, time.Now())
		if err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Snapshot written:", path)
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Papers)
	}
	return formatSearchOutput(os.Stdout, res)
}

func applySearchFlags(cmd *cobra.Command, cfg *types.SearchConfig) {
	if q, _ := cmd.Flags().GetString("query"); q != "" {
		cfg.Query = q
	}
	if cats, _ := cmd.Flags().GetStringSlice("category"); len(cats) > 0 {
		cfg.Categories = cats
	}
	if d, _ := cmd.Flags().GetInt("days-back"); d > 0 {
		cfg.DaysBack = d
	}
	if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
		cfg.MaxResults = n
	}
	if ids, _ := cmd.Flags().GetStringSlice("id"); len(ids) > 0 {
		cfg.IDList = ids
	}
	if t, _ := cmd.Flags().GetBool("title-only"); t {
		cfg.TitleOnly = true
	}
}

func formatSearchOutput(w io.Writer, res *arxiv.Result) error {
	if len(res.Papers) == 0 {
		fmt.Fprintln(w, "No new papers.")
		return nil
	}

	fmt.Fprintf(w, "%-14s  %-10s  %-10s  %s\n", "ID", "Submitted", "Category", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, p := range res.Papers {
		title := p.Title
		if len(title) > 52 {
			title = title[:49] + "..."
		}
		fmt.Fprintf(w, "%-14s  %-10s  %-10s  %s\n",
			p.ID, p.Published.Format("2006-01-02"), p.PrimaryCategory, title)
	}

	fmt.Fprintf(w, "\n%d new paper(s), %d entries scanned\n", len(res.Papers), res.Scanned)
	return nil
}
