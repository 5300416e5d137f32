// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/arxiv"
	"github.com/pdiddy/arxiv-digest/internal/embedding"
	"github.com/pdiddy/arxiv-digest/internal/fulltext"
	"github.com/pdiddy/arxiv-digest/internal/history"
	"github.com/pdiddy/arxiv-digest/internal/mailer"
	"github.com/pdiddy/arxiv-digest/internal/report"
	"github.com/pdiddy/arxiv-digest/internal/review"
	"github.com/pdiddy/arxiv-digest/internal/watermark"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the full digest pipeline once",
	Long: `Run executes one complete digest cycle: incremental arXiv search,
PDF section extraction, LLM review, trend clustering, report generation,
and email delivery. The watermark advances only after the report is
written, so an interrupted run is retried in full next time.

Zero new papers is a normal outcome: a short notice is mailed and the
watermark stays put.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().Bool("no-email", false, "skip email delivery, only write the report")
	runCmd.Flags().Int("max-results", 0, "override the per-run processing cap")
	runCmd.Flags().String("query", "", "override the configured topic query")

	rootCmd.AddCommand(runCmd)
}

// pdfEnricher adapts the fulltext fetcher to the search client's
// enrichment hook, fixing the extraction mode up front.
type pdfEnricher struct {
	fetcher *fulltext.Fetcher
	mode    fulltext.Mode
}

func (e pdfEnricher) FetchText(ctx context.Context, pdfURL string) (string, types.TextSource, bool) {
	return e.fetcher.FetchText(ctx, pdfURL, e.mode)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetInt("max-results"); v > 0 {
		cfg.Search.MaxResults = v
	}
	if q, _ := cmd.Flags().GetString("query"); q != "" {
		cfg.Search.Query = q
	}
	noEmail, _ := cmd.Flags().GetBool("no-email")

	ctx := context.Background()
	started := time.Now()

	marks := watermark.NewFileStore(filepath.Join(cfg.History.DataDir, watermarkFile))
	var texts arxiv.TextFetcher
	if cfg.PDF.ExtractSections {
		texts = pdfEnricher{fetcher: fulltext.NewFetcher(cfg.PDF), mode: fulltext.ModeSections}
	}
	client := arxiv.NewClient(cfg.Search, marks, texts)

	// Search is the only fatal stage: without papers and a resume point
	// there is nothing to degrade to.
	res, err := client.Search(ctx, os.Stdout)
	if err != nil {
		return fmt.Errorf("searching arXiv: %w", err)
	}
	logger.Info().
		Int("papers", len(res.Papers)).
		Int("scanned", res.Scanned).
		Bool("first_run", res.FirstRun).
		Msg("search complete")

	m := mailer.New(cfg.Mail)

	if len(res.Papers) == 0 {
		if !noEmail {
			if err := m.SendNoPapers(os.Stdout); err != nil {
				logger.Warn().Err(err).Msg("no-papers notice failed")
			}
		}
		logger.Info().Msg("no new papers; watermark unchanged")
		return nil
	}

	if snap, err := arxiv.SaveSnapshot(res.Papers, client.BuildQuery(), cfg.History.DataDir, started); err != nil {
		logger.Warn().Err(err).Msg("snapshot failed")
	} else {
		logger.Debug().Str("path", snap).Msg("wrote paper snapshot")
	}

	reviewer := review.NewReviewer(review.NewBackend(cfg.Review), cfg.Review)
	reviewed := reviewer.ReviewAll(ctx, res.Papers, os.Stdout)

	embedder := embedding.NewClient(cfg.Embedding)
	trend := reviewer.AnalyzeTrends(ctx, embedder, cfg.Clustering, reviewed, os.Stdout)

	review.SortByPriority(reviewed)

	finished := time.Now()
	reportPath, err := report.NewGenerator(cfg.Report).Save(reviewed, trend, finished)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Info().Str("path", reportPath).Msg("report written")

	if !noEmail {
		content, err := os.ReadFile(reportPath)
		if err != nil {
			return fmt.Errorf("reading report for delivery: %w", err)
		}
		if err := m.SendReport(string(content), os.Stdout); err != nil {
			logger.Warn().Err(err).Msg("email delivery failed")
		}
	}

	// The report exists, so everything up to here is reproducible from
	// disk; advancing the watermark is now safe.
	if err := marks.Save(res.Watermark()); err != nil {
		return fmt.Errorf("saving watermark: %w", err)
	}
	logger.Info().Str("watermark", res.Watermark()).Msg("watermark advanced")

	store, err := history.NewStore(cfg.History)
	if err != nil {
		logger.Warn().Err(err).Msg("history store unavailable")
		return nil
	}
	defer store.Close()

	runID, err := store.RecordRun(ctx, history.Run{
		StartedAt:  started,
		FinishedAt: finished,
		ReportPath: reportPath,
		Watermark:  res.Watermark(),
		Status:     "completed",
	}, reviewed)
	if err != nil {
		logger.Warn().Err(err).Msg("recording run failed")
		return nil
	}
	logger.Info().Str("run_id", runID).Msg("run recorded")
	return nil
}
