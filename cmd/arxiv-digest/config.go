// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-digest/internal/secrets"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultPDFTimeout    = 60 * time.Second
	defaultReviewTimeout = 120 * time.Second
	defaultUserAgent     = "arxiv-digest/0.1"

	// watermarkFile lives next to the history database so one data
	// directory holds all run state.
	watermarkFile = "processed_papers.json"
)

// loadPipelineConfig assembles the full pipeline configuration: the YAML
// config file viper located, code defaults for anything it omits, and
// credentials overlaid from .secrets/ files or ARXIV_DIGEST_* environment
// variables. Running without a config file is fine; the defaults describe
// a usable local setup minus the credentials.
func loadPipelineConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	overlayCredentials(&cfg)
	return cfg, nil
}

// applyDefaults fills zero values. Durations live here rather than in the
// YAML file because yaml.v3 cannot parse "30s" into a time.Duration.
func applyDefaults(cfg *types.PipelineConfig) {
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = defaultTimeout
	}
	if cfg.Search.UserAgent == "" {
		cfg.Search.UserAgent = defaultUserAgent
	}
	if cfg.Search.DaysBack == 0 {
		cfg.Search.DaysBack = 3
	}

	if cfg.PDF.Timeout == 0 {
		cfg.PDF.Timeout = defaultPDFTimeout
	}
	if cfg.PDF.UserAgent == "" {
		cfg.PDF.UserAgent = defaultUserAgent
	}
	if cfg.PDF.MaxScanPages == 0 {
		cfg.PDF.MaxScanPages = 20
	}
	if cfg.PDF.MaxChars == 0 {
		cfg.PDF.MaxChars = 20000
	}

	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = defaultTimeout
	}

	if cfg.Clustering.Method == "" {
		cfg.Clustering.Method = types.MethodDBSCAN
	}
	if cfg.Clustering.Eps == 0 {
		cfg.Clustering.Eps = 0.4
	}
	if cfg.Clustering.MinSamples == 0 {
		cfg.Clustering.MinSamples = 2
	}
	if cfg.Clustering.NClusters == 0 {
		cfg.Clustering.NClusters = 5
	}
	if cfg.Clustering.TopClusters == 0 {
		cfg.Clustering.TopClusters = 3
	}

	if cfg.Review.Timeout == 0 {
		cfg.Review.Timeout = defaultReviewTimeout
	}
	if cfg.Review.RetryCount == 0 {
		cfg.Review.RetryCount = 3
	}
	if cfg.Review.RetryDelay == 0 {
		cfg.Review.RetryDelay = 5 * time.Second
	}

	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "reports"
	}
	if cfg.Report.Timezone == "" {
		cfg.Report.Timezone = "Asia/Shanghai"
	}

	if cfg.Mail.SMTPPort == 0 {
		cfg.Mail.SMTPPort = 465
	}

	if cfg.History.DataDir == "" {
		cfg.History.DataDir = "data"
	}
}

// overlayCredentials fills empty credential fields from the environment
// (via viper) and the .secrets/ directory. A value in the config file wins.
func overlayCredentials(cfg *types.PipelineConfig) {
	if cfg.Review.APIKey == "" {
		cfg.Review.APIKey = viper.GetString("review.api_key")
	}
	if cfg.Review.APIKey == "" {
		cfg.Review.APIKey = secrets.Get(loadedSecrets, "llm-api-key", "LLM_API_KEY")
	}

	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = viper.GetString("embedding.api_key")
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = secrets.Get(loadedSecrets, "embedding-api-key", "EMBEDDING_API_KEY")
	}

	if cfg.Mail.Password == "" {
		cfg.Mail.Password = viper.GetString("mail.password")
	}
	if cfg.Mail.Password == "" {
		cfg.Mail.Password = secrets.Get(loadedSecrets, "smtp-password", "SMTP_PASSWORD")
	}
}
