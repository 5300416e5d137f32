// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// snapshot is the YAML document written next to each report.
type snapshot struct {
	FetchedAt time.Time     `yaml:"fetched_at"`
	Query     string        `yaml:"query"`
	Papers    []types.Paper `yaml:"papers"`
}

// SaveSnapshot writes the run's paper metadata to a timestamped YAML file
// in dir and returns its path. The snapshot is the raw material for
// re-running review stages without hitting the API again.
func SaveSnapshot(papers []types.Paper, query, dir string, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot dir: %w", err)
	}

	// Full text is reproducible from the PDF and bloats the snapshot.
	slim := make([]types.Paper, len(papers))
	copy(slim, papers)
	for i := range slim {
		slim[i].FullText = ""
	}

	data, err := yaml.Marshal(snapshot{FetchedAt: at.UTC(), Query: query, Papers: slim})
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("papers_%s.yaml", at.UTC().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}
