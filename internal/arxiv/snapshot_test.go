// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

func TestSaveSnapshot(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	papers := []types.Paper{{
		ID:       "2601.00794",
		Title:    "A Paper",
		Abstract: "It does things.",
		FullText: "=== Abstract ===\nlong text that should not be persisted",
	}}

	path, err := SaveSnapshot(papers, "cat:cs.CL", dir, at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "papers_20260314_093000.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap snapshot
	require.NoError(t, yaml.Unmarshal(data, &snap))
	assert.Equal(t, "cat:cs.CL", snap.Query)
	require.Len(t, snap.Papers, 1)
	assert.Equal(t, "2601.00794", snap.Papers[0].ID)
	assert.Empty(t, snap.Papers[0].FullText)

	// The caller's slice is untouched.
	assert.NotEmpty(t, papers[0].FullText)
}
