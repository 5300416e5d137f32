// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Integration test: first-run search → embedding (with one simulated batch
// failure) → centroid clustering → representative selection. Exercises the
// digest's front half end to end using mock arXiv and embeddings servers.

package arxiv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-digest/internal/clustering"
	"github.com/pdiddy/arxiv-digest/internal/embedding"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// scenarioEmbedServer returns well-separated 2D vectors keyed on the
// abstract number: papers 1-3 cluster near (10,0), papers 4-6 near (0,10).
// Any batch containing paper 7 fails, so its vector degrades to zero.
func scenarioEmbedServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type item struct {
			Embedding []float64 `json:"embedding"`
		}
		var data []item
		for _, text := range req.Input {
			var num int
			_, err := fmt.Sscanf(text, "Abstract %d.", &num)
			require.NoError(t, err, "unexpected input %q", text)

			if num == 7 {
				http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
				return
			}
			v := []float64{10, float64(num) * 0.1}
			if num > 3 {
				v = []float64{float64(num) * 0.1, 10}
			}
			data = append(data, item{Embedding: v})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSevenPaperDigestFrontHalf(t *testing.T) {
	feedServer(t, 7)
	embedSrv := scenarioEmbedServer(t)

	marks := &memMarks{}
	client := testClient(types.SearchConfig{
		Query:      "LLM",
		Categories: []string{"cs.CL"},
		DaysBack:   30,
		MaxResults: 10,
	}, marks, nil)

	res, err := client.Search(context.Background(), io.Discard)
	require.NoError(t, err)
	require.Len(t, res.Papers, 7)
	assert.True(t, res.FirstRun)

	texts := make([]string, len(res.Papers))
	for i, p := range res.Papers {
		texts[i] = p.Abstract
	}

	embedder := embedding.NewClient(types.EmbeddingConfig{
		APIURL:    embedSrv.URL,
		BatchSize: 3,
		Dimension: 2,
	})
	vectors := embedder.Embed(context.Background(), texts, io.Discard)
	require.Len(t, vectors, 7)

	degraded := 0
	values := make([][]float64, len(vectors))
	for i, v := range vectors {
		values[i] = v.Values
		require.Len(t, v.Values, 2)
		if v.Degraded {
			degraded++
			assert.True(t, v.IsZero())
		}
	}
	assert.Equal(t, 1, degraded)

	labels := clustering.Cluster(values, types.ClusteringConfig{
		Method:    types.MethodKMeans,
		NClusters: 3,
	})
	require.Len(t, labels, 7)

	sizes := make(map[int]int)
	for _, label := range labels {
		assert.GreaterOrEqual(t, label, 0)
		assert.Less(t, label, 3)
		sizes[label]++
	}
	assert.Len(t, sizes, 3, "three separated groups should yield three clusters")

	reps := clustering.SelectRepresentatives(values, labels, 2, nil)
	require.NotEmpty(t, reps)

	// The two largest clusters, by the selector's own tie rule.
	ordered := make([]int, 0, len(sizes))
	for label := range sizes {
		ordered = append(ordered, label)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if sizes[a] != sizes[b] {
			return sizes[a] > sizes[b]
		}
		return a < b
	})
	topTwo := map[int]bool{ordered[0]: true, ordered[1]: true}

	for _, rep := range reps {
		assert.True(t, topTwo[rep.ClusterID], "representative from cluster %d, want one of the 2 largest", rep.ClusterID)
		assert.Equal(t, rep.ClusterID, labels[rep.Index])
		assert.Contains(t, []int{0, 1}, rep.ClusterRank)
		assert.GreaterOrEqual(t, rep.DistanceToCenter, 0.0)
		assert.Equal(t, sizes[rep.ClusterID], rep.ClusterSize)
	}
}
