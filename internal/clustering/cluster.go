// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clustering

import "github.com/pdiddy/arxiv-digest/pkg/types"

// Cluster assigns a label to every vector using the configured method.
// The returned slice always has one label per input vector; only the
// DBSCAN method produces Noise labels.
func Cluster(vectors [][]float64, cfg types.ClusteringConfig) []int {
	switch cfg.Method {
	case types.MethodKMeans:
		return KMeans(vectors, cfg.NClusters)
	default:
		return DBSCAN(vectors, cfg.Eps, cfg.MinSamples)
	}
}
