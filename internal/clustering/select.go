// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clustering

import (
	"math/rand"
	"sort"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Representative points back at an input vector chosen to stand in for
// its cluster, with the metadata later used for ordering the digest.
type Representative struct {
	// Index into the vectors (and papers) slice the labels were computed for.
	Index int

	ClusterID        int
	ClusterSize      int
	ClusterRank      int
	DistanceToCenter float64
}

// maxNoiseSamples bounds how many unclustered papers are kept as wildcards.
const maxNoiseSamples = 2

// SelectRepresentatives picks the papers closest to the center of each of
// the topClusters largest clusters: at least one per cluster, at most half
// the cluster. Noise points are not centered on anything, so up to two are
// sampled at random as wildcards, ranked behind every real cluster. rng
// may be nil, in which case the global source is used.
func SelectRepresentatives(vectors [][]float64, labels []int, topClusters int, rng *rand.Rand) []Representative {
	if len(vectors) == 0 || len(labels) != len(vectors) {
		return nil
	}

	members := make(map[int][]int)
	for i, label := range labels {
		members[label] = append(members[label], i)
	}

	var clusters []int
	for label := range members {
		if label != Noise {
			clusters = append(clusters, label)
		}
	}
	// Largest first; label breaks ties so the ranking is stable.
	sort.Slice(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		if len(members[a]) != len(members[b]) {
			return len(members[a]) > len(members[b])
		}
		return a < b
	})
	if len(clusters) > topClusters {
		clusters = clusters[:topClusters]
	}

	var out []Representative
	for rank, label := range clusters {
		idxs := members[label]
		size := len(idxs)

		clusterVectors := make([][]float64, size)
		for i, idx := range idxs {
			clusterVectors[i] = vectors[idx]
		}
		center := meanVector(clusterVectors)

		reps := make([]Representative, size)
		for i, idx := range idxs {
			reps[i] = Representative{
				Index:            idx,
				ClusterID:        label,
				ClusterSize:      size,
				ClusterRank:      rank,
				DistanceToCenter: euclideanDistance(vectors[idx], center),
			}
		}
		sort.Slice(reps, func(i, j int) bool {
			return reps[i].DistanceToCenter < reps[j].DistanceToCenter
		})

		// Half the cluster rounded down, never zero: a cluster of three
		// keeps one. Rounding up would let two-paper clusters flood the
		// digest with both members.
		keep := size / 2
		if keep < 1 {
			keep = 1
		}
		out = append(out, reps[:keep]...)
	}

	if noise := members[Noise]; len(noise) > 0 {
		if rng == nil {
			rng = rand.New(rand.NewSource(rand.Int63()))
		}
		picks := rng.Perm(len(noise))
		if len(picks) > maxNoiseSamples {
			picks = picks[:maxNoiseSamples]
		}
		for _, p := range picks {
			out = append(out, Representative{
				Index:            noise[p],
				ClusterID:        Noise,
				ClusterSize:      0,
				ClusterRank:      types.NoiseRank,
				DistanceToCenter: types.NoiseDistance,
			})
		}
	}

	return out
}
