// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clustering

// DBSCAN clusters vectors by density over precomputed cosine distances.
// eps is the neighborhood radius in cosine-distance units and minSamples
// the density threshold (a point's neighborhood includes itself). The
// result has one label per input vector; points in no dense region get
// the Noise label. Labels are assigned in scan order, so the output is
// deterministic for a given input order.
func DBSCAN(vectors [][]float64, eps float64, minSamples int) []int {
	n := len(vectors)
	if n == 0 {
		return nil
	}

	dist := cosineDistanceMatrix(vectors)

	neighbors := func(i int) []int {
		var out []int
		for j := 0; j < n; j++ {
			if dist[i][j] <= eps {
				out = append(out, j)
			}
		}
		return out
	}

	const unvisited = -2
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}

	cluster := 0
	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}
		seed := neighbors(i)
		if len(seed) < minSamples {
			labels[i] = Noise
			continue
		}

		labels[i] = cluster
		// Expand the cluster breadth-first over density-reachable points.
		for k := 0; k < len(seed); k++ {
			j := seed[k]
			if labels[j] == Noise {
				labels[j] = cluster // border point
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster
			reach := neighbors(j)
			if len(reach) >= minSamples {
				seed = append(seed, reach...)
			}
		}
		cluster++
	}

	return labels
}
