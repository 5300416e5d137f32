// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clustering

import "math/rand"

// kmeansSeed fixes centroid initialization so repeated runs over the same
// vectors produce the same labels.
const kmeansSeed = 42

const kmeansMaxIterations = 100

// KMeans partitions vectors into at most k clusters. k is capped at the
// number of vectors. Every vector gets a label; K-Means has no notion of
// noise. Initialization is seeded, so the result is deterministic.
func KMeans(vectors [][]float64, k int) []int {
	n := len(vectors)
	if n == 0 {
		return nil
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}

	rng := rand.New(rand.NewSource(kmeansSeed))

	// Seed centroids from k distinct input vectors.
	centroids := make([][]float64, k)
	for i, idx := range rng.Perm(n)[:k] {
		centroids[i] = append([]float64(nil), vectors[idx]...)
	}

	labels := make([]int, n)
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, v := range vectors {
			best := 0
			bestDist := euclideanDistance(v, centroids[0])
			for c := 1; c < k; c++ {
				if d := euclideanDistance(v, centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		updateCentroids(vectors, labels, centroids)
	}

	return labels
}

// updateCentroids recomputes each centroid as the mean of its members.
// Empty clusters keep their previous centroid.
func updateCentroids(vectors [][]float64, labels []int, centroids [][]float64) {
	dim := len(vectors[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = make([]float64, dim)
	}
	for i, v := range vectors {
		c := labels[i]
		counts[c]++
		for j, x := range v {
			sums[c][j] += x
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for j := range centroids[c] {
			centroids[c][j] = sums[c][j] / float64(counts[c])
		}
	}
}
