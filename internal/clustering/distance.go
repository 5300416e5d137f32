// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clustering groups paper embeddings so the digest can reason
// about research themes instead of individual papers. It offers
// density-based grouping (DBSCAN over cosine distance) for mixed feeds
// and K-Means for feeds known to be topically concentrated, plus
// selection of the papers closest to each group's center.
package clustering

import "math"

// Noise is the label DBSCAN assigns to points that belong to no cluster.
const Noise = -1

// cosineDistance is 1 - cosine similarity. Zero vectors, which degraded
// embeddings produce, are treated as maximally distant from everything.
func cosineDistance(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// cosineDistanceMatrix precomputes pairwise distances for DBSCAN.
func cosineDistanceMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := cosineDistance(vectors[i], vectors[j])
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

// euclideanDistance is the straight-line distance between two vectors.
func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// meanVector averages the given vectors component-wise.
func meanVector(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	mean := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i, x := range v {
			mean[i] += x
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vectors))
	}
	return mean
}
