// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clustering

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoThemes has a tight group around (1,0,0), a tight group around
// (0,1,0), and one outlier pointing along (0,0,1).
var twoThemes = [][]float64{
	{1.00, 0.01, 0.00},
	{0.99, 0.02, 0.01},
	{0.98, 0.00, 0.02},
	{0.01, 1.00, 0.00},
	{0.02, 0.99, 0.01},
	{0.00, 0.98, 0.02},
	{0.00, 0.01, 1.00},
}

func TestDBSCANTwoThemes(t *testing.T) {
	labels := DBSCAN(twoThemes, 0.28, 2)
	require.Len(t, labels, len(twoThemes))

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[1], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[4], labels[5])
	assert.NotEqual(t, labels[0], labels[3])
	assert.Equal(t, Noise, labels[6])
}

func TestDBSCANDeterministic(t *testing.T) {
	first := DBSCAN(twoThemes, 0.28, 2)
	second := DBSCAN(twoThemes, 0.28, 2)
	assert.Equal(t, first, second)
}

func TestDBSCANEmpty(t *testing.T) {
	assert.Nil(t, DBSCAN(nil, 0.28, 2))
}

func TestDBSCANAllNoise(t *testing.T) {
	// minSamples above the point count leaves everything unclustered.
	labels := DBSCAN(twoThemes, 0.28, 10)
	for _, l := range labels {
		assert.Equal(t, Noise, l)
	}
}

func TestKMeansLabelCountAndDeterminism(t *testing.T) {
	first := KMeans(twoThemes, 3)
	second := KMeans(twoThemes, 3)
	require.Len(t, first, len(twoThemes))
	assert.Equal(t, first, second)
	for _, l := range first {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 3)
	}
}

func TestKMeansCapsK(t *testing.T) {
	vectors := [][]float64{{1, 0}, {0, 1}}
	labels := KMeans(vectors, 5)
	require.Len(t, labels, 2)
	assert.NotEqual(t, labels[0], labels[1])
}

func TestSelectRepresentatives(t *testing.T) {
	labels := DBSCAN(twoThemes, 0.28, 2)
	reps := SelectRepresentatives(twoThemes, labels, 5, rand.New(rand.NewSource(1)))

	var clustered, noise []Representative
	for _, r := range reps {
		if r.ClusterID == Noise {
			noise = append(noise, r)
		} else {
			clustered = append(clustered, r)
		}
	}

	// Two clusters of three papers each keep max(1, 3/2) = 1 paper apiece.
	require.Len(t, clustered, 2)
	for _, r := range clustered {
		assert.Equal(t, 3, r.ClusterSize)
		assert.Less(t, r.ClusterRank, 2)
		assert.Less(t, r.DistanceToCenter, 1.0)
	}

	// The single outlier comes along as a wildcard.
	require.Len(t, noise, 1)
	assert.Equal(t, 6, noise[0].Index)
	assert.Equal(t, 0, noise[0].ClusterSize)
	assert.Equal(t, 999, noise[0].ClusterRank)
	assert.Equal(t, 999.0, noise[0].DistanceToCenter)
}

func TestSelectRepresentativesTopClusters(t *testing.T) {
	// Three clusters, sizes 3, 2, 1; topClusters 2 keeps the two largest.
	vectors := [][]float64{
		{1, 0}, {1, 0}, {1, 0},
		{0, 1}, {0, 1},
		{-1, -1},
	}
	labels := []int{0, 0, 0, 1, 1, 2}
	reps := SelectRepresentatives(vectors, labels, 2, rand.New(rand.NewSource(1)))

	for _, r := range reps {
		assert.NotEqual(t, 2, r.ClusterID)
	}
	// Rank 0 goes to the larger cluster.
	for _, r := range reps {
		if r.ClusterID == 0 {
			assert.Equal(t, 0, r.ClusterRank)
		}
		if r.ClusterID == 1 {
			assert.Equal(t, 1, r.ClusterRank)
		}
	}
}

func TestSelectRepresentativesBounds(t *testing.T) {
	// A cluster of 5 keeps max(1, 5/2) = 2; a singleton cluster keeps 1.
	vectors := make([][]float64, 6)
	labels := []int{0, 0, 0, 0, 0, 1}
	for i := range vectors {
		vectors[i] = []float64{float64(i), 1}
	}
	reps := SelectRepresentatives(vectors, labels, 5, nil)

	counts := map[int]int{}
	for _, r := range reps {
		counts[r.ClusterID]++
	}
	assert.Equal(t, 2, counts[0])
	assert.Equal(t, 1, counts[1])
}

func TestSelectRepresentativesMismatchedInput(t *testing.T) {
	assert.Nil(t, SelectRepresentatives(twoThemes, []int{0}, 5, nil))
}
