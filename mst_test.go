package genie

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMST_FourPointScenario(t *testing.T) {
	o := mustVectorOracle([][]float64{{0, 0}, {0, 1}, {5, 5}, {5, 6}}, nil)
	edges, err := BuildMST(o, 1)
	require.NoError(t, err)

	require.Len(t, edges, 3)
	assert.Equal(t, Edge{U: 0, V: 1, Weight: 1}, edges[0])
	assert.Equal(t, Edge{U: 2, V: 3, Weight: 1}, edges[1])
	assert.Equal(t, 1, edges[2].U)
	assert.Equal(t, 2, edges[2].V)
	assert.InDelta(t, math.Sqrt(41), edges[2].Weight, floatTol)
}

func TestBuildMST_KnownMatrix(t *testing.T) {
	o, err := NewMatrixOracle(flatMatrix([][]float64{
		{0, 1, 3, 4},
		{1, 0, 2, 5},
		{3, 2, 0, 1},
		{4, 5, 1, 0},
	}), 4)
	require.NoError(t, err)

	edges, err := BuildMST(o, 1)
	require.NoError(t, err)
	assert.Equal(t, []Edge{{0, 1, 1}, {2, 3, 1}, {1, 2, 2}}, edges)
}

func TestBuildMST_MatchesKruskal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{2, 3, 10, 57, 200} {
		o := mustVectorOracle(randomPoints(rng, n, 3), nil)
		edges, err := BuildMST(o, 4)
		require.NoError(t, err)
		assert.Equal(t, kruskal(o), edges, "n=%d", n)
	}
}

func TestBuildMST_WorkerCountDoesNotMatter(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	o := mustVectorOracle(randomPoints(rng, 400, 2), ManhattanMetric{})
	want, err := BuildMST(o, 1)
	require.NoError(t, err)
	for _, workers := range []int{2, 4, 7} {
		got, err := BuildMST(o, workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
	assert.InDelta(t, mstWeight(kruskal(o)), mstWeight(want), 1e-6)
}

func TestBuildMST_TiesAreDeterministic(t *testing.T) {
	// a 20x20 integer grid has many equal-weight spanning trees
	var data [][]float64
	for x := 0; x < 20; x++ {
		for y := 0; y < 20; y++ {
			data = append(data, []float64{float64(x), float64(y)})
		}
	}
	o := mustVectorOracle(data, nil)
	first, err := BuildMST(o, 1)
	require.NoError(t, err)
	for _, workers := range []int{3, 8} {
		again, err := BuildMST(o, workers)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.InDelta(t, 399, mstWeight(first), floatTol)
}

func TestBuildMST_EdgesNormalizedAndSorted(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	o := mustVectorOracle(randomPoints(rng, 300, 5), nil)
	edges, err := BuildMST(o, 3)
	require.NoError(t, err)
	require.Len(t, edges, 299)
	for i, e := range edges {
		assert.Less(t, e.U, e.V)
		if i > 0 {
			assert.True(t, edgeLess(edges[i-1], e), "edge %d out of order", i)
		}
	}
}

func TestBuildMST_InfiniteDistances(t *testing.T) {
	o, err := NewMatrixOracle(flatMatrix([][]float64{
		{0, 2, inf},
		{2, 0, inf},
		{inf, inf, 0},
	}), 3)
	require.NoError(t, err)
	edges, err := BuildMST(o, 1)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, Edge{U: 0, V: 1, Weight: 2}, edges[0])
	assert.True(t, math.IsInf(edges[1].Weight, 1))
	assert.True(t, hasInfiniteEdge(edges))
}

func TestBuildMST_TooFewPoints(t *testing.T) {
	for _, n := range []int{0, 1} {
		o, err := NewMatrixOracle(make([]float64, n*n), n)
		require.NoError(t, err)
		_, err = BuildMST(o, 1)
		assert.True(t, errors.Is(err, ErrInvalidInput), "n=%d", n)
	}
}

func TestBuildMST_MutualReachabilityMatchesKruskal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := mustVectorOracle(randomPoints(rng, 120, 2), nil)
	mr, err := NewMutualReachability(base, CoreDistances(base, 5, 1), 1.0)
	require.NoError(t, err)

	edges, err := BuildMST(mr, 2)
	require.NoError(t, err)
	// mutual reachability produces ties, so compare total weight
	assert.InDelta(t, mstWeight(kruskal(mr)), mstWeight(edges), 1e-9)
}

func TestSortEdges(t *testing.T) {
	edges := []Edge{{3, 1, 2}, {2, 0, 1}, {0, 1, 1}}
	sortEdges(edges)
	assert.Equal(t, []Edge{{0, 1, 1}, {0, 2, 1}, {1, 3, 2}}, edges)
}
