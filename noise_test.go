package genie

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafNoise(t *testing.T) {
	// 0-1-2-3 path with 4 hanging off 1
	mst := []Edge{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {1, 4, 1}}
	noise := LeafNoise{}.Noise(NoiseInput{MST: mst, N: 5})
	assert.Equal(t, []uint32{0, 3, 4}, noise.ToArray())
}

func TestCoreDistanceNoise(t *testing.T) {
	in := NoiseInput{Core: []float64{4, 1, 10, 2, 3}, N: 5}
	noise := CoreDistanceNoise{Quantile: 0.5}.Noise(in)
	assert.Equal(t, []uint32{0, 2}, noise.ToArray(), "above the median 3")

	assert.True(t, CoreDistanceNoise{Quantile: 1}.Noise(in).IsEmpty())
	assert.True(t, CoreDistanceNoise{Quantile: 0.5}.Noise(NoiseInput{N: 5}).IsEmpty())
}

func TestSplitInliers(t *testing.T) {
	assert.Equal(t, []int{0, 2, 4}, splitInliers(5, roaring.BitmapOf(1, 3)))
	assert.Equal(t, []int{0, 1}, splitInliers(2, roaring.New()))
}

func TestInlierMST_ReusesTreeWithoutLeaves(t *testing.T) {
	o := mustVectorOracle([][]float64{{0}, {1}, {3}, {6}}, nil)
	mst, err := BuildMST(o, 1)
	require.NoError(t, err)

	edges, err := inlierMST(o, mst, []int{1, 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, []Edge{{0, 1, 2}}, edges)
}

func TestInlierMST_RebuildsWhenSplit(t *testing.T) {
	o := mustVectorOracle([][]float64{{0}, {1}, {3}, {6}}, nil)
	mst, err := BuildMST(o, 1)
	require.NoError(t, err)

	// dropping point 2 cuts the path in two
	edges, err := inlierMST(o, mst, []int{0, 1, 3}, 1)
	require.NoError(t, err)
	assert.Equal(t, []Edge{{0, 1, 1}, {1, 2, 5}}, edges)
}

func TestInlierMST_GraphSubset(t *testing.T) {
	g, err := NewNeighborGraph(
		[][]int{{1, 3}, {2}, {3}, {}},
		[][]float64{{1, 9}, {2}, {3}, {}},
	)
	require.NoError(t, err)
	o, err := NewGraphOracle(g, nil, 1.0)
	require.NoError(t, err)
	mst, err := BuildMST(o, 1)
	require.NoError(t, err)

	edges, err := inlierMST(o, mst, []int{0, 1, 3}, 1)
	require.NoError(t, err)
	assert.Equal(t, []Edge{{0, 1, 1}, {0, 2, 9}}, edges)

	sub := o.subset([]int{1, 2})
	assert.Equal(t, 2.0, sub.Distance(0, 1))
}

func TestAssignNoise(t *testing.T) {
	o := mustVectorOracle([][]float64{{0}, {1}, {1.5}, {10}, {11}, {30}}, nil)
	noise := roaring.BitmapOf(2, 5)
	inliers := []int{0, 1, 3, 4}
	core := []float64{1, 1, 1, 1, 1, 1}
	fresh := func() []int { return []int{0, 0, -1, 1, 1, -1} }

	labels := fresh()
	assignNoise(labels, noise, inliers, o, core, NoiseNone)
	assert.Equal(t, fresh(), labels)

	labels = fresh()
	assignNoise(labels, noise, inliers, o, core, NoiseBoundary)
	assert.Equal(t, []int{0, 0, 0, 1, 1, -1}, labels, "only point 2 is within reach")

	labels = fresh()
	assignNoise(labels, noise, inliers, o, core, NoiseAll)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, labels)

	labels = fresh()
	assignNoise(labels, noise, inliers, o, nil, NoiseBoundary)
	assert.Equal(t, fresh(), labels, "no core distances, nothing is within reach")
}
