package genie

import (
	"math"
	"math/rand"
	"sort"
)

const floatTol = 1e-10

// flatMatrix builds a flat n×n row-major matrix from a 2D slice.
func flatMatrix(m [][]float64) []float64 {
	n := len(m)
	flat := make([]float64, n*n)
	for i := range m {
		copy(flat[i*n:], m[i])
	}
	return flat
}

// randomPoints returns n points with coordinates uniform in [0, 100).
func randomPoints(rng *rand.Rand, n, dims int) [][]float64 {
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, dims)
		for j := range data[i] {
			data[i][j] = rng.Float64() * 100
		}
	}
	return data
}

// blobs returns k Gaussian blobs of the given sizes centered 20 apart on a
// line, with unit spread.
func blobs(rng *rand.Rand, sizes ...int) ([][]float64, []int) {
	var data [][]float64
	var truth []int
	for c, size := range sizes {
		for i := 0; i < size; i++ {
			data = append(data, []float64{20*float64(c) + rng.NormFloat64(), rng.NormFloat64()})
			truth = append(truth, c)
		}
	}
	return data, truth
}

func mustVectorOracle(data [][]float64, metric DistanceMetric) *VectorOracle {
	o, err := NewVectorOracle(data, metric)
	if err != nil {
		panic(err)
	}
	return o
}

// kruskal computes the MST of o by sorting all pairs. Reference only.
func kruskal(o Oracle) []Edge {
	n := o.Len()
	all := make([]Edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			all = append(all, Edge{U: i, V: j, Weight: sanitize(o.Distance(i, j))})
		}
	}
	sort.Slice(all, func(a, b int) bool { return edgeLess(all[a], all[b]) })
	uf := NewUnionFind(n)
	var edges []Edge
	for _, e := range all {
		if uf.Find(e.U) != uf.Find(e.V) {
			uf.Union(e.U, e.V)
			edges = append(edges, e)
		}
	}
	return edges
}

// bruteGini computes the normalized Gini index of sizes from its definition.
func bruteGini(sizes []int) float64 {
	k := len(sizes)
	if k <= 1 {
		return 0
	}
	n := 0
	var sum float64
	for i, a := range sizes {
		n += a
		for _, b := range sizes[i+1:] {
			sum += math.Abs(float64(a - b))
		}
	}
	return sum / (float64(k-1) * float64(n))
}

// clusterSizes counts labels 0..max.
func clusterSizes(labels []int) map[int]int {
	sizes := make(map[int]int)
	for _, l := range labels {
		sizes[l]++
	}
	return sizes
}

// samePartition reports whether two labelings group points identically.
func samePartition(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	ab := make(map[int]int)
	ba := make(map[int]int)
	for i := range a {
		if x, ok := ab[a[i]]; ok && x != b[i] {
			return false
		}
		if y, ok := ba[b[i]]; ok && y != a[i] {
			return false
		}
		ab[a[i]], ba[b[i]] = b[i], a[i]
	}
	return true
}
