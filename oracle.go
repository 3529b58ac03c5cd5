package genie

import "math"

// Oracle answers pairwise distance queries over a fixed set of points
// identified by index. Implementations must be pure and safe for concurrent
// use: the MST builder calls Distance from several goroutines at once.
//
// Variants are chosen at construction: VectorOracle (exact metric over
// feature vectors), MatrixOracle (precomputed dense matrix),
// ReachabilityOracle (mutual reachability over any base oracle) and
// GraphOracle (restricted to the edges of a neighbor graph).
type Oracle interface {
	// Len returns the number of points.
	Len() int
	// Distance returns the non-negative distance between points i and j.
	Distance(i, j int) float64
}

// VectorOracle computes distances on the fly from flat row-major feature
// vectors using a DistanceMetric.
type VectorOracle struct {
	data   []float64
	n      int
	dims   int
	metric DistanceMetric
}

// NewVectorOracle builds an oracle over data, which must hold n rows of
// equal dimensionality. A nil metric means Euclidean.
func NewVectorOracle(data [][]float64, metric DistanceMetric) (*VectorOracle, error) {
	n := len(data)
	if n == 0 {
		return &VectorOracle{metric: defaultMetric(metric)}, nil
	}
	dims := len(data[0])
	flat := make([]float64, n*dims)
	for i, row := range data {
		if len(row) != dims {
			return nil, invalidInputf("point %d has %d features, expected %d", i, len(row), dims)
		}
		copy(flat[i*dims:], row)
	}
	return newFlatVectorOracle(flat, n, dims, metric), nil
}

func newFlatVectorOracle(flat []float64, n, dims int, metric DistanceMetric) *VectorOracle {
	return &VectorOracle{data: flat, n: n, dims: dims, metric: defaultMetric(metric)}
}

func defaultMetric(m DistanceMetric) DistanceMetric {
	if m == nil {
		return EuclideanMetric{}
	}
	return m
}

func (o *VectorOracle) Len() int { return o.n }

func (o *VectorOracle) Distance(i, j int) float64 {
	return o.metric.Distance(o.Point(i), o.Point(j))
}

// Point returns the feature vector of point i. The slice aliases the
// oracle's storage and must not be modified.
func (o *VectorOracle) Point(i int) []float64 {
	return o.data[i*o.dims : (i+1)*o.dims]
}

// Dims returns the dimensionality of each point.
func (o *VectorOracle) Dims() int { return o.dims }

// Metric returns the metric the oracle evaluates.
func (o *VectorOracle) Metric() DistanceMetric { return o.metric }

// MatrixOracle serves distances from a precomputed n×n row-major matrix.
type MatrixOracle struct {
	dist []float64
	n    int
}

// NewMatrixOracle wraps a flat n*n distance matrix. The matrix is not copied.
func NewMatrixOracle(dist []float64, n int) (*MatrixOracle, error) {
	if n < 0 || len(dist) != n*n {
		return nil, invalidInputf("distance matrix length %d does not match n*n = %d (n=%d)", len(dist), n*n, n)
	}
	return &MatrixOracle{dist: dist, n: n}, nil
}

func (o *MatrixOracle) Len() int { return o.n }

func (o *MatrixOracle) Distance(i, j int) float64 { return o.dist[i*o.n+j] }

// subsetOracle restricts a base oracle to the points listed in idx,
// renumbered 0..len(idx)-1.
type subsetOracle struct {
	base Oracle
	idx  []int
}

func (o subsetOracle) Len() int { return len(o.idx) }

func (o subsetOracle) Distance(i, j int) float64 {
	return o.base.Distance(o.idx[i], o.idx[j])
}

// sanitize maps NaN to +Inf so that every comparison in the builders is
// well defined.
func sanitize(d float64) float64 {
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}
