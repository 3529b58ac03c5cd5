package genie

import (
	"container/heap"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// kdNode describes a single node in the KD-tree.
type kdNode struct {
	start, end int
	leaf       bool
}

// kdTree is a KD-tree over the rows of a VectorOracle, used for exact
// k-nearest-neighbor queries (core distances and neighbor graphs).
//
// The tree is stored as a complete binary tree in array form: node i has
// children at 2*i+1 and 2*i+2. Bounds are min/max per dimension per node.
type kdTree struct {
	points   *VectorOracle
	leafSize int
	order    []int // tree-order position → point index
	nodes    []kdNode
	lo, hi   []float64
}

func newKDTree(points *VectorOracle, leafSize int) *kdTree {
	if leafSize < 1 {
		leafSize = 1
	}
	n := points.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	capNodes := kdMaxNodes(n, leafSize)
	t := &kdTree{
		points:   points,
		leafSize: leafSize,
		order:    order,
		nodes:    make([]kdNode, capNodes),
		lo:       make([]float64, capNodes*points.Dims()),
		hi:       make([]float64, capNodes*points.Dims()),
	}
	if n > 0 {
		t.build(0, 0, n)
	}
	return t
}

// kdMaxNodes returns an upper bound on the node count for n points.
func kdMaxNodes(n, leafSize int) int {
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	for v := 1; v < leaves; v *= 2 {
		depth++
	}
	return (1 << (depth + 1)) + 1
}

func (t *kdTree) build(id, start, end int) {
	dims := t.points.Dims()
	for id >= len(t.nodes) {
		t.nodes = append(t.nodes, kdNode{})
		t.lo = append(t.lo, make([]float64, dims)...)
		t.hi = append(t.hi, make([]float64, dims)...)
	}
	t.bound(id, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[id] = kdNode{start: start, end: end, leaf: true}
		return
	}

	// Split the widest dimension at the median.
	split, spread := 0, -1.0
	for d := 0; d < dims; d++ {
		if s := t.hi[id*dims+d] - t.lo[id*dims+d]; s > spread {
			split, spread = d, s
		}
	}
	sub := t.order[start:end]
	sort.Slice(sub, func(a, b int) bool {
		va, vb := t.points.Point(sub[a])[split], t.points.Point(sub[b])[split]
		if va != vb {
			return va < vb
		}
		return sub[a] < sub[b]
	})
	mid := start + count/2

	t.nodes[id] = kdNode{start: start, end: end}
	t.build(2*id+1, start, mid)
	t.build(2*id+2, mid, end)
}

func (t *kdTree) bound(id, start, end int) {
	dims := t.points.Dims()
	base := id * dims
	for d := 0; d < dims; d++ {
		t.lo[base+d] = math.Inf(1)
		t.hi[base+d] = math.Inf(-1)
	}
	for _, p := range t.order[start:end] {
		for d, v := range t.points.Point(p) {
			t.lo[base+d] = math.Min(t.lo[base+d], v)
			t.hi[base+d] = math.Max(t.hi[base+d], v)
		}
	}
}

// minRdist is a lower bound, in reduced-distance space, on the distance
// between q and any point in node id.
func (t *kdTree) minRdist(id int, q []float64) float64 {
	dims := t.points.Dims()
	base := id * dims
	p := metricP(t.points.Metric())
	var r float64
	for j := 0; j < dims; j++ {
		var d float64
		if lo := t.lo[base+j]; q[j] < lo {
			d = lo - q[j]
		} else if hi := t.hi[base+j]; q[j] > hi {
			d = q[j] - hi
		}
		if math.IsInf(p, 1) {
			r = math.Max(r, d)
		} else {
			r += math.Pow(d, p)
		}
	}
	return r
}

// knn returns the k nearest neighbors of point self, excluding self, sorted
// by (distance, index).
func (t *kdTree) knn(self, k int) ([]int, []float64) {
	h := &neighborHeap{}
	t.search(0, self, t.points.Point(self), k, h)

	idx := make([]int, h.Len())
	dist := make([]float64, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		it := heap.Pop(h).(neighbor)
		idx[i], dist[i] = it.index, it.dist
	}
	return idx, dist
}

func (t *kdTree) search(id, self int, q []float64, k int, h *neighborHeap) {
	node := t.nodes[id]
	if node.leaf {
		for _, p := range t.order[node.start:node.end] {
			if p == self {
				continue
			}
			it := neighbor{index: p, dist: sanitize(t.points.metric.Distance(q, t.points.Point(p)))}
			if h.Len() < k {
				heap.Push(h, it)
			} else if it.closer((*h)[0]) {
				(*h)[0] = it
				heap.Fix(h, 0)
			}
		}
		return
	}

	near, far := 2*id+1, 2*id+2
	nearR, farR := t.minRdist(near, q), t.minRdist(far, q)
	if farR < nearR {
		near, far = far, near
		farR = nearR
	}
	t.search(near, self, q, k, h)
	// <= keeps equidistant candidates reachable for the index tie-break.
	if h.Len() < k || farR <= t.points.metric.DistToRdist((*h)[0].dist) {
		t.search(far, self, q, k, h)
	}
}

// knnAll queries every point in parallel. Results are independent of the
// worker count.
func (t *kdTree) knnAll(k, workers int) ([][]int, [][]float64) {
	n := t.points.Len()
	indices := make([][]int, n)
	distances := make([][]float64, n)
	forEachShard(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			indices[i], distances[i] = t.knn(i, k)
		}
	})
	return indices, distances
}

// forEachShard splits [0, n) into contiguous ranges, one per worker, and
// runs fn on each range concurrently. Ranges never overlap, so fn may write
// to per-index output without synchronization.
func forEachShard(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= 1 {
		fn(0, n)
		return
	}
	var g errgroup.Group
	per := (n + workers - 1) / workers
	for start := 0; start < n; start += per {
		start, end := start, min(start+per, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

type neighbor struct {
	index int
	dist  float64
}

// closer orders neighbors by distance, then by lower index.
func (a neighbor) closer(b neighbor) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.index < b.index
}

// neighborHeap is a max-heap of neighbors (farthest on top) used as a
// bounded priority queue for KNN queries.
type neighborHeap []neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return h[j].closer(h[i]) }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
