package genie

import "sort"

// NeighborGraph is a k-nearest-neighbor graph: Indices[i] lists the
// neighbors of point i and Distances[i] the matching distances, ascending.
// It is typically the output of an (approximate) nearest-neighbor index.
type NeighborGraph struct {
	Indices   [][]int
	Distances [][]float64

	// points holds the vectors the graph was built from, when known. It lets
	// the pipeline widen the graph or fall back to the exact oracle.
	points *VectorOracle
}

// NewNeighborGraph validates and normalizes caller-supplied neighbor lists:
// self loops are dropped and each list is sorted by (distance, index).
func NewNeighborGraph(indices [][]int, distances [][]float64) (*NeighborGraph, error) {
	if len(indices) != len(distances) {
		return nil, invalidInputf("neighbor graph has %d index rows but %d distance rows", len(indices), len(distances))
	}
	n := len(indices)
	g := &NeighborGraph{
		Indices:   make([][]int, n),
		Distances: make([][]float64, n),
	}
	for i := range indices {
		if len(indices[i]) != len(distances[i]) {
			return nil, invalidInputf("neighbor row %d has %d indices but %d distances", i, len(indices[i]), len(distances[i]))
		}
		row := make([]neighbor, 0, len(indices[i]))
		for m, j := range indices[i] {
			if j < 0 || j >= n {
				return nil, invalidInputf("neighbor row %d references point %d, outside [0, %d)", i, j, n)
			}
			if d := distances[i][m]; d < 0 {
				return nil, invalidInputf("neighbor row %d has negative distance %f", i, d)
			}
			if j != i {
				row = append(row, neighbor{index: j, dist: sanitize(distances[i][m])})
			}
		}
		g.setRow(i, row)
	}
	return g, nil
}

func (g *NeighborGraph) setRow(i int, row []neighbor) {
	sort.Slice(row, func(a, b int) bool { return row[a].closer(row[b]) })
	g.Indices[i] = make([]int, len(row))
	g.Distances[i] = make([]float64, len(row))
	for m, nb := range row {
		g.Indices[i][m] = nb.index
		g.Distances[i][m] = nb.dist
	}
}

// Len returns the number of points in the graph.
func (g *NeighborGraph) Len() int { return len(g.Indices) }

// BuildNeighborGraph computes the exact k-nearest-neighbor graph of data.
// Axis-decomposable metrics use a KD-tree; other metrics scan all pairs.
func BuildNeighborGraph(data [][]float64, metric DistanceMetric, k, workers int) (*NeighborGraph, error) {
	points, err := NewVectorOracle(data, metric)
	if err != nil {
		return nil, err
	}
	return buildNeighborGraph(points, k, defaultLeafSize, workers), nil
}

func buildNeighborGraph(points *VectorOracle, k, leafSize, workers int) *NeighborGraph {
	n := points.Len()
	k = max(min(k, n-1), 0)
	g := &NeighborGraph{points: points}
	if kdTreeValidMetric(points.Metric()) {
		g.Indices, g.Distances = newKDTree(points, leafSize).knnAll(k, workers)
		return g
	}
	g.Indices = make([][]int, n)
	g.Distances = make([][]float64, n)
	forEachShard(n, workers, func(start, end int) {
		row := make([]neighbor, 0, n-1)
		for i := start; i < end; i++ {
			row = row[:0]
			for j := 0; j < n; j++ {
				if j != i {
					row = append(row, neighbor{index: j, dist: sanitize(points.Distance(i, j))})
				}
			}
			sort.Slice(row, func(a, b int) bool { return row[a].closer(row[b]) })
			g.setRow(i, row[:k])
		}
	})
	return g
}

// GraphOracle restricts distances to the edges of a neighbor graph, taken
// in both directions. Non-adjacent pairs are at +Inf. Edge weights are
// optionally passed through the mutual reachability transform.
type GraphOracle struct {
	graph *NeighborGraph
	adj   [][]neighbor // symmetric, sorted by (dist, index)
}

// NewGraphOracle symmetrizes g. When core is non-nil, every edge weight
// becomes max(d/alpha, core[i], core[j]).
func NewGraphOracle(g *NeighborGraph, core []float64, alpha float64) (*GraphOracle, error) {
	n := g.Len()
	if core != nil && len(core) != n {
		return nil, invalidInputf("core distances length %d does not match %d points", len(core), n)
	}
	if alpha <= 0 {
		return nil, invalidInputf("alpha must be > 0, got %f", alpha)
	}

	weight := func(i, j int, d float64) float64 {
		if core == nil {
			return d
		}
		if alpha != 1.0 {
			d /= alpha
		}
		return max(d, core[i], core[j])
	}

	// Keep the smaller weight when both directions list the pair.
	best := make([]map[int]float64, n)
	for i := range best {
		best[i] = make(map[int]float64, len(g.Indices[i]))
	}
	add := func(i, j int, w float64) {
		if old, ok := best[i][j]; !ok || w < old {
			best[i][j] = w
		}
	}
	for i, row := range g.Indices {
		for m, j := range row {
			w := weight(i, j, g.Distances[i][m])
			add(i, j, w)
			add(j, i, w)
		}
	}

	adj := make([][]neighbor, n)
	for i, m := range best {
		row := make([]neighbor, 0, len(m))
		for j, w := range m {
			row = append(row, neighbor{index: j, dist: w})
		}
		sort.Slice(row, func(a, b int) bool { return row[a].closer(row[b]) })
		adj[i] = row
	}
	return &GraphOracle{graph: g, adj: adj}, nil
}

func (o *GraphOracle) Len() int { return len(o.adj) }

func (o *GraphOracle) Distance(i, j int) float64 {
	if i == j {
		return 0
	}
	for _, nb := range o.adj[i] {
		if nb.index == j {
			return nb.dist
		}
	}
	return inf
}

// neighbors returns the adjacency list of point i, sorted by (distance, index).
func (o *GraphOracle) neighbors(i int) []neighbor { return o.adj[i] }
