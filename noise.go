package genie

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/stat"
)

// NoiseInput is what a NoiseFilter may inspect: the MST over all points and,
// when mutual reachability is in use, the core distances.
type NoiseInput struct {
	MST  []Edge
	Core []float64
	N    int
}

// NoiseFilter marks points to keep out of the merge process. Marked points
// get no place in the linkage tree and are labeled at the end according to
// the configured NoiseAssignment.
type NoiseFilter interface {
	Noise(in NoiseInput) *roaring.Bitmap
}

// LeafNoise marks the leaves (degree-1 points) of the MST. Under mutual
// reachability these are the points in the sparsest neighborhoods.
type LeafNoise struct{}

func (LeafNoise) Noise(in NoiseInput) *roaring.Bitmap {
	degree := make([]int, in.N)
	for _, e := range in.MST {
		degree[e.U]++
		degree[e.V]++
	}
	noise := roaring.New()
	for p, d := range degree {
		if d == 1 {
			noise.Add(uint32(p))
		}
	}
	return noise
}

// CoreDistanceNoise marks points whose core distance is above the empirical
// Quantile of all core distances. It marks nothing when core distances
// were not computed.
type CoreDistanceNoise struct {
	Quantile float64
}

func (f CoreDistanceNoise) Noise(in NoiseInput) *roaring.Bitmap {
	noise := roaring.New()
	if len(in.Core) == 0 {
		return noise
	}
	sorted := make([]float64, len(in.Core))
	copy(sorted, in.Core)
	sort.Float64s(sorted)
	cutoff := stat.Quantile(f.Quantile, stat.Empirical, sorted, nil)
	for p, c := range in.Core {
		if c > cutoff {
			noise.Add(uint32(p))
		}
	}
	return noise
}

// NoiseAssignment selects how noise points are labeled after clustering.
type NoiseAssignment string

const (
	// NoiseNone leaves every noise point labeled -1.
	NoiseNone NoiseAssignment = "none"
	// NoiseBoundary gives a noise point the label of its nearest inlier
	// when it lies within that inlier's core distance, and -1 otherwise.
	NoiseBoundary NoiseAssignment = "boundary"
	// NoiseAll gives every noise point the label of its nearest inlier.
	NoiseAll NoiseAssignment = "all"
)

// splitInliers returns the points not in noise, ascending.
func splitInliers(n int, noise *roaring.Bitmap) []int {
	inliers := make([]int, 0, n-int(noise.GetCardinality()))
	for p := 0; p < n; p++ {
		if !noise.Contains(uint32(p)) {
			inliers = append(inliers, p)
		}
	}
	return inliers
}

// inlierMST returns an MST over the inliers, renumbered 0..len(inliers)-1.
// Dropping noise-incident edges is enough when what remains still spans the
// inliers (always the case for MST leaves); otherwise the tree is rebuilt
// over the inlier subset.
func inlierMST(o Oracle, edges []Edge, inliers []int, workers int) ([]Edge, error) {
	local := make(map[int]int, len(inliers))
	for i, p := range inliers {
		local[p] = i
	}
	kept := make([]Edge, 0, len(inliers))
	for _, e := range edges {
		u, okU := local[e.U]
		v, okV := local[e.V]
		if okU && okV {
			kept = append(kept, Edge{U: u, V: v, Weight: e.Weight})
		}
	}
	if len(kept) == len(inliers)-1 {
		sortEdges(kept)
		return kept, nil
	}

	if g, ok := o.(*GraphOracle); ok {
		return BuildMST(g.subset(inliers), workers)
	}
	return BuildMST(subsetOracle{base: o, idx: inliers}, workers)
}

// subset restricts the graph to the listed points, renumbered.
func (o *GraphOracle) subset(idx []int) *GraphOracle {
	local := make(map[int]int, len(idx))
	for i, p := range idx {
		local[p] = i
	}
	adj := make([][]neighbor, len(idx))
	for i, p := range idx {
		for _, nb := range o.adj[p] {
			if j, ok := local[nb.index]; ok {
				adj[i] = append(adj[i], neighbor{index: j, dist: nb.dist})
			}
		}
	}
	return &GraphOracle{graph: o.graph, adj: adj}
}

// assignNoise labels noise points in place. labels holds the inlier labels
// and -1 for every noise point. The nearest inlier is found under o; ties
// go to the lower point index.
func assignNoise(labels []int, noise *roaring.Bitmap, inliers []int, o Oracle, core []float64, mode NoiseAssignment) {
	if mode == NoiseNone {
		return
	}
	it := noise.Iterator()
	for it.HasNext() {
		p := int(it.Next())
		nearest, best := -1, inf
		for _, q := range inliers {
			if d := sanitize(o.Distance(p, q)); d < best {
				nearest, best = q, d
			}
		}
		if nearest < 0 {
			continue
		}
		switch mode {
		case NoiseAll:
			labels[p] = labels[nearest]
		case NoiseBoundary:
			if core != nil && best <= core[nearest] {
				labels[p] = labels[nearest]
			}
		}
	}
}
