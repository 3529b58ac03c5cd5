package genie

import (
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

var inf = math.Inf(1)

// Edge is an undirected MST edge between points U < V.
type Edge struct {
	U      int     `json:"u"`
	V      int     `json:"v"`
	Weight float64 `json:"weight"`
}

// edgeLess is the deterministic edge order: weight ascending, ties broken
// by the lower (U, V) pair.
func edgeLess(a, b Edge) bool {
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if a.U != b.U {
		return a.U < b.U
	}
	return a.V < b.V
}

// sortEdges normalizes every edge to U < V and sorts in place by edgeLess.
func sortEdges(edges []Edge) {
	for i, e := range edges {
		if e.U > e.V {
			edges[i].U, edges[i].V = e.V, e.U
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edgeLess(edges[i], edges[j]) })
}

// minParallelPoints is the size below which BuildMST runs its shards inline;
// the per-round handoff costs more than it saves on small inputs.
const minParallelPoints = 256

// BuildMST computes a minimum spanning tree over all points of o and returns
// its n-1 edges sorted by (weight, U, V).
//
// Dense oracles use parallel Jarník–Prim: each round relaxes every
// unabsorbed point against the newest tree point and reduces the shard
// minima to the next edge. A *GraphOracle is routed to the graph-restricted
// builder, which fails with ErrDisconnectedGraph instead of returning a
// forest.
//
// workers <= 1 runs single-threaded. The result does not depend on the
// worker count.
func BuildMST(o Oracle, workers int) ([]Edge, error) {
	n := o.Len()
	if n < 2 {
		return nil, invalidInputf("need at least 2 points to build an MST, got %d", n)
	}
	if g, ok := o.(*GraphOracle); ok {
		return buildGraphMST(g)
	}

	if n < minParallelPoints {
		workers = 1
	}
	edges := primDense(o, workers)
	sortEdges(edges)
	return edges, nil
}

// primSlot is the best known connection of an unabsorbed point to the tree.
type primSlot struct {
	dist float64
	from int
}

// primCandidate is a shard's cheapest connection after a round.
type primCandidate struct {
	point int
	slot  primSlot
}

func (c primCandidate) better(o primCandidate) bool {
	if c.slot.dist != o.slot.dist {
		return c.slot.dist < o.slot.dist
	}
	return c.point < o.point
}

var noCandidate = primCandidate{point: math.MaxInt, slot: primSlot{dist: inf, from: -1}}

// primShard owns the slots of a contiguous range of points. Only its own
// goroutine touches them, so rounds need no locking.
type primShard struct {
	oracle    Oracle
	slots     []primSlot // indexed by point - offset
	offset    int
	remaining []int
}

func newPrimShard(o Oracle, start, end int) *primShard {
	s := &primShard{
		oracle:    o,
		slots:     make([]primSlot, end-start),
		offset:    start,
		remaining: make([]int, 0, end-start),
	}
	for p := start; p < end; p++ {
		s.slots[p-start] = primSlot{dist: inf, from: -1}
		s.remaining = append(s.remaining, p)
	}
	return s
}

// relax absorbs point p into the tree, updates every remaining slot against
// it and returns the shard's best candidate.
func (s *primShard) relax(p int) primCandidate {
	best := noCandidate
	kept := s.remaining[:0]
	for _, j := range s.remaining {
		if j == p {
			continue
		}
		kept = append(kept, j)

		slot := &s.slots[j-s.offset]
		d := sanitize(s.oracle.Distance(p, j))
		if slot.from < 0 || d < slot.dist || (d == slot.dist && p < slot.from) {
			slot.dist, slot.from = d, p
		}
		if c := (primCandidate{point: j, slot: *slot}); c.better(best) {
			best = c
		}
	}
	s.remaining = kept
	return best
}

// primDense runs Jarník–Prim from point 0. Edges come out in absorption order.
func primDense(o Oracle, workers int) []Edge {
	n := o.Len()
	workers = max(min(workers, n), 1)

	per := (n + workers - 1) / workers
	shards := make([]*primShard, 0, workers)
	for start := 0; start < n; start += per {
		shards = append(shards, newPrimShard(o, start, min(start+per, n)))
	}

	edges := make([]Edge, 0, n-1)
	if len(shards) == 1 {
		p := 0
		for len(edges) < n-1 {
			c := shards[0].relax(p)
			edges = append(edges, Edge{U: c.slot.from, V: c.point, Weight: c.slot.dist})
			p = c.point
		}
		return edges
	}

	// One goroutine per shard. Sending p is the start of a round and
	// receiving every candidate is its barrier.
	in := make([]chan int, len(shards))
	out := make([]chan primCandidate, len(shards))
	var g errgroup.Group
	for w, s := range shards {
		w, s := w, s
		in[w] = make(chan int)
		out[w] = make(chan primCandidate)
		g.Go(func() error {
			for p := range in[w] {
				out[w] <- s.relax(p)
			}
			return nil
		})
	}

	p := 0
	for len(edges) < n-1 {
		for w := range shards {
			in[w] <- p
		}
		best := noCandidate
		for w := range shards {
			if c := <-out[w]; c.better(best) {
				best = c
			}
		}
		edges = append(edges, Edge{U: best.slot.from, V: best.point, Weight: best.slot.dist})
		p = best.point
	}
	for w := range shards {
		close(in[w])
	}
	_ = g.Wait()
	return edges
}

// mstWeight sums the edge weights.
func mstWeight(edges []Edge) float64 {
	var total float64
	for _, e := range edges {
		total += e.Weight
	}
	return total
}

// hasInfiniteEdge reports whether any edge weight is +Inf.
// allZeroEdges reports whether every edge has weight 0, which for a spanning
// tree means every pairwise distance is 0.
func allZeroEdges(edges []Edge) bool {
	for _, e := range edges {
		if e.Weight != 0 {
			return false
		}
	}
	return true
}

func hasInfiniteEdge(edges []Edge) bool {
	for _, e := range edges {
		if math.IsInf(e.Weight, 1) {
			return true
		}
	}
	return false
}
