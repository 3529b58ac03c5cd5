package genie

import (
	"container/heap"
	"math"
)

// GenieLinkage runs the Gini-constrained merge scheduler over the MST edges
// of n points and returns the full linkage tree.
//
// At every step the rule scores the current cluster sizes. If the score is
// at most threshold, the globally shortest unconsumed MST edge is merged.
// Otherwise the smallest cluster (ties: lowest contained point) is merged
// along its shortest incident edge, regardless of that edge's global rank.
// A nil rule means GenieRule, for which threshold = 1 gives single linkage.
//
// edges may be in any order; they are sorted by (weight, U, V) first.
// Merge heights follow the order merges happen in and are not guaranteed to
// be monotone.
func GenieLinkage(edges []Edge, n int, threshold float64, rule MergeRule) (*LinkageTree, error) {
	if n < 2 {
		return nil, invalidInputf("need at least 2 points, got %d", n)
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, invalidInputf("gini threshold must be in [0, 1], got %f", threshold)
	}
	if rule == nil {
		rule = GenieRule{}
	}
	if err := validateMergeRule(rule); err != nil {
		return nil, err
	}
	if len(edges) != n-1 {
		return nil, inconsistentf("got %d MST edges for %d points, expected %d", len(edges), n, n-1)
	}

	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	for _, e := range sorted {
		if e.U < 0 || e.U >= n || e.V < 0 || e.V >= n || e.U == e.V {
			return nil, inconsistentf("MST edge (%d, %d) is invalid for %d points", e.U, e.V, n)
		}
		if math.IsNaN(e.Weight) {
			return nil, inconsistentf("MST edge (%d, %d) has NaN weight", e.U, e.V)
		}
	}
	sortEdges(sorted)

	return newScheduler(sorted, n, rule).run(threshold)
}

// schedCluster is the per-root state of a cluster in the scheduler.
type schedCluster struct {
	node     int // linkage node id: a point below n, a merge at or above n
	minPoint int
	incident *edgeIndexHeap // incident edges, possibly already consumed
}

type scheduler struct {
	edges    []Edge
	n        int
	rule     MergeRule
	uf       *UnionFind
	sizes    *SizeState
	clusters []schedCluster // indexed by union-find root
	consumed []bool
	cursor   int          // MST cursor into edges
	smallest clusterQueue // smallest-cluster cursor
}

func newScheduler(edges []Edge, n int, rule MergeRule) *scheduler {
	s := &scheduler{
		edges:    edges,
		n:        n,
		rule:     rule,
		uf:       NewUnionFind(n),
		sizes:    NewSizeState(n),
		clusters: make([]schedCluster, n),
		consumed: make([]bool, len(edges)),
		smallest: make(clusterQueue, 0, 2*n),
	}
	for p := range s.clusters {
		s.clusters[p] = schedCluster{node: p, minPoint: p, incident: &edgeIndexHeap{}}
		s.smallest = append(s.smallest, clusterEntry{size: 1, minPoint: p, root: p})
	}
	heap.Init(&s.smallest)
	// edges are sorted, so appending keeps each incident list a valid heap
	for i, e := range edges {
		*s.clusters[e.U].incident = append(*s.clusters[e.U].incident, i)
		*s.clusters[e.V].incident = append(*s.clusters[e.V].incident, i)
	}
	return s
}

func (s *scheduler) run(threshold float64) (*LinkageTree, error) {
	tree := &LinkageTree{NPoints: s.n, Merges: make([]Merge, 0, s.n-1)}
	for step := 0; step < s.n-1; step++ {
		ei, forced := s.next(threshold)
		m, err := s.merge(ei, forced, step)
		if err != nil {
			return nil, err
		}
		tree.Merges = append(tree.Merges, m)
	}
	return tree, nil
}

// next picks the edge for the coming merge and reports whether it is a
// corrective move.
func (s *scheduler) next(threshold float64) (int, bool) {
	if s.rule.Score(s.sizes) > threshold {
		if ei, ok := s.corrective(); ok {
			return ei, true
		}
	}
	for s.consumed[s.cursor] {
		s.cursor++
	}
	return s.cursor, false
}

// corrective returns the shortest edge incident to the smallest cluster.
// Among equally short edges it prefers the smallest neighboring cluster,
// then the lowest edge index.
func (s *scheduler) corrective() (int, bool) {
	root := s.smallestCluster()
	h := s.clusters[root].incident

	var ties []int
	for h.Len() > 0 {
		top := (*h)[0]
		if s.consumed[top] {
			heap.Pop(h)
			continue
		}
		if len(ties) > 0 && s.edges[top].Weight != s.edges[ties[0]].Weight {
			break
		}
		ties = append(ties, heap.Pop(h).(int))
	}
	if len(ties) == 0 {
		return -1, false
	}

	best := ties[0]
	for _, ei := range ties[1:] {
		if s.farSize(root, ei) < s.farSize(root, best) {
			best = ei
		}
	}
	for _, ei := range ties {
		if ei != best {
			heap.Push(h, ei)
		}
	}
	return best, true
}

// farSize returns the size of the cluster at the other end of edge ei.
func (s *scheduler) farSize(root, ei int) int {
	e := s.edges[ei]
	if s.uf.Find(e.U) == root {
		return s.uf.Size(e.V)
	}
	return s.uf.Size(e.U)
}

func (s *scheduler) smallestCluster() int {
	for {
		top := s.smallest[0]
		if s.uf.parent[top.root] == top.root && s.uf.size[top.root] == top.size {
			return top.root
		}
		heap.Pop(&s.smallest)
	}
}

func (s *scheduler) merge(ei int, forced bool, step int) (Merge, error) {
	e := s.edges[ei]
	s.consumed[ei] = true

	ru, rv := s.uf.Find(e.U), s.uf.Find(e.V)
	if ru == rv {
		return Merge{}, inconsistentf("MST edge (%d, %d) closes a cycle", e.U, e.V)
	}
	cu, cv := s.clusters[ru], s.clusters[rv]
	su, sv := s.uf.size[ru], s.uf.size[rv]

	m := Merge{
		Left:   min(cu.node, cv.node),
		Right:  max(cu.node, cv.node),
		Height: e.Weight,
		Size:   su + sv,
		Forced: forced,
	}

	root := s.uf.Union(ru, rv)
	small, big := cu.incident, cv.incident
	if small.Len() > big.Len() {
		small, big = big, small
	}
	for _, x := range *small {
		if !s.consumed[x] {
			heap.Push(big, x)
		}
	}
	s.clusters[ru].incident, s.clusters[rv].incident = nil, nil
	s.clusters[root] = schedCluster{
		node:     s.n + step,
		minPoint: min(cu.minPoint, cv.minPoint),
		incident: big,
	}

	s.sizes.Merge(su, sv)
	heap.Push(&s.smallest, clusterEntry{size: su + sv, minPoint: s.clusters[root].minPoint, root: root})
	return m, nil
}

// edgeIndexHeap is a min-heap of edge indices. Indices follow the sorted
// edge order, so the top is the shortest edge.
type edgeIndexHeap []int

func (h edgeIndexHeap) Len() int            { return len(h) }
func (h edgeIndexHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h edgeIndexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *edgeIndexHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *edgeIndexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// clusterEntry is a possibly stale snapshot of a cluster in clusterQueue.
type clusterEntry struct {
	size, minPoint, root int
}

// clusterQueue orders clusters by (size, minPoint). Entries go stale when
// their root is merged away or grows; smallestCluster discards them lazily.
type clusterQueue []clusterEntry

func (q clusterQueue) Len() int { return len(q) }
func (q clusterQueue) Less(i, j int) bool {
	if q[i].size != q[j].size {
		return q[i].size < q[j].size
	}
	return q[i].minPoint < q[j].minPoint
}
func (q clusterQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *clusterQueue) Push(x interface{}) { *q = append(*q, x.(clusterEntry)) }
func (q *clusterQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
