package genie

import (
	"container/heap"

	"github.com/pkg/errors"
)

// graphEdge is a heap entry for the graph-restricted Prim: the cheapest
// known edge from tree point from to point to.
type graphEdge struct {
	from, to int
	dist     float64
}

func (a graphEdge) less(b graphEdge) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	ua, va := min(a.from, a.to), max(a.from, a.to)
	ub, vb := min(b.from, b.to), max(b.from, b.to)
	if ua != ub {
		return ua < ub
	}
	return va < vb
}

type graphEdgeHeap []graphEdge

func (h graphEdgeHeap) Len() int            { return len(h) }
func (h graphEdgeHeap) Less(i, j int) bool  { return h[i].less(h[j]) }
func (h graphEdgeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *graphEdgeHeap) Push(x interface{}) { *h = append(*h, x.(graphEdge)) }
func (h *graphEdgeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// buildGraphMST runs lazy Jarník–Prim over the adjacency lists of o, in
// O(E log E). Only finite edges are usable; if the heap drains before every
// point is absorbed the graph is disconnected and no edges are returned.
func buildGraphMST(o *GraphOracle) ([]Edge, error) {
	n := o.Len()
	absorbed := make([]bool, n)
	edges := make([]Edge, 0, n-1)
	h := &graphEdgeHeap{}

	absorb := func(p int) {
		absorbed[p] = true
		for _, nb := range o.neighbors(p) {
			if !absorbed[nb.index] && nb.dist < inf {
				heap.Push(h, graphEdge{from: p, to: nb.index, dist: nb.dist})
			}
		}
	}

	absorb(0)
	for len(edges) < n-1 {
		if h.Len() == 0 {
			return nil, errors.Wrapf(ErrDisconnectedGraph, "spanning tree reached %d of %d points", len(edges)+1, n)
		}
		e := heap.Pop(h).(graphEdge)
		if absorbed[e.to] {
			continue
		}
		edges = append(edges, Edge{U: e.from, V: e.to, Weight: e.dist})
		absorb(e.to)
	}

	sortEdges(edges)
	return edges, nil
}

// BuildGraphMST computes a minimum spanning tree of n points using only the
// edges of g, taken in both directions. It returns ErrDisconnectedGraph when
// g does not connect every point.
func BuildGraphMST(g *NeighborGraph) ([]Edge, error) {
	o, err := NewGraphOracle(g, nil, 1.0)
	if err != nil {
		return nil, err
	}
	return BuildMST(o, 1)
}
