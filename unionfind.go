package genie

// UnionFind implements a disjoint-set forest over points 0..n-1 with path
// compression and union by size. Sets only ever grow.
type UnionFind struct {
	parent []int
	size   []int
	count  int
}

// NewUnionFind creates a UnionFind with every point in its own set.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	size := make([]int, n)
	for i := range parent {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{parent: parent, size: size, count: n}
}

// Find returns the root of the set containing x, with path compression.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[x] != root {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// Union merges the sets containing x and y by attaching the smaller tree
// under the larger; on equal sizes the lower root wins. Returns the new root.
func (uf *UnionFind) Union(x, y int) int {
	rootX := uf.Find(x)
	rootY := uf.Find(y)
	if rootX == rootY {
		return rootX
	}
	if uf.size[rootX] < uf.size[rootY] || (uf.size[rootX] == uf.size[rootY] && rootY < rootX) {
		rootX, rootY = rootY, rootX
	}
	uf.parent[rootY] = rootX
	uf.size[rootX] += uf.size[rootY]
	uf.count--
	return rootX
}

// Size returns the number of points in the set containing x.
func (uf *UnionFind) Size(x int) int { return uf.size[uf.Find(x)] }

// Count returns the number of disjoint sets.
func (uf *UnionFind) Count() int { return uf.count }
