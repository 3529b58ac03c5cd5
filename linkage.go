package genie

// Merge is one row of a linkage tree: clusters Left and Right joined at
// Height into a cluster of Size points. Ids below NPoints are points; id
// NPoints+i is the cluster created by the i-th merge.
type Merge struct {
	Left   int     `json:"left"`
	Right  int     `json:"right"`
	Height float64 `json:"height"`
	Size   int     `json:"size"`
	// Forced marks a corrective smallest-cluster merge. It is not part of
	// the exchanged row format.
	Forced bool `json:"forced,omitempty"`
}

// LinkageTree is the full merge history of NPoints singletons into one
// cluster: exactly NPoints-1 merges, in the order they happened.
type LinkageTree struct {
	NPoints int     `json:"n_points"`
	Merges  []Merge `json:"merges"`
}

// Rows returns the tree in the scipy linkage format used by dendrogram
// tools: each row is [left, right, height, size].
func (t *LinkageTree) Rows() [][4]float64 {
	rows := make([][4]float64, len(t.Merges))
	for i, m := range t.Merges {
		rows[i] = [4]float64{float64(m.Left), float64(m.Right), m.Height, float64(m.Size)}
	}
	return rows
}

// FromRows rebuilds a linkage tree from scipy-format rows and validates it.
func FromRows(rows [][4]float64, n int) (*LinkageTree, error) {
	t := &LinkageTree{NPoints: n, Merges: make([]Merge, len(rows))}
	for i, r := range rows {
		t.Merges[i] = Merge{Left: int(r[0]), Right: int(r[1]), Height: r[2], Size: int(r[3])}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Heights returns the merge heights in merge order.
func (t *LinkageTree) Heights() []float64 {
	h := make([]float64, len(t.Merges))
	for i, m := range t.Merges {
		h[i] = m.Height
	}
	return h
}

// Validate checks that the tree is a well-formed binary merge history:
// n-1 merges, each joining two distinct live nodes created earlier, with
// sizes that add up.
func (t *LinkageTree) Validate() error {
	n := t.NPoints
	if n < 2 {
		return invalidInputf("linkage tree needs at least 2 points, got %d", n)
	}
	if len(t.Merges) != n-1 {
		return inconsistentf("linkage tree has %d merges for %d points, expected %d", len(t.Merges), n, n-1)
	}
	size := make([]int, 2*n-1)
	used := make([]bool, 2*n-1)
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	for i, m := range t.Merges {
		for _, c := range [2]int{m.Left, m.Right} {
			if c < 0 || c >= n+i {
				return inconsistentf("merge %d references node %d, not yet created", i, c)
			}
			if used[c] {
				return inconsistentf("merge %d reuses node %d", i, c)
			}
			used[c] = true
		}
		if m.Left == m.Right {
			return inconsistentf("merge %d joins node %d with itself", i, m.Left)
		}
		size[n+i] = size[m.Left] + size[m.Right]
		if m.Size != size[n+i] {
			return inconsistentf("merge %d has size %d, children add up to %d", i, m.Size, size[n+i])
		}
	}
	return nil
}

// Cut returns the partition into k clusters obtained by applying the first
// n-k merges. Labels are 0..k-1, numbered by first appearance among points
// 0..n-1.
func (t *LinkageTree) Cut(k int) ([]int, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	n := t.NPoints
	if k < 1 || k > n {
		return nil, invalidInputf("cannot cut %d points into %d clusters", n, k)
	}

	uf := NewUnionFind(n)
	// rep[node] is any point inside the cluster of that node.
	rep := make([]int, 0, 2*n-1)
	for p := 0; p < n; p++ {
		rep = append(rep, p)
	}
	for _, m := range t.Merges[:n-k] {
		rep = append(rep, uf.Union(rep[m.Left], rep[m.Right]))
	}
	return componentLabels(uf, n), nil
}

// CutAll returns every partition of the tree in one replay: result[k-1] is
// the partition into k clusters, for k = 1..n.
func (t *LinkageTree) CutAll() ([][]int, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	n := t.NPoints
	all := make([][]int, n)
	uf := NewUnionFind(n)
	rep := make([]int, 0, 2*n-1)
	for p := 0; p < n; p++ {
		rep = append(rep, p)
	}
	all[n-1] = componentLabels(uf, n)
	for i, m := range t.Merges {
		rep = append(rep, uf.Union(rep[m.Left], rep[m.Right]))
		all[n-2-i] = componentLabels(uf, n)
	}
	return all, nil
}

func componentLabels(uf *UnionFind, n int) []int {
	labels := make([]int, n)
	byRoot := make(map[int]int, uf.Count())
	for p := 0; p < n; p++ {
		root := uf.Find(p)
		label, ok := byRoot[root]
		if !ok {
			label = len(byRoot)
			byRoot[root] = label
		}
		labels[p] = label
	}
	return labels
}
