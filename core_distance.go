package genie

import "sort"

// CoreDistances computes, for every point, the distance to its k-th nearest
// neighbor (the point itself excluded) by brute force over the oracle.
// k is clamped to [0, n-1]; k == 0 yields all zeros, which makes mutual
// reachability equal to the base distance. Rows are sharded across workers.
func CoreDistances(o Oracle, k, workers int) []float64 {
	n := o.Len()
	k = max(min(k, n-1), 0)

	core := make([]float64, n)
	if k == 0 {
		return core
	}

	forEachShard(n, workers, func(start, end int) {
		row := make([]float64, n-1)
		for i := start; i < end; i++ {
			m := 0
			for j := 0; j < n; j++ {
				if j != i {
					row[m] = sanitize(o.Distance(i, j))
					m++
				}
			}
			sort.Float64s(row)
			core[i] = row[k-1]
		}
	})
	return core
}

// coreDistancesTree computes the same values as CoreDistances using KD-tree
// queries instead of a full scan per point.
func coreDistancesTree(t *kdTree, k, workers int) []float64 {
	n := t.points.Len()
	k = max(min(k, n-1), 0)

	core := make([]float64, n)
	if k == 0 {
		return core
	}
	_, distances := t.knnAll(k, workers)
	for i, d := range distances {
		core[i] = d[len(d)-1]
	}
	return core
}

// coreDistancesGraph reads core distances off a neighbor graph's sorted
// lists. Points with fewer than k neighbors use their farthest one; points
// with none get +Inf.
func coreDistancesGraph(g *NeighborGraph, k int) []float64 {
	core := make([]float64, g.Len())
	if k <= 0 {
		return core
	}
	for i := range core {
		d := g.Distances[i]
		switch {
		case len(d) == 0:
			core[i] = inf
		case len(d) < k:
			core[i] = d[len(d)-1]
		default:
			core[i] = d[k-1]
		}
	}
	return core
}
