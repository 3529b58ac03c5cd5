package genie

import "github.com/RoaringBitmap/roaring/v2"

// SizeState tracks the multiset of cluster sizes during a merge run and
// keeps its Gini index up to date in time proportional to the number of
// distinct sizes, which is O(sqrt(n)).
//
// The Gini index is normalized so that it is 0 when all clusters have equal
// size and approaches 1 as one cluster absorbs all points:
//
//	G = sum_{i<j} |c_i - c_j| / ((k-1) * n)
type SizeState struct {
	counts   []int           // counts[s] = clusters of size s
	distinct *roaring.Bitmap // sizes with counts[s] > 0
	absDiff  int64           // sum over cluster pairs of |c_i - c_j|
	clusters int
	points   int
}

// NewSizeState starts with n singleton clusters.
func NewSizeState(n int) *SizeState {
	s := &SizeState{
		counts:   make([]int, n+1),
		distinct: roaring.New(),
		clusters: n,
		points:   n,
	}
	if n > 0 {
		s.counts[1] = n
		s.distinct.Add(1)
	}
	return s
}

// Gini returns the normalized Gini index of the current cluster sizes.
func (s *SizeState) Gini() float64 {
	if s.clusters <= 1 {
		return 0
	}
	return float64(s.absDiff) / (float64(s.clusters-1) * float64(s.points))
}

// Clusters returns the current number of clusters.
func (s *SizeState) Clusters() int { return s.clusters }

// Points returns the total number of points across all clusters.
func (s *SizeState) Points() int { return s.points }

// Smallest returns the size of the smallest cluster.
func (s *SizeState) Smallest() int {
	if s.distinct.IsEmpty() {
		return 0
	}
	return int(s.distinct.Minimum())
}

// Sizes calls fn for every distinct cluster size in ascending order, with
// the number of clusters of that size.
func (s *SizeState) Sizes(fn func(size, count int)) {
	it := s.distinct.Iterator()
	for it.HasNext() {
		size := int(it.Next())
		fn(size, s.counts[size])
	}
}

// Merge replaces one cluster of size a and one of size b by a cluster of
// size a+b.
func (s *SizeState) Merge(a, b int) {
	s.remove(a)
	s.remove(b)
	s.add(a + b)
	s.clusters--
}

// spread returns the sum of |size - c| over all current clusters c.
func (s *SizeState) spread(size int) int64 {
	var total int64
	s.Sizes(func(v, count int) {
		d := v - size
		if d < 0 {
			d = -d
		}
		total += int64(d) * int64(count)
	})
	return total
}

func (s *SizeState) remove(size int) {
	s.absDiff -= s.spread(size)
	s.counts[size]--
	if s.counts[size] == 0 {
		s.distinct.Remove(uint32(size))
	}
}

func (s *SizeState) add(size int) {
	s.absDiff += s.spread(size)
	s.counts[size]++
	s.distinct.Add(uint32(size))
}
