package genie

import "gonum.org/v1/gonum/stat"

// MergeRule scores the current cluster-size distribution. The scheduler
// takes a corrective smallest-cluster merge whenever the score exceeds the
// configured threshold, and an ordinary minimum-edge merge otherwise.
type MergeRule interface {
	Score(s *SizeState) float64
}

// GenieRule scores by the Gini index alone: the classic Genie algorithm.
type GenieRule struct{}

func (GenieRule) Score(s *SizeState) float64 { return s.Gini() }

// GIcRule blends the Gini index with the normalized variance of cluster
// sizes: Weight*Gini + (1-Weight)*V. V is the population variance of the
// sizes over (mean² · (k-1)), which lies in [0, 1] for k clusters.
// Weight must be in [0, 1].
type GIcRule struct {
	Weight float64
}

func (r GIcRule) Score(s *SizeState) float64 {
	return r.Weight*s.Gini() + (1-r.Weight)*normalizedSizeVariance(s)
}

// normalizedSizeVariance returns the squared coefficient of variation of
// the cluster sizes divided by its upper bound k-1.
func normalizedSizeVariance(s *SizeState) float64 {
	k := s.Clusters()
	if k <= 1 {
		return 0
	}
	sizes := make([]float64, 0, 8)
	weights := make([]float64, 0, 8)
	s.Sizes(func(size, count int) {
		sizes = append(sizes, float64(size))
		weights = append(weights, float64(count))
	})
	mean, variance := stat.PopMeanVariance(sizes, weights)
	return variance / (mean * mean * float64(k-1))
}

func validateMergeRule(r MergeRule) error {
	if gic, ok := r.(GIcRule); ok && (gic.Weight < 0 || gic.Weight > 1) {
		return invalidInputf("GIc weight must be in [0, 1], got %f", gic.Weight)
	}
	return nil
}
