package genie

// ReachabilityOracle applies the mutual reachability transform to a base
// oracle: mr(i, j) = max(core[i], core[j], d(i, j)/alpha).
// When alpha == 1.0, the division is skipped.
type ReachabilityOracle struct {
	base  Oracle
	core  []float64
	alpha float64
}

// NewMutualReachability wraps base with the given core distances, one per
// point. alpha must be > 0.
func NewMutualReachability(base Oracle, core []float64, alpha float64) (*ReachabilityOracle, error) {
	if len(core) != base.Len() {
		return nil, invalidInputf("core distances length %d does not match %d points", len(core), base.Len())
	}
	if alpha <= 0 {
		return nil, invalidInputf("alpha must be > 0, got %f", alpha)
	}
	return &ReachabilityOracle{base: base, core: core, alpha: alpha}, nil
}

func (o *ReachabilityOracle) Len() int { return o.base.Len() }

func (o *ReachabilityOracle) Distance(i, j int) float64 {
	if i == j {
		return 0
	}
	d := o.base.Distance(i, j)
	if o.alpha != 1.0 {
		d /= o.alpha
	}
	return max(d, o.core[i], o.core[j])
}

