package genie

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Strategy names the MST construction path taken by a run.
type Strategy string

const (
	// StrategyDense runs parallel Prim over every pair of points.
	StrategyDense Strategy = "dense"
	// StrategyGraph runs Prim restricted to a k-nearest-neighbor graph.
	StrategyGraph Strategy = "graph"
)

// maxGraphWidenings bounds how many times a disconnected neighbor graph is
// rebuilt with twice the neighbors before giving up or falling back.
const maxGraphWidenings = 2

// source is the input of a run: exactly one of its fields is set, except
// that a graph built by the pipeline also remembers its vectors.
type source struct {
	points *VectorOracle
	matrix *MatrixOracle
	graph  *NeighborGraph
}

func (s source) len() int {
	switch {
	case s.points != nil:
		return s.points.Len()
	case s.matrix != nil:
		return s.matrix.Len()
	default:
		return s.graph.Len()
	}
}

// base returns the untransformed distance oracle of the input.
func (s source) base() (Oracle, error) {
	switch {
	case s.points != nil:
		return s.points, nil
	case s.matrix != nil:
		return s.matrix, nil
	case s.graph.points != nil:
		return s.graph.points, nil
	default:
		return NewGraphOracle(s.graph, nil, 1.0)
	}
}

// selectStrategy picks the MST construction path for the input.
func selectStrategy(cfg Config, src source) Strategy {
	if src.graph != nil || (src.points != nil && cfg.Neighbors > 0) {
		return StrategyGraph
	}
	return StrategyDense
}

// spanningTree is the outcome of the MST phase.
type spanningTree struct {
	edges  []Edge
	oracle Oracle // the oracle the edges were computed under
	core   []float64
}

// buildSpanningTree computes core distances when mutual reachability is
// enabled and then the MST, widening a disconnected neighbor graph and
// falling back to the dense path as configured.
func buildSpanningTree(src source, cfg Config, log *zap.Logger) (*spanningTree, error) {
	core := coreDistancesFor(src, cfg)

	if selectStrategy(cfg, src) == StrategyGraph {
		tree, err := buildGraphTree(src, cfg, core, log)
		if err == nil || !errors.Is(err, ErrDisconnectedGraph) {
			return tree, err
		}
		if !cfg.ExactFallback || src.points == nil && src.graph.points == nil {
			return nil, err
		}
		log.Warn("neighbor graph stays disconnected, falling back to exact distances", zap.Error(err))
		if src.points == nil {
			src = source{points: src.graph.points}
			// core distances read off a sparse graph are upper bounds;
			// recompute them exactly for the dense oracle.
			core = coreDistancesFor(src, cfg)
		}
	}

	var oracle Oracle
	if src.points != nil {
		oracle = src.points
	} else {
		oracle = src.matrix
	}
	if core != nil {
		mr, err := NewMutualReachability(oracle, core, cfg.Alpha)
		if err != nil {
			return nil, err
		}
		oracle = mr
	}
	edges, err := BuildMST(oracle, cfg.Workers)
	if err != nil {
		return nil, err
	}
	log.Debug("dense MST built", zap.Int("edges", len(edges)), zap.Int("workers", cfg.Workers))
	return &spanningTree{edges: edges, oracle: oracle, core: core}, nil
}

func buildGraphTree(src source, cfg Config, core []float64, log *zap.Logger) (*spanningTree, error) {
	g := src.graph
	k := cfg.Neighbors
	if g == nil {
		g = buildNeighborGraph(src.points, k, cfg.LeafSize, cfg.Workers)
	} else {
		k = 0
		for _, row := range g.Indices {
			k = max(k, len(row))
		}
	}

	n := g.Len()
	for attempt := 0; ; attempt++ {
		oracle, err := NewGraphOracle(g, core, cfg.Alpha)
		if err != nil {
			return nil, err
		}
		edges, err := BuildMST(oracle, cfg.Workers)
		if err == nil {
			log.Debug("graph MST built", zap.Int("edges", len(edges)), zap.Int("neighbors", k))
			return &spanningTree{edges: edges, oracle: oracle, core: core}, nil
		}
		if !errors.Is(err, ErrDisconnectedGraph) || g.points == nil || attempt == maxGraphWidenings || k >= n-1 {
			return nil, err
		}
		k = min(2*max(k, 1), n-1)
		log.Warn("neighbor graph disconnected, widening", zap.Int("neighbors", k), zap.Error(err))
		g = buildNeighborGraph(g.points, k, cfg.LeafSize, cfg.Workers)
	}
}

// coreDistancesFor returns nil unless MinSamples > 1.
func coreDistancesFor(src source, cfg Config) []float64 {
	if cfg.MinSamples <= 1 {
		return nil
	}
	switch {
	case src.graph != nil:
		return coreDistancesGraph(src.graph, cfg.MinSamples)
	case src.points != nil && kdTreeValidMetric(src.points.Metric()):
		return coreDistancesTree(newKDTree(src.points, cfg.LeafSize), cfg.MinSamples, cfg.Workers)
	case src.points != nil:
		return CoreDistances(src.points, cfg.MinSamples, cfg.Workers)
	default:
		return CoreDistances(src.matrix, cfg.MinSamples, cfg.Workers)
	}
}
