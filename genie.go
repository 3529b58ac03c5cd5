package genie

import (
	"math"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"go.uber.org/zap"
)

// defaultLeafSize is the KD-tree leaf capacity used when none is configured.
const defaultLeafSize = 40

// Config controls a Genie clustering run.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// NClusters is the number of clusters to cut the linkage tree into.
	// Must be in [1, n]. Default: 2.
	NClusters int

	// GiniThreshold bounds the inequality of cluster sizes. Whenever the
	// merge rule scores above it, the smallest cluster is merged next.
	// 1.0 gives single linkage; 0.0 forces a merge of the smallest cluster
	// at every step. Must be in [0, 1]. Default: 0.3.
	GiniThreshold float64

	// MergeRule scores the cluster-size distribution against GiniThreshold.
	// Built-in: GenieRule (the Gini index) and GIcRule (Gini blended with
	// the normalized size variance). Default: GenieRule.
	MergeRule MergeRule

	// Metric is the distance function over feature vectors. Ignored by
	// ClusterPrecomputed and ClusterGraph. Default: EuclideanMetric.
	Metric DistanceMetric

	// MinSamples selects the distance the tree is built on. 1 uses the plain
	// metric; k > 1 uses mutual reachability with the distance to the k-th
	// nearest neighbor as core distance. Must be >= 0. Default: 1.
	MinSamples int

	// Alpha scales distances before mutual reachability is applied. Only
	// used when MinSamples > 1. Must be > 0. Default: 1.0.
	Alpha float64

	// Neighbors, when > 0, builds the MST over a k-nearest-neighbor graph of
	// that many neighbors instead of all pairs. A disconnected graph is
	// rebuilt with twice the neighbors, at most twice. Default: 0 (dense).
	Neighbors int

	// ExactFallback switches to the dense MST over exact distances when the
	// neighbor graph stays disconnected. Without it Cluster returns
	// ErrDisconnectedGraph. Default: false.
	ExactFallback bool

	// Noise marks points to exclude from merging, such as LeafNoise or
	// CoreDistanceNoise. nil keeps every point. Default: nil.
	Noise NoiseFilter

	// NoiseAssignment decides the final label of excluded points: "none",
	// "boundary" or "all". Default: "boundary".
	NoiseAssignment NoiseAssignment

	// LeafSize is the KD-tree leaf capacity for neighbor queries.
	// Must be >= 1. Default: 40.
	LeafSize int

	// Workers is the number of goroutines for the MST and neighbor queries.
	// 0 means runtime.NumCPU(). Results do not depend on it.
	Workers int

	// Logger receives phase logs. Default: zap.NewNop().
	Logger *zap.Logger
}

// Result contains the output of a Genie clustering run.
type Result struct {
	// Labels assigns each point a cluster in [0, NClusters), or -1 for a
	// noise point left unassigned.
	Labels []int

	// Linkage is the merge history of the inliers. Its point ids index
	// Inliers, not the input.
	Linkage *LinkageTree

	// Inliers maps linkage point ids to input points, ascending.
	Inliers []int

	// Noise lists the points excluded by the noise filter, ascending.
	Noise []int

	// MST is the spanning tree over all input points, sorted by
	// (weight, U, V).
	MST []Edge

	// CoreDistances holds the core distance of every point when MinSamples
	// is above 1, and is nil otherwise.
	CoreDistances []float64
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		NClusters:       2,
		GiniThreshold:   0.3,
		MergeRule:       GenieRule{},
		Metric:          EuclideanMetric{},
		MinSamples:      1,
		Alpha:           1.0,
		NoiseAssignment: NoiseBoundary,
		LeafSize:        defaultLeafSize,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
// GiniThreshold is left alone: zero is a meaningful threshold.
func applyDefaults(cfg *Config) {
	if cfg.NClusters == 0 {
		cfg.NClusters = 2
	}
	if cfg.MergeRule == nil {
		cfg.MergeRule = GenieRule{}
	}
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.MinSamples == 0 {
		cfg.MinSamples = 1
	}
	if cfg.NoiseAssignment == "" {
		cfg.NoiseAssignment = NoiseBoundary
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = defaultLeafSize
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.NClusters < 1 {
		return invalidInputf("NClusters must be >= 1, got %d", cfg.NClusters)
	}
	if math.IsNaN(cfg.GiniThreshold) || cfg.GiniThreshold < 0 || cfg.GiniThreshold > 1 {
		return invalidInputf("GiniThreshold must be in [0, 1], got %f", cfg.GiniThreshold)
	}
	if err := validateMergeRule(cfg.MergeRule); err != nil {
		return err
	}
	if cfg.MinSamples < 0 {
		return invalidInputf("MinSamples must be >= 0, got %d", cfg.MinSamples)
	}
	if cfg.Alpha <= 0 {
		return invalidInputf("Alpha must be > 0, got %f", cfg.Alpha)
	}
	if cfg.Neighbors < 0 {
		return invalidInputf("Neighbors must be >= 0, got %d", cfg.Neighbors)
	}
	if f, ok := cfg.Noise.(CoreDistanceNoise); ok && (f.Quantile < 0 || f.Quantile > 1) {
		return invalidInputf("CoreDistanceNoise quantile must be in [0, 1], got %f", f.Quantile)
	}
	switch cfg.NoiseAssignment {
	case NoiseNone, NoiseBoundary, NoiseAll:
	default:
		return invalidInputf("NoiseAssignment must be \"none\", \"boundary\" or \"all\", got %q", cfg.NoiseAssignment)
	}
	if cfg.LeafSize < 1 {
		return invalidInputf("LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	if cfg.Workers < 0 {
		return invalidInputf("Workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

// Cluster runs Genie on the given data. Each element is a point; all
// points must have the same dimensionality.
func Cluster(data [][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	points, err := NewVectorOracle(data, cfg.Metric)
	if err != nil {
		return nil, err
	}
	return run(source{points: points}, cfg)
}

// ClusterPrecomputed runs Genie on a precomputed distance matrix: a flat
// row-major []float64 of length n*n. Config.Metric and Config.Neighbors
// are ignored.
func ClusterPrecomputed(dist []float64, n int, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	matrix, err := NewMatrixOracle(dist, n)
	if err != nil {
		return nil, err
	}
	return run(source{matrix: matrix}, cfg)
}

// ClusterGraph runs Genie on a neighbor graph, such as the output of an
// approximate nearest-neighbor index. The MST uses only the graph's edges,
// so a graph that does not connect every point fails with
// ErrDisconnectedGraph.
func ClusterGraph(g *NeighborGraph, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, invalidInputf("neighbor graph is nil")
	}
	return run(source{graph: g}, cfg)
}

func run(src source, cfg Config) (*Result, error) {
	log := cfg.Logger
	n := src.len()
	if n < 2 {
		return nil, invalidInputf("need at least 2 points, got %d", n)
	}
	if cfg.NClusters > n {
		return nil, invalidInputf("cannot cut %d points into %d clusters", n, cfg.NClusters)
	}

	tree, err := buildSpanningTree(src, cfg, log)
	if err != nil {
		return nil, err
	}
	if allZeroEdges(tree.edges) {
		return nil, invalidInputf("need at least 2 distinct points, all %d coincide", n)
	}
	if hasInfiniteEdge(tree.edges) {
		log.Warn("spanning tree holds infinite edges; some points are unreachable")
	}

	noise := roaring.New()
	if cfg.Noise != nil {
		if marked := cfg.Noise.Noise(NoiseInput{MST: tree.edges, Core: tree.core, N: n}); marked != nil {
			noise = marked
		}
	}
	inliers := splitInliers(n, noise)
	if len(inliers) < max(2, cfg.NClusters) {
		log.Warn("noise filter leaves too few points, keeping all",
			zap.Int("inliers", len(inliers)), zap.Int("clusters", cfg.NClusters))
		noise.Clear()
		inliers = splitInliers(n, noise)
	}

	edges := tree.edges
	if len(inliers) < n {
		edges, err = inlierMST(tree.oracle, tree.edges, inliers, cfg.Workers)
		if err != nil {
			return nil, err
		}
	}

	linkage, err := GenieLinkage(edges, len(inliers), cfg.GiniThreshold, cfg.MergeRule)
	if err != nil {
		return nil, err
	}
	cut, err := linkage.Cut(cfg.NClusters)
	if err != nil {
		return nil, err
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for i, p := range inliers {
		labels[p] = cut[i]
	}
	if !noise.IsEmpty() {
		base, err := src.base()
		if err != nil {
			return nil, err
		}
		assignNoise(labels, noise, inliers, base, tree.core, cfg.NoiseAssignment)
	}

	forced := 0
	for _, m := range linkage.Merges {
		if m.Forced {
			forced++
		}
	}
	log.Debug("genie linkage done",
		zap.Int("points", n),
		zap.Int("noise", int(noise.GetCardinality())),
		zap.Int("forced_merges", forced),
		zap.Float64("mst_weight", mstWeight(tree.edges)),
	)

	return &Result{
		Labels:        labels,
		Linkage:       linkage,
		Inliers:       inliers,
		Noise:         bitmapInts(noise),
		MST:           tree.edges,
		CoreDistances: tree.core,
	}, nil
}

func bitmapInts(b *roaring.Bitmap) []int {
	out := make([]int, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
