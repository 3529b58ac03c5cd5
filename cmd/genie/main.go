// Command genie clusters the rows of a CSV file with the Genie algorithm and
// writes the labels and the linkage tree as JSON.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/TrevorS/genie"
)

type args struct {
	Input       string  `arg:"positional,required" help:"CSV file with one point per row (- for stdin)"`
	K           int     `arg:"-k" help:"number of clusters"`
	Gini        float64 `arg:"-g" help:"Gini index threshold in [0, 1]"`
	GIc         float64 `arg:"--gic" help:"use the GIc rule with this Gini weight in [0, 1] (negative: plain Genie)"`
	Metric      string  `arg:"-m" help:"euclidean|manhattan|cosine|chebyshev"`
	MinSamples  int     `arg:"--min-samples" help:"mutual reachability smoothing (1 = plain distances)"`
	Neighbors   int     `arg:"--neighbors" help:"build the tree on a k-nearest-neighbor graph (0 = all pairs)"`
	Fallback    bool    `arg:"--fallback" help:"fall back to exact distances when the neighbor graph is disconnected"`
	Noise       string  `arg:"--noise" help:"none|leaves|core"`
	Quantile    float64 `arg:"--quantile" help:"core distance quantile above which points are noise"`
	Postprocess string  `arg:"--postprocess" help:"none|boundary|all"`
	Header      bool    `arg:"--header" help:"skip the first CSV row"`
	Workers     int     `arg:"-w" help:"worker goroutines (0 = all CPUs)"`
	Output      string  `arg:"-o" help:"output file (default stdout)"`
	Verbose     bool    `arg:"-v" help:"development logging"`
}

func (args) Description() string {
	return "Genie: Gini-constrained hierarchical clustering"
}

// output is the JSON document written by the command.
type output struct {
	Labels  []int        `json:"labels"`
	Noise   []int        `json:"noise"`
	Inliers []int        `json:"inliers"`
	Linkage [][4]float64 `json:"linkage"`
	Forced  []bool       `json:"forced"`
}

func defaultArgs() args {
	return args{
		K:           2,
		Gini:        0.3,
		GIc:         -1,
		Metric:      "euclidean",
		MinSamples:  1,
		Noise:       "none",
		Quantile:    0.9,
		Postprocess: string(genie.NoiseBoundary),
	}
}

func main() {
	a := defaultArgs()
	arg.MustParse(&a)
	os.Exit(realMain(a))
}

// realMain returns the exit code so deferred cleanup runs before exiting.
func realMain(a args) int {
	log, err := newLogger(a.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer log.Sync()

	if err := run(a, log); err != nil {
		log.Error("genie failed", zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(a args, log *zap.Logger) error {
	cfg, err := configFromArgs(a)
	if err != nil {
		return err
	}
	cfg.Logger = log

	in, err := openInput(a.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := readPoints(in, a.Header)
	if err != nil {
		return errors.Wrapf(err, "reading %s", a.Input)
	}
	log.Info("points loaded", zap.Int("points", len(data)), zap.String("input", a.Input))

	res, err := genie.Cluster(data, cfg)
	if err != nil {
		return err
	}

	out := os.Stdout
	if a.Output != "" {
		f, err := os.Create(a.Output)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer f.Close()
		out = f
	}
	return writeResult(out, res)
}

func configFromArgs(a args) (genie.Config, error) {
	cfg := genie.DefaultConfig()
	cfg.NClusters = a.K
	cfg.GiniThreshold = a.Gini
	cfg.MinSamples = a.MinSamples
	cfg.Neighbors = a.Neighbors
	cfg.ExactFallback = a.Fallback
	cfg.Workers = a.Workers
	cfg.NoiseAssignment = genie.NoiseAssignment(a.Postprocess)
	if a.GIc >= 0 {
		cfg.MergeRule = genie.GIcRule{Weight: a.GIc}
	}

	switch strings.ToLower(a.Metric) {
	case "euclidean", "l2":
		cfg.Metric = genie.EuclideanMetric{}
	case "manhattan", "l1", "cityblock":
		cfg.Metric = genie.ManhattanMetric{}
	case "cosine":
		cfg.Metric = genie.CosineMetric{}
	case "chebyshev", "max":
		cfg.Metric = genie.ChebyshevMetric{}
	default:
		return cfg, errors.Errorf("unknown metric %q", a.Metric)
	}

	switch a.Noise {
	case "none", "":
		cfg.Noise = nil
	case "leaves":
		cfg.Noise = genie.LeafNoise{}
	case "core":
		cfg.Noise = genie.CoreDistanceNoise{Quantile: a.Quantile}
	default:
		return cfg, errors.Errorf("unknown noise filter %q", a.Noise)
	}
	return cfg, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening input")
	}
	return f, nil
}

// readPoints parses a numeric CSV. Blank cells are rejected.
func readPoints(r io.Reader, header bool) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var data [][]float64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header && line == 1 {
			continue
		}
		row := make([]float64, len(rec))
		for i, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d, column %d", line, i+1)
			}
			row[i] = v
		}
		data = append(data, row)
	}
	return data, nil
}

func writeResult(w io.Writer, res *genie.Result) error {
	out := output{
		Labels:  res.Labels,
		Noise:   res.Noise,
		Inliers: res.Inliers,
		Linkage: res.Linkage.Rows(),
		Forced:  make([]bool, len(res.Linkage.Merges)),
	}
	for i, m := range res.Linkage.Merges {
		out.Forced[i] = m.Forced
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "writing result")
}
