package genie

import (
	"math/rand"
	"testing"
)

func generateBenchData(n, dims int) [][]float64 {
	return randomPoints(rand.New(rand.NewSource(42)), n, dims)
}

// --- MST ---

func BenchmarkBuildMST_1000x2_Serial(b *testing.B) {
	o := mustVectorOracle(generateBenchData(1000, 2), nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = BuildMST(o, 1)
	}
}

func BenchmarkBuildMST_1000x2_Parallel(b *testing.B) {
	o := mustVectorOracle(generateBenchData(1000, 2), nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = BuildMST(o, 4)
	}
}

func BenchmarkBuildMST_5000x10_Parallel(b *testing.B) {
	o := mustVectorOracle(generateBenchData(5000, 10), nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = BuildMST(o, 4)
	}
}

func BenchmarkBuildGraphMST_5000x2_K15(b *testing.B) {
	g, err := BuildNeighborGraph(generateBenchData(5000, 2), nil, 15, 4)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = BuildGraphMST(g)
	}
}

// --- Neighbors ---

func BenchmarkBuildNeighborGraph_5000x3_K10(b *testing.B) {
	data := generateBenchData(5000, 3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = BuildNeighborGraph(data, nil, 10, 4)
	}
}

// --- Scheduler ---

func BenchmarkGenieLinkage_5000(b *testing.B) {
	edges, err := BuildMST(mustVectorOracle(generateBenchData(5000, 2), nil), 4)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = GenieLinkage(edges, 5000, 0.3, nil)
	}
}

func BenchmarkSizeState_Merges(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s := NewSizeState(4096)
		for size := 1; size < 4096; size *= 2 {
			for k := 0; k < 4096/(2*size); k++ {
				s.Merge(size, size)
			}
		}
	}
}

// --- End-to-end ---

func BenchmarkCluster_2000x2(b *testing.B) {
	data := generateBenchData(2000, 2)
	cfg := DefaultConfig()
	cfg.NClusters = 5
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Cluster(data, cfg)
	}
}

func BenchmarkCluster_2000x2_MutualReachability(b *testing.B) {
	data := generateBenchData(2000, 2)
	cfg := DefaultConfig()
	cfg.NClusters = 5
	cfg.MinSamples = 5
	cfg.Noise = LeafNoise{}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Cluster(data, cfg)
	}
}
