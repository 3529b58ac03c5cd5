// Package genie implements Genie, a hierarchical clustering algorithm that
// keeps the sizes of the clusters it builds from becoming too unequal.
//
// Genie runs single linkage over a minimum spanning tree, but while the Gini
// index of the current cluster sizes exceeds a threshold it merges the
// smallest cluster along its shortest incident tree edge instead of taking
// the globally shortest edge. This keeps single linkage's speed and its
// ability to follow arbitrary shapes without its chaining effect.
//
// Basic usage:
//
//	cfg := genie.DefaultConfig()
//	cfg.NClusters = 3
//	cfg.GiniThreshold = 0.3
//	result, err := genie.Cluster(data, cfg)
//	// result.Labels[i] is the cluster of point i (-1 = unassigned noise)
//	// result.Linkage holds the full merge history
//
// For precomputed distance matrices and neighbor graphs:
//
//	result, err := genie.ClusterPrecomputed(distMatrix, n, cfg)
//	result, err := genie.ClusterGraph(graph, cfg)
//
// # Building blocks
//
// The pipeline stages are exported on their own. BuildMST computes a
// spanning tree over any Oracle with a parallel Jarník–Prim; GenieLinkage
// turns its edges into a LinkageTree; LinkageTree.Cut extracts a flat
// partition:
//
//	points, _ := genie.NewVectorOracle(data, genie.EuclideanMetric{})
//	edges, _ := genie.BuildMST(points, runtime.NumCPU())
//	tree, _ := genie.GenieLinkage(edges, len(data), 0.3, genie.GenieRule{})
//	labels, _ := tree.Cut(3)
//
// # Noise points
//
// Setting Config.MinSamples above 1 builds the tree on mutual reachability
// distances. Combined with Config.Noise = LeafNoise{}, the leaves of that
// tree are kept out of the merge process and labeled afterwards according
// to Config.NoiseAssignment.
package genie
