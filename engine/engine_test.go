package engine

import (
	"context"
	"testing"

	"github.com/hyperlp/hyperlp/hypergraph"
	"github.com/hyperlp/hyperlp/kernel"
	"github.com/hyperlp/hyperlp/planner"
)

// TestRunConvergesOnTwoCommunities builds two disjoint triangles (no
// edges between them) with noisy initial labels and checks that
// propagation separates them into two label classes and reports
// convergence before max_iterations.
func TestRunConvergesOnTwoCommunities(t *testing.T) {
	s := hypergraph.New(6)
	// Community A: {0,1,2}; community B: {3,4,5}.
	mustAdd(t, s, 0, 1, 2)
	mustAdd(t, s, 1, 2, 0)
	mustAdd(t, s, 3, 4, 5)
	mustAdd(t, s, 4, 5, 3)

	if err := s.SetLabels([]int32{0, 1, 0, 1, 0, 1}); err != nil {
		t.Fatalf("SetLabels: %v", err)
	}

	b, err := New(DeviceOptions{MaxLabels: 4, Threads: 2, WorkgroupSize: 8, SubgroupWidth: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, labels, err := b.Run(context.Background(), s, 10, 0.001)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Converged {
		t.Fatalf("expected convergence within 10 iterations, got %+v", result)
	}
	if labels[0] != labels[1] || labels[1] != labels[2] {
		t.Fatalf("community A should share one label, got %v", labels[:3])
	}
	if labels[3] != labels[4] || labels[4] != labels[5] {
		t.Fatalf("community B should share one label, got %v", labels[3:])
	}
}

// TestRunToleranceBoundary mirrors scenario S6: a change_ratio exactly
// equal to tolerance must not count as converged (strict <).
func TestRunToleranceBoundary(t *testing.T) {
	const n = 100
	s := hypergraph.New(n)
	// A single hyperedge touching all vertices with a 99/1 label split
	// settles in one Phase-2 flip (the 1 minority vertex), giving a
	// change_ratio of exactly 1/100 = 0.01 on that iteration.
	all := make([]uint32, n)
	for i := range all {
		all[i] = uint32(i)
	}
	mustAdd(t, s, all...)

	labels := make([]int32, n)
	labels[0] = 1 // single minority vertex
	if err := s.SetLabels(labels); err != nil {
		t.Fatalf("SetLabels: %v", err)
	}

	b, err := New(DeviceOptions{MaxLabels: 4, Threads: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// With tolerance == 0.01, change_ratio == 0.01 on the flipping
	// iteration must NOT satisfy change_ratio < tolerance.
	result, _, err := b.Run(context.Background(), s, 1, 0.01)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Converged {
		t.Fatalf("change_ratio==tolerance must not count as converged, got %+v", result)
	}
}

// TestPhase1SeedsEdgeLabelsAtZero mirrors scenario S1's phase-1 vector:
// with edge_labels seeded at zero (the reference's incumbent), each
// edge's argmax must land on [0,1,2,0].
func TestPhase1SeedsEdgeLabelsAtZero(t *testing.T) {
	s := hypergraph.New(6)
	mustAdd(t, s, 0, 1, 2)
	mustAdd(t, s, 2, 3, 4)
	mustAdd(t, s, 4, 5)
	mustAdd(t, s, 0, 3, 5)
	if err := s.SetLabels([]int32{0, 0, 1, 1, 2, 2}); err != nil {
		t.Fatalf("SetLabels: %v", err)
	}

	flat := s.Freeze()
	plan := planner.Build(flat, planner.DefaultThresholds())
	vertexLabels := s.Labels()
	edgeLabels := make([]int32, flat.NumEdges())

	opts := kernel.Options{MaxLabels: 4, WorkgroupSize: 64, SubgroupWidth: 16, Threads: 2}.Normalize()
	kernel.Phase1(flat, plan, vertexLabels, edgeLabels, opts)

	want := []int32{0, 1, 2, 0}
	for e, w := range want {
		if edgeLabels[e] != w {
			t.Fatalf("edge_labels[%d] = %d, want %d (edge_labels=%v)", e, edgeLabels[e], w, edgeLabels)
		}
	}
}

// TestRunRejectsInvalidMaxLabels checks the §7 precondition: max_labels
// == 0 (or beyond the compile-time cap) fails immediately at New.
func TestRunRejectsInvalidMaxLabels(t *testing.T) {
	if _, err := New(DeviceOptions{MaxLabels: 0}); err == nil {
		t.Fatalf("expected error for max_labels=0")
	}
	if _, err := New(DeviceOptions{MaxLabels: 1000}); err == nil {
		t.Fatalf("expected error for max_labels beyond the compile-time cap")
	}
}

// TestRunRejectsLabelLengthMismatch checks that a store whose label
// vector length drifted from N (impossible via the public API, but
// guarded defensively) is rejected rather than panicking.
func TestRunRejectsLabelLengthMismatch(t *testing.T) {
	s := hypergraph.New(4)
	mustAdd(t, s, 0, 1)
	s.WriteBackLabels([]int32{0, 0, 0}) // drifted length, bypassing SetLabels

	b, err := New(DeviceOptions{MaxLabels: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := b.Run(context.Background(), s, 5, 0.0); err == nil {
		t.Fatalf("expected error for mismatched label length")
	}
}

// TestRunHandlesEmptyGraph mirrors scenario S5: a graph with no
// vertices or no hyperedges must return after 0 iterations with no
// change, rather than spinning to max_iterations or dividing by a
// zero vertex count.
func TestRunHandlesEmptyGraph(t *testing.T) {
	b, err := New(DeviceOptions{MaxLabels: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	noVertices := hypergraph.New(0)
	result, labels, err := b.Run(context.Background(), noVertices, 10, 0.0)
	if err != nil {
		t.Fatalf("Run(no vertices): %v", err)
	}
	if result.Iterations != 0 || len(labels) != 0 {
		t.Fatalf("expected 0 iterations and no labels for an empty store, got %+v labels=%v", result, labels)
	}

	noEdges := hypergraph.New(5)
	if err := noEdges.SetLabels([]int32{0, 1, 2, 3, 4}); err != nil {
		t.Fatalf("SetLabels: %v", err)
	}
	result, labels, err = b.Run(context.Background(), noEdges, 10, 0.0)
	if err != nil {
		t.Fatalf("Run(no edges): %v", err)
	}
	if result.Iterations != 0 {
		t.Fatalf("expected 0 iterations for an edge-less graph, got %+v", result)
	}
	if labels[0] != 0 || labels[1] != 1 || labels[4] != 4 {
		t.Fatalf("labels must pass through unchanged, got %v", labels)
	}
}

func mustAdd(t *testing.T, s *hypergraph.Store, vs ...uint32) {
	t.Helper()
	if _, err := s.AddHyperedge(vs); err != nil {
		t.Fatalf("AddHyperedge(%v): %v", vs, err)
	}
}
