package kernel

import (
	"testing"

	"github.com/hyperlp/hyperlp/hypergraph"
	"github.com/hyperlp/hyperlp/planner"
)

func buildFlatAndPlan(t *testing.T, n uint32, edges [][]uint32) (*hypergraph.Store, *planner.Plan) {
	s := hypergraph.New(n)
	for _, e := range edges {
		if _, err := s.AddHyperedge(e); err != nil {
			t.Fatalf("AddHyperedge(%v): %v", e, err)
		}
	}
	flat := s.Freeze()
	plan := planner.Build(flat, planner.DefaultThresholds())
	return s, plan
}

// TestArgmaxTieBreakFavorsIncumbent checks the strict-> tie-break rule
// from spec §4.E: when two labels are equally popular, the incumbent
// keeps its label rather than flipping to a numerically smaller one.
func TestArgmaxTieBreakFavorsIncumbent(t *testing.T) {
	counts := []int32{2, 2, 0}
	if got := argmax(counts, 3, 1); got != 1 {
		t.Fatalf("argmax tie should favor incumbent 1, got %d", got)
	}
	counts2 := []int32{2, 3, 0}
	if got := argmax(counts2, 3, 0); got != 1 {
		t.Fatalf("argmax should pick strictly higher count 1 over incumbent 0, got %d", got)
	}
}

// TestPhase1UnanimousEdgeAdoptsVertexLabel: an edge whose every incident
// vertex shares one label must adopt that label, across all three
// tiers (edge sizes are chosen so the default thresholds put the three
// edges into WI, SG, WG respectively).
func TestPhase1UnanimousEdgeAdoptsVertexLabel(t *testing.T) {
	// Build one small (WI), one medium (SG), one large (WG) edge, each
	// unanimous among its own vertices.
	edges := [][]uint32{}
	// WI edge: size 2, label 0.
	edges = append(edges, []uint32{0, 1})
	// SG edge: size 40 (> SGEdge=32, <= WGEdge=256), label 1.
	sgVerts := make([]uint32, 40)
	for i := range sgVerts {
		sgVerts[i] = uint32(100 + i)
	}
	edges = append(edges, sgVerts)
	// WG edge: size 300 (> WGEdge=256), label 2.
	wgVerts := make([]uint32, 300)
	for i := range wgVerts {
		wgVerts[i] = uint32(1000 + i)
	}
	edges = append(edges, wgVerts)

	n := uint32(1300)
	s, plan := buildFlatAndPlan(t, n, edges)
	flat := s.Freeze()

	vertexLabels := make([]int32, n)
	for _, v := range []uint32{0, 1} {
		vertexLabels[v] = 0
	}
	for _, v := range sgVerts {
		vertexLabels[v] = 1
	}
	for _, v := range wgVerts {
		vertexLabels[v] = 2
	}

	edgeLabels := make([]int32, flat.NumEdges())
	edgeLabels[0], edgeLabels[1], edgeLabels[2] = -1, -1, -1

	opts := Options{MaxLabels: 8, WorkgroupSize: 64, SubgroupWidth: 16, Threads: 4}
	Phase1(flat, plan, vertexLabels, edgeLabels, opts)

	if edgeLabels[0] != 0 {
		t.Fatalf("WI edge: want label 0, got %d", edgeLabels[0])
	}
	if edgeLabels[1] != 1 {
		t.Fatalf("SG edge: want label 1, got %d", edgeLabels[1])
	}
	if edgeLabels[2] != 2 {
		t.Fatalf("WG edge: want label 2, got %d", edgeLabels[2])
	}
}

// TestPhase2ChangeCounterTracksFlips: a vertex surrounded by edges
// unanimously labeled differently from its own incumbent must flip,
// incrementing the change counter; a vertex already agreeing with its
// edges must not.
func TestPhase2ChangeCounterTracksFlips(t *testing.T) {
	// Two vertices, two edges. v0 is incident to both edges, labeled 9
	// to start but both edges carry label 3 -> must flip. v1, also in
	// both edges, already agrees with them.
	s, plan := buildFlatAndPlan(t, 2, [][]uint32{{0, 1}, {0, 1}})
	flat := s.Freeze()

	edgeLabels := []int32{3, 3}
	vertexLabels := []int32{9, 3}

	opts := Options{MaxLabels: 10, WorkgroupSize: 64, SubgroupWidth: 16, Threads: 2}
	changed := Phase2(flat, plan, edgeLabels, vertexLabels, opts)

	if vertexLabels[0] != 3 {
		t.Fatalf("v0 should flip to label 3, got %d", vertexLabels[0])
	}
	if vertexLabels[1] != 3 {
		t.Fatalf("v1 should remain at label 3, got %d", vertexLabels[1])
	}
	if changed != 1 {
		t.Fatalf("expected exactly 1 change, got %d", changed)
	}
}

// TestOutOfRangeLabelsIgnoredInTally: labels outside [0,MaxLabels) must
// not contribute to the histogram and must not crash the kernel (§7).
func TestOutOfRangeLabelsIgnoredInTally(t *testing.T) {
	s, plan := buildFlatAndPlan(t, 3, [][]uint32{{0, 1, 2}})
	flat := s.Freeze()

	vertexLabels := []int32{-1, 100, 0}
	edgeLabels := []int32{-1}

	opts := Options{MaxLabels: 4, WorkgroupSize: 8, SubgroupWidth: 4, Threads: 2}
	Phase1(flat, plan, vertexLabels, edgeLabels, opts)

	// Only vertex 2 (label 0) falls in range; edge must adopt label 0
	// even though its incumbent was -1 (out of range, so it cannot win
	// the tie-break against an in-range count).
	if edgeLabels[0] != 0 {
		t.Fatalf("expected edge to adopt the sole in-range label 0, got %d", edgeLabels[0])
	}
}

// TestOptionsNormalizeClampsWorkgroupSize checks the §4.E/§6 clamp
// T <= 1024 and the SubgroupWidth <= WorkgroupSize constraint.
func TestOptionsNormalizeClampsWorkgroupSize(t *testing.T) {
	o := Options{MaxLabels: 8, WorkgroupSize: 5000, SubgroupWidth: 9000}.Normalize()
	if o.WorkgroupSize != MaxWorkgroupSize {
		t.Fatalf("want WorkgroupSize clamped to %d, got %d", MaxWorkgroupSize, o.WorkgroupSize)
	}
	if o.SubgroupWidth != o.WorkgroupSize {
		t.Fatalf("want SubgroupWidth clamped to WorkgroupSize %d, got %d", o.WorkgroupSize, o.SubgroupWidth)
	}

	o2 := Options{MaxLabels: 8}.Normalize()
	if o2.WorkgroupSize != 256 {
		t.Fatalf("want default WorkgroupSize 256, got %d", o2.WorkgroupSize)
	}
	if o2.SubgroupWidth != DefaultSubgroupWidth {
		t.Fatalf("want default SubgroupWidth %d, got %d", DefaultSubgroupWidth, o2.SubgroupWidth)
	}
	if o2.Threads <= 0 {
		t.Fatalf("want auto-detected Threads > 0, got %d", o2.Threads)
	}
}
