// Package planner implements the tiered execution-pool scheduler
// (spec §3, §4.D): a pure, deterministic partition of edge ids and
// vertex ids into work-group / sub-group / work-item tiers based on
// cardinality, so each tier can be driven by the kernel best suited to
// its parallelism granularity.
package planner

import (
	"fmt"

	"github.com/hyperlp/hyperlp/csr"
	"github.com/rs/zerolog/log"
)

func debug(args ...any) {
	log.Debug().Msg("[Planner] " + fmt.Sprint(args...))
}

// Thresholds holds the cardinality cut points between tiers. Defaults
// match spec §3.
type Thresholds struct {
	WGEdge    int // edges with size > WGEdge go to the work-group tier
	SGEdge    int // edges with SGEdge < size <= WGEdge go to the sub-group tier
	WGVertex  int // vertices with degree > WGVertex go to the work-group tier
	SGVertex  int // vertices with SGVertex < degree <= WGVertex go to the sub-group tier
}

// DefaultThresholds returns spec §3's default cut points:
// T_wg=256, T_sg=32 for edges; T_wgV=1024, T_sgV=256 for vertices.
func DefaultThresholds() Thresholds {
	return Thresholds{WGEdge: 256, SGEdge: 32, WGVertex: 1024, SGVertex: 256}
}

// Plan is the derived execution plan for a frozen hypergraph: six
// contiguous index arrays, three per entity kind, that exactly
// partition [0,M) and [0,N).
type Plan struct {
	WGEdges []uint32
	SGEdges []uint32
	WIEdges []uint32

	WGVertices []uint32
	SGVertices []uint32
	WIVertices []uint32
}

// Build partitions flat's edge ids and vertex ids into tiers according
// to thresholds. It is a pure function of flat and thresholds: same
// inputs always produce the same (order-preserving) output.
func Build(flat *csr.FlatView, thresholds Thresholds) *Plan {
	plan := &Plan{}

	m := flat.NumEdges()
	for e := uint32(0); e < m; e++ {
		size := int(flat.EdgeSizes[e])
		switch {
		case size > thresholds.WGEdge:
			plan.WGEdges = append(plan.WGEdges, e)
		case size > thresholds.SGEdge:
			plan.SGEdges = append(plan.SGEdges, e)
		default:
			plan.WIEdges = append(plan.WIEdges, e)
		}
	}

	n := flat.NumVertices()
	for v := uint32(0); v < n; v++ {
		degree := int(flat.VertexOffsets[v+1] - flat.VertexOffsets[v])
		switch {
		case degree > thresholds.WGVertex:
			plan.WGVertices = append(plan.WGVertices, v)
		case degree > thresholds.SGVertex:
			plan.SGVertices = append(plan.SGVertices, v)
		default:
			plan.WIVertices = append(plan.WIVertices, v)
		}
	}

	debug(fmt.Sprintf("edges wg=%d sg=%d wi=%d, vertices wg=%d sg=%d wi=%d",
		len(plan.WGEdges), len(plan.SGEdges), len(plan.WIEdges),
		len(plan.WGVertices), len(plan.SGVertices), len(plan.WIVertices)))

	return plan
}
