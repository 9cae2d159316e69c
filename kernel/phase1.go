package kernel

import (
	"sync"

	"github.com/hyperlp/hyperlp/csr"
	"github.com/hyperlp/hyperlp/planner"
)

// Phase1 performs the edges<-vertices update (spec §4.B, §4.E): every
// edge's label is recomputed from the label histogram of its incident
// vertices, reading vertexLabels and writing edgeLabels only. The three
// tiers are launched concurrently since they touch disjoint edge ids.
func Phase1(flat *csr.FlatView, plan *planner.Plan, vertexLabels, edgeLabels []int32, opts Options) {
	opts = opts.Normalize()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); runEdgeWorkgroup(flat, plan.WGEdges, vertexLabels, edgeLabels, opts) }()
	go func() { defer wg.Done(); runEdgeSubgroup(flat, plan.SGEdges, vertexLabels, edgeLabels, opts) }()
	go func() { defer wg.Done(); runEdgeWorkitem(flat, plan.WIEdges, vertexLabels, edgeLabels, opts) }()
	wg.Wait()
}

// runEdgeWorkgroup drives the work-group kernel: every edge runs in its
// own goroutine, concurrently with the others, and a team of up to
// opts.WorkgroupSize goroutines cooperates on that edge's vertex list,
// striding over it and racing atomic adds into a shared histogram
// before a lone leader resolves the argmax.
func runEdgeWorkgroup(flat *csr.FlatView, edges []uint32, vertexLabels, edgeLabels []int32, opts Options) {
	var outer sync.WaitGroup
	outer.Add(len(edges))
	for _, e := range edges {
		go func(e uint32) {
			defer outer.Done()
			verts := flat.Edge(e)
			team := opts.WorkgroupSize
			if team > len(verts) {
				team = len(verts)
			}
			if team < 1 {
				team = 1
			}
			counts := make([]int32, opts.MaxLabels)

			var teamWG sync.WaitGroup
			teamWG.Add(team)
			for lane := 0; lane < team; lane++ {
				go func(lane int) {
					defer teamWG.Done()
					for i := lane; i < len(verts); i += team {
						teamHistogramAdd(counts, vertexLabels[verts[i]], opts.MaxLabels)
					}
				}(lane)
			}
			teamWG.Wait() // barrier: all lanes have finished tallying

			edgeLabels[e] = argmax(counts, opts.MaxLabels, edgeLabels[e])
		}(e)
	}
	outer.Wait()
}

// runEdgeSubgroup drives the sub-group kernel: identical cooperative
// structure to the work-group kernel, but with a narrower lane count
// (opts.SubgroupWidth), matching medium-cardinality edges where a full
// work-group team would be mostly idle lanes.
func runEdgeSubgroup(flat *csr.FlatView, edges []uint32, vertexLabels, edgeLabels []int32, opts Options) {
	var outer sync.WaitGroup
	outer.Add(len(edges))
	for _, e := range edges {
		go func(e uint32) {
			defer outer.Done()
			verts := flat.Edge(e)
			lanes := opts.SubgroupWidth
			if lanes > len(verts) {
				lanes = len(verts)
			}
			if lanes < 1 {
				lanes = 1
			}
			counts := make([]int32, opts.MaxLabels)

			var sg sync.WaitGroup
			sg.Add(lanes)
			for lane := 0; lane < lanes; lane++ {
				go func(lane int) {
					defer sg.Done()
					for i := lane; i < len(verts); i += lanes {
						teamHistogramAdd(counts, vertexLabels[verts[i]], opts.MaxLabels)
					}
				}(lane)
			}
			sg.Wait()

			edgeLabels[e] = argmax(counts, opts.MaxLabels, edgeLabels[e])
		}(e)
	}
	outer.Wait()
}

// runEdgeWorkitem drives the work-item kernel: small edges are cheap
// enough that cooperating threads would only add dispatch overhead, so
// entities are instead batched across host workers, one thread per
// edge, with a private (non-atomic) histogram.
func runEdgeWorkitem(flat *csr.FlatView, edges []uint32, vertexLabels, edgeLabels []int32, opts Options) {
	workItemBatches(edges, opts.Threads, func(batch []uint32) {
		counts := make([]int32, opts.MaxLabels)
		for _, e := range batch {
			for i := range counts {
				counts[i] = 0
			}
			for _, v := range flat.Edge(e) {
				lab := vertexLabels[v]
				if lab >= 0 && int(lab) < opts.MaxLabels {
					counts[lab]++
				}
			}
			edgeLabels[e] = argmax(counts, opts.MaxLabels, edgeLabels[e])
		}
	})
}
