package kernel

import (
	"sync"
	"sync/atomic"

	"github.com/hyperlp/hyperlp/csr"
	"github.com/hyperlp/hyperlp/planner"
)

// Phase2 performs the vertices<-edges update (spec §4.B, §4.E): every
// vertex's label is recomputed from the label histogram of its
// incident edges, reading edgeLabels and writing vertexLabels only. It
// returns the number of vertices whose label actually changed during
// this call (the counter starts at zero on every call), which the
// caller uses to decide convergence.
func Phase2(flat *csr.FlatView, plan *planner.Plan, edgeLabels, vertexLabels []int32, opts Options) int64 {
	opts = opts.Normalize()

	var changed int64
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		runVertexWorkgroup(flat, plan.WGVertices, edgeLabels, vertexLabels, opts, &changed)
	}()
	go func() {
		defer wg.Done()
		runVertexSubgroup(flat, plan.SGVertices, edgeLabels, vertexLabels, opts, &changed)
	}()
	go func() {
		defer wg.Done()
		runVertexWorkitem(flat, plan.WIVertices, edgeLabels, vertexLabels, opts, &changed)
	}()
	wg.Wait()
	return changed
}

func runVertexWorkgroup(flat *csr.FlatView, verts []uint32, edgeLabels, vertexLabels []int32, opts Options, changed *int64) {
	var outer sync.WaitGroup
	outer.Add(len(verts))
	for _, v := range verts {
		go func(v uint32) {
			defer outer.Done()
			incident := flat.VertexIncidence(v)
			team := opts.WorkgroupSize
			if team > len(incident) {
				team = len(incident)
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
					for i := lane; i < len(incident); i += team {
						teamHistogramAdd(counts, edgeLabels[incident[i]], opts.MaxLabels)
					}
				}(lane)
			}
			teamWG.Wait()

			newLabel := argmax(counts, opts.MaxLabels, vertexLabels[v])
			if newLabel != vertexLabels[v] {
				atomic.AddInt64(changed, 1)
				vertexLabels[v] = newLabel
			}
		}(v)
	}
	outer.Wait()
}

func runVertexSubgroup(flat *csr.FlatView, verts []uint32, edgeLabels, vertexLabels []int32, opts Options, changed *int64) {
	var outer sync.WaitGroup
	outer.Add(len(verts))
	for _, v := range verts {
		go func(v uint32) {
			defer outer.Done()
			incident := flat.VertexIncidence(v)
			lanes := opts.SubgroupWidth
			if lanes > len(incident) {
				lanes = len(incident)
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
					for i := lane; i < len(incident); i += lanes {
						teamHistogramAdd(counts, edgeLabels[incident[i]], opts.MaxLabels)
					}
				}(lane)
			}
			sg.Wait()

			newLabel := argmax(counts, opts.MaxLabels, vertexLabels[v])
			if newLabel != vertexLabels[v] {
				atomic.AddInt64(changed, 1)
				vertexLabels[v] = newLabel
			}
		}(v)
	}
	outer.Wait()
}

func runVertexWorkitem(flat *csr.FlatView, verts []uint32, edgeLabels, vertexLabels []int32, opts Options, changed *int64) {
	workItemBatches(verts, opts.Threads, func(batch []uint32) {
		counts := make([]int32, opts.MaxLabels)
		var localChanged int64
		for _, v := range batch {
			for i := range counts {
				counts[i] = 0
			}
			for _, e := range flat.VertexIncidence(v) {
				lab := edgeLabels[e]
				if lab >= 0 && int(lab) < opts.MaxLabels {
					counts[lab]++
				}
			}
			newLabel := argmax(counts, opts.MaxLabels, vertexLabels[v])
			if newLabel != vertexLabels[v] {
				localChanged++
				vertexLabels[v] = newLabel
			}
		}
		atomic.AddInt64(changed, localChanged)
	})
}
