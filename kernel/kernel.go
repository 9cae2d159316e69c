// Package kernel implements the tiered work-group / sub-group /
// work-item kernels that execute the two-phase label-propagation
// update (spec §4.E) over a frozen hypergraph's flat (CSR) view.
//
// All three kernels within a phase read the same input labels and
// write to disjoint output-label slots, so they are launched
// concurrently; the phase boundary itself is the only required
// barrier (enforced by the caller, engine.Backend).
package kernel

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/hyperlp/hyperlp/mathutils"
)

// MaxLabelsCap is the compile-time upper bound on max_labels (spec §3,
// §6): team-local/private histograms are fixed-size arrays of at most
// this many counters.
const MaxLabelsCap = 32

// MaxWorkgroupSize is the clamp applied to DeviceOptions.WorkgroupSize
// (spec §4.E): "T defaults to 256 and is clamped to <= 1024."
const MaxWorkgroupSize = 1024

// DefaultSubgroupWidth is the lane count of a sub-group kernel
// invocation, matching typical hardware sub-group/warp width.
const DefaultSubgroupWidth = 32

// Options configures kernel execution. It is derived from
// engine.DeviceOptions by the iteration driver.
type Options struct {
	MaxLabels     int // must be in (0, MaxLabelsCap]
	WorkgroupSize int // team thread count for the WG kernel, clamped to MaxWorkgroupSize
	SubgroupWidth int // lane count for the SG kernel, default DefaultSubgroupWidth
	Threads       int // host worker count for the WI kernel; 0 = runtime.NumCPU()
}

// Normalize clamps Options to their valid ranges, filling in defaults
// for zero fields the way spec §6 describes (0 = auto-detect threads,
// default 256 for workgroup_size).
func (o Options) Normalize() Options {
	out := o
	if out.WorkgroupSize <= 0 {
		out.WorkgroupSize = 256
	}
	out.WorkgroupSize = mathutils.Clamp(out.WorkgroupSize, 1, MaxWorkgroupSize)
	if out.SubgroupWidth <= 0 {
		out.SubgroupWidth = DefaultSubgroupWidth
	}
	out.SubgroupWidth = mathutils.Min(out.SubgroupWidth, out.WorkgroupSize)
	if out.Threads <= 0 {
		out.Threads = runtime.NumCPU()
	}
	return out
}

// argmax implements the strict-> tie-break argmax seeded by the
// incumbent label, as specified in §4.E: the scan starts from the
// incumbent's own count and only replaces it on a strictly greater
// count, so ties resolve to the lower-numbered label when scanning
// left-to-right, and the incumbent wins outright ties against itself.
func argmax(counts []int32, maxLabels int, incumbent int32) int32 {
	best := incumbent
	bestCount := int32(-1)
	if incumbent >= 0 && int(incumbent) < maxLabels {
		bestCount = counts[incumbent]
	}
	for lab := 0; lab < maxLabels; lab++ {
		if counts[lab] > bestCount {
			bestCount = counts[lab]
			best = int32(lab)
		}
	}
	return best
}

// workItemBatches splits [0,len(ids)) into `workers` contiguous
// batches and runs fn on each batch from its own goroutine, blocking
// until all batches complete. This is the teacher's goroutine-per-
// batch fork-join idiom (framework/sync.go's ConvergeSync), generalized
// from "one goroutine per thread over a vertex range" to "one goroutine
// per thread over an arbitrary tier's id range".
func workItemBatches(ids []uint32, workers int, fn func(batch []uint32)) {
	if len(ids) == 0 {
		return
	}
	workers = mathutils.Min(workers, len(ids))
	workers = mathutils.Max(workers, 1)

	var wg sync.WaitGroup
	batchSize := (len(ids) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * batchSize
		if start >= len(ids) {
			break
		}
		end := mathutils.Min(start+batchSize, len(ids))
		wg.Add(1)
		go func(batch []uint32) {
			defer wg.Done()
			fn(batch)
		}(ids[start:end])
	}
	wg.Wait()
}

// teamHistogramAdd performs an atomic increment into a team/sub-group
// scoped histogram slot. Kept as a named helper (rather than an inline
// atomic.AddInt32 call) so the work-group and sub-group kernels read
// as cooperating on shared scratch, matching the spec's description of
// "team threads cooperate ... performing atomic += 1 into the shared
// histogram".
func teamHistogramAdd(counts []int32, label int32, maxLabels int) {
	if label < 0 || int(label) >= maxLabels {
		return // out-of-range labels are ignored in tallies (§4.E, §7)
	}
	atomic.AddInt32(&counts[label], 1)
}
