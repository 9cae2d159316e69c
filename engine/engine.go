// Package engine drives the tiered two-phase propagation to
// convergence over a frozen hypergraph: freeze -> plan -> iterate
// (phase1, phase2) -> write back -> timing breakdown (spec §4.F).
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperlp/hyperlp/hyperlperr"
	"github.com/hyperlp/hyperlp/hypergraph"
	"github.com/hyperlp/hyperlp/kernel"
	"github.com/hyperlp/hyperlp/mathutils"
	"github.com/hyperlp/hyperlp/planner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

func info(args ...any) {
	log.Info().Msg("[Engine] " + fmt.Sprint(args...))
}

// DeviceOptions configures a Backend (spec §6's DeviceOptions table).
type DeviceOptions struct {
	Threads       int // 0 = auto-detect (runtime.NumCPU)
	WorkgroupSize int // per-team thread count for the WG kernel; 0 = default 256
	SubgroupWidth int // lane count for the SG kernel; 0 = default 32
	MaxLabels     int // must be > 0 and <= kernel.MaxLabelsCap

	Thresholds planner.Thresholds // tier cut points; zero value = planner.DefaultThresholds()

	// Metrics, if non-nil, receives per-run iteration/convergence
	// counters. Optional opt-in telemetry (§6); the core algorithm does
	// not depend on it.
	Metrics *prometheus.Registry
}

// Result reports how a Run completed (spec §4.F).
type Result struct {
	Iterations int
	Converged  bool
	TotalTime  time.Duration
	Breakdown  map[string]time.Duration
}

// Backend runs the propagation algorithm with a fixed DeviceOptions.
type Backend struct {
	opts    DeviceOptions
	metrics *backendMetrics
}

// New validates opts and constructs a Backend. Fails with an
// hyperlperr.ErrPrecondition-wrapped error on an invalid max_labels,
// matching spec §7: "max_labels==0 or max_labels > cap fails immediately".
func New(opts DeviceOptions) (*Backend, error) {
	if opts.MaxLabels <= 0 {
		return nil, fmt.Errorf("%w: max_labels must be > 0", hyperlperr.ErrPrecondition)
	}
	if opts.MaxLabels > kernel.MaxLabelsCap {
		return nil, fmt.Errorf("%w: max_labels %d exceeds compile-time cap %d", hyperlperr.ErrPrecondition, opts.MaxLabels, kernel.MaxLabelsCap)
	}
	if opts.Thresholds == (planner.Thresholds{}) {
		opts.Thresholds = planner.DefaultThresholds()
	}

	b := &Backend{opts: opts}
	if opts.Metrics != nil {
		b.metrics = newBackendMetrics(opts.Metrics)
	}
	return b, nil
}

// Run executes label propagation to convergence or max_iterations on
// store, whichever comes first, then writes the resulting labels back
// into store (spec §4.F step 4) and returns the final labels alongside
// the Result.
func (b *Backend) Run(ctx context.Context, store *hypergraph.Store, maxIterations int, tolerance float64) (Result, []int32, error) {
	if maxIterations <= 0 {
		return Result{}, nil, fmt.Errorf("%w: max_iterations must be > 0", hyperlperr.ErrPrecondition)
	}

	total := &mathutils.Watch{}
	total.Start()
	breakdown := map[string]time.Duration{}

	setup := &mathutils.Watch{}
	setup.Start()
	flat := store.Freeze()
	plan := planner.Build(flat, b.opts.Thresholds)
	breakdown["setup"] = setup.Elapsed()

	n := flat.NumVertices()
	m := flat.NumEdges()
	vertexLabels := store.Labels()
	if uint32(len(vertexLabels)) != n {
		return Result{}, nil, fmt.Errorf("%w: label vector length %d does not match num_vertices %d", hyperlperr.ErrPrecondition, len(vertexLabels), n)
	}

	if n == 0 || m == 0 {
		breakdown["iterate"] = 0
		writeback := &mathutils.Watch{}
		writeback.Start()
		store.WriteBackLabels(vertexLabels)
		breakdown["writeback"] = writeback.Elapsed()
		breakdown["total"] = total.Elapsed()
		info("run complete: empty graph, 0 iterations")
		return Result{Iterations: 0, Converged: true, TotalTime: breakdown["total"], Breakdown: breakdown}, vertexLabels, nil
	}

	edgeLabels := make([]int32, m)

	kopts := kernel.Options{
		MaxLabels:     b.opts.MaxLabels,
		WorkgroupSize: b.opts.WorkgroupSize,
		SubgroupWidth: b.opts.SubgroupWidth,
		Threads:       b.opts.Threads,
	}.Normalize()

	iterWatch := &mathutils.Watch{}
	iterWatch.Start()

	iterations := 0
	converged := false
	for iterations < maxIterations {
		select {
		case <-ctx.Done():
			return Result{}, nil, ctx.Err()
		default:
		}

		kernel.Phase1(flat, plan, vertexLabels, edgeLabels, kopts)
		changed := kernel.Phase2(flat, plan, edgeLabels, vertexLabels, kopts)
		iterations++

		changeRatio := float64(changed) / float64(n)
		if iterations%10 == 0 || changeRatio < tolerance {
			info(fmt.Sprintf("iteration %d: changed=%d change_ratio=%.6f", iterations, changed, changeRatio))
		}
		if b.metrics != nil {
			b.metrics.observeIteration(changeRatio)
		}

		if changeRatio < tolerance {
			converged = true
			break
		}
	}
	breakdown["iterate"] = iterWatch.Elapsed()

	writeback := &mathutils.Watch{}
	writeback.Start()
	store.WriteBackLabels(vertexLabels)
	breakdown["writeback"] = writeback.Elapsed()

	breakdown["total"] = total.Elapsed()
	if b.metrics != nil {
		b.metrics.observeRun(iterations, converged)
	}
	info(fmt.Sprintf("run complete: iterations=%d converged=%v total=%s", iterations, converged, breakdown["total"]))

	return Result{
		Iterations: iterations,
		Converged:  converged,
		TotalTime:  breakdown["total"],
		Breakdown:  breakdown,
	}, vertexLabels, nil
}
