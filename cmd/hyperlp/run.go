package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/hyperlp/hyperlp/engine"
	"github.com/hyperlp/hyperlp/genhg"
	"github.com/hyperlp/hyperlp/hyperlperr"
	"github.com/hyperlp/hyperlp/hypergraph"
	"github.com/hyperlp/hyperlp/mathutils"
	"github.com/hyperlp/hyperlp/serialize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/stat"
)

// cliOptions mirrors the DeviceOptions/generator/I-O flag surface of
// spec.md §6, extended with the workgroup_size/max_labels/metrics-addr
// flags this repo's DeviceOptions actually needs.
type cliOptions struct {
	Vertices   int
	Edges      int
	Iterations int
	Tolerance  float64
	Threads    int

	Generator string
	Uniform   bool
	Fixed     bool
	Planted   bool
	HSBM      bool

	MinEdgeSize int
	MaxEdgeSize int
	EdgeSize    int
	Communities int
	PIntra      float64
	PInter      float64
	Seed        uint64

	LabelClasses int
	LabelSeed    uint64

	Load string
	Save string

	WorkgroupSize int
	MaxLabels     int
	MetricsAddr   string
}

// exitCode classifies an error into spec §6/§7's exit codes: 0
// success (never reached here), 1 runtime failure, 2 input/graph
// error.
type exitCode struct {
	code int
	err  error
}

func (e *exitCode) Error() string { return e.err.Error() }
func (e *exitCode) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	var ec *exitCode
	if errors.As(err, &ec) {
		return ec.code
	}
	return 1
}

func wrapExit(err error) error {
	if err == nil {
		return nil
	}
	code := 1
	if errors.Is(err, hyperlperr.ErrPrecondition) || errors.Is(err, hyperlperr.ErrConfig) || errors.Is(err, hyperlperr.ErrFormat) {
		code = 2
	}
	return &exitCode{code: code, err: err}
}

func runCLI(o cliOptions) error {
	store, err := buildOrLoadStore(o)
	if err != nil {
		return wrapExit(err)
	}

	var registry *prometheus.Registry
	if o.MetricsAddr != "" {
		registry = prometheus.NewRegistry()
	}

	backend, err := engine.New(deviceOptions(o, registry))
	if err != nil {
		return wrapExit(err)
	}

	if registry != nil {
		go serveMetrics(o.MetricsAddr, registry)
	}

	result, _, err := backend.Run(context.Background(), store, o.Iterations, o.Tolerance)
	if err != nil {
		return wrapExit(err)
	}
	info(fmt.Sprintf("iterations=%d converged=%v total=%s", result.Iterations, result.Converged, result.TotalTime))

	if o.Save != "" {
		if err := serialize.SaveFile(o.Save, store); err != nil {
			return wrapExit(err)
		}
		info("saved result to ", o.Save)
	}

	reportCommunitySizes(store)
	return nil
}

// buildOrLoadStore implements spec §6's --load precedence: when set,
// all generator parameters are ignored and a notice is printed.
func buildOrLoadStore(o cliOptions) (*hypergraph.Store, error) {
	if o.Load != "" {
		fmt.Fprintln(os.Stderr, "notice: --load is set; generator flags are ignored")
		return serialize.LoadFile(o.Load)
	}

	generator := o.Generator
	switch {
	case o.Uniform:
		generator = "uniform"
	case o.Fixed:
		generator = "fixed"
	case o.Planted:
		generator = "planted"
	case o.HSBM:
		generator = "hsbm"
	}

	var store *hypergraph.Store
	var err error
	switch generator {
	case "uniform":
		store, err = genhg.Uniform(o.Vertices, o.Edges, o.MinEdgeSize, o.MaxEdgeSize, o.Seed)
	case "fixed":
		store, err = genhg.FixedSize(o.Vertices, o.Edges, o.EdgeSize, o.Seed)
	case "planted":
		store, err = genhg.PlantedPartition(o.Vertices, o.Edges, o.Communities, o.PIntra, o.MinEdgeSize, o.MaxEdgeSize, o.Seed)
	case "hsbm":
		store, err = genhg.HSBM(o.Vertices, o.Edges, o.Communities, o.PIntra, o.PInter, o.MinEdgeSize, o.MaxEdgeSize, o.Seed)
	default:
		return nil, fmt.Errorf("%w: unknown generator %q", hyperlperr.ErrConfig, generator)
	}
	if err != nil {
		return nil, err
	}

	labels, err := genhg.RandomLabels(o.Vertices, o.LabelClasses, o.LabelSeed)
	if err != nil {
		return nil, err
	}
	if err := store.SetLabels(labels); err != nil {
		return nil, fmt.Errorf("%w: %v", hyperlperr.ErrConfig, err)
	}
	return store, nil
}

func deviceOptions(o cliOptions, registry *prometheus.Registry) engine.DeviceOptions {
	return engine.DeviceOptions{
		Threads:       o.Threads,
		WorkgroupSize: o.WorkgroupSize,
		MaxLabels:     o.MaxLabels,
		Metrics:       registry,
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	info("serving metrics on ", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		info("metrics server stopped: ", err)
	}
}

// reportCommunitySizes prints the size distribution of the resulting
// label partition, summarized with gonum's stat.Mean/StdDev and the
// teacher's mathutils.Median.
func reportCommunitySizes(store *hypergraph.Store) {
	counts := map[int32]int{}
	for _, l := range store.Labels() {
		counts[l]++
	}
	sizes := make([]float64, 0, len(counts))
	intSizes := make([]int, 0, len(counts))
	for _, c := range counts {
		sizes = append(sizes, float64(c))
		intSizes = append(intSizes, c)
	}
	if len(sizes) == 0 {
		return
	}
	mean := stat.Mean(sizes, nil)
	stddev := stat.StdDev(sizes, nil)
	median := mathutils.Median(intSizes)
	info(fmt.Sprintf("communities=%d mean_size=%.2f median_size=%d stddev_size=%.2f", len(sizes), mean, median, stddev))
}
