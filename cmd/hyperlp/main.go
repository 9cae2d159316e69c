package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func info(args ...any) {
	log.Println("[hyperlp]\t", fmt.Sprint(args...))
}

// version is the reported --version string for this binary.
const version = "0.1.0"

var opts cliOptions

var rootCmd = &cobra.Command{
	Use:     "hyperlp",
	Short:   "Generate or load a hypergraph and run tiered label propagation over it",
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCLI(opts)
	},
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&opts.Vertices, "vertices", 1000, "number of vertices for a generated hypergraph")
	f.IntVar(&opts.Edges, "edges", 2000, "number of hyperedges for a generated hypergraph")
	f.IntVar(&opts.Iterations, "iterations", 20, "maximum propagation iterations")
	f.Float64Var(&opts.Tolerance, "tolerance", 0.0, "convergence tolerance on change_ratio")
	f.IntVar(&opts.Threads, "threads", 0, "host worker count; 0 = auto-detect")

	f.StringVar(&opts.Generator, "generator", "uniform", "generator kind: uniform|fixed|planted|hsbm")
	f.BoolVar(&opts.Uniform, "uniform", false, "shortcut for --generator=uniform")
	f.BoolVar(&opts.Fixed, "fixed", false, "shortcut for --generator=fixed")
	f.BoolVar(&opts.Planted, "planted", false, "shortcut for --generator=planted")
	f.BoolVar(&opts.HSBM, "hsbm", false, "shortcut for --generator=hsbm")

	f.IntVar(&opts.MinEdgeSize, "min-edge-size", 2, "minimum hyperedge size (uniform/planted/hsbm)")
	f.IntVar(&opts.MaxEdgeSize, "max-edge-size", 4, "maximum hyperedge size (uniform/planted/hsbm)")
	f.IntVar(&opts.EdgeSize, "edge-size", 3, "fixed hyperedge size (fixed generator)")
	f.IntVar(&opts.Communities, "communities", 4, "number of planted/hsbm communities")
	f.Float64Var(&opts.PIntra, "p-intra", 0.8, "intra-community edge probability (planted/hsbm)")
	f.Float64Var(&opts.PInter, "p-inter", 0.05, "inter-community edge probability (hsbm)")
	f.Uint64Var(&opts.Seed, "seed", 1, "generator RNG seed; 0 = process-random")

	f.IntVar(&opts.LabelClasses, "label-classes", 8, "number of initial label classes")
	f.Uint64Var(&opts.LabelSeed, "label-seed", 1, "initial label RNG seed; 0 = process-random")

	f.StringVar(&opts.Load, "load", "", "load the hypergraph from PATH instead of generating one")
	f.StringVar(&opts.Save, "save", "", "save the final hypergraph (with propagated labels) to PATH")

	f.IntVar(&opts.WorkgroupSize, "workgroup-size", 256, "work-group kernel team size, clamped <= 1024")
	f.IntVar(&opts.MaxLabels, "max-labels", 16, "label-value upper bound, must be <= 32")
	f.StringVar(&opts.MetricsAddr, "metrics-addr", "", "if set, serve Prometheus /metrics on this address")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}
