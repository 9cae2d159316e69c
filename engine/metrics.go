package engine

import "github.com/prometheus/client_golang/prometheus"

// backendMetrics is the optional Prometheus instrumentation for a
// Backend (spec §6: "Metrics are the opt-in telemetry of the
// host-application contract, not part of the core algorithm's
// required path").
type backendMetrics struct {
	changeRatio prometheus.Histogram
	iterations  prometheus.Counter
	runs        prometheus.Counter
	converged   prometheus.Counter
}

func newBackendMetrics(reg *prometheus.Registry) *backendMetrics {
	m := &backendMetrics{
		changeRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hyperlp",
			Name:      "change_ratio",
			Help:      "Fraction of vertices whose label changed in an iteration.",
			Buckets:   prometheus.DefBuckets,
		}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hyperlp",
			Name:      "iterations_total",
			Help:      "Total propagation iterations executed.",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hyperlp",
			Name:      "runs_total",
			Help:      "Total Backend.Run invocations.",
		}),
		converged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hyperlp",
			Name:      "runs_converged_total",
			Help:      "Total Backend.Run invocations that converged before max_iterations.",
		}),
	}
	reg.MustRegister(m.changeRatio, m.iterations, m.runs, m.converged)
	return m
}

func (m *backendMetrics) observeIteration(changeRatio float64) {
	m.changeRatio.Observe(changeRatio)
	m.iterations.Inc()
}

func (m *backendMetrics) observeRun(_ int, converged bool) {
	m.runs.Inc()
	if converged {
		m.converged.Inc()
	}
}
