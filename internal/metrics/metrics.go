package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// conversion pipeline.
type Metrics struct {
	ScansEnqueued    prometheus.Counter
	ProductsWritten  prometheus.Counter
	WorkflowRunning  prometheus.Gauge
	OutputBytes      prometheus.Counter
	BandReadFailures prometheus.Counter

	StageRuns     *prometheus.CounterVec   // labels: stage, outcome={success,failure,retry}
	StageDuration *prometheus.HistogramVec // labels: stage
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := build()
	prometheus.MustRegister(
		m.ScansEnqueued,
		m.ProductsWritten,
		m.WorkflowRunning,
		m.OutputBytes,
		m.BandReadFailures,
		m.StageRuns,
		m.StageDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return build()
}

func build() *Metrics {
	return &Metrics{
		ScansEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pps1c",
			Name:      "scans_enqueued_total",
			Help:      "Total satellite scans added to the queue.",
		}),
		ProductsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pps1c",
			Name:      "products_written_total",
			Help:      "Total level-1c products placed in the output directory.",
		}),
		WorkflowRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pps1c",
			Name:      "workflow_running",
			Help:      "1 when the workflow manager is active, 0 when shut down.",
		}),
		OutputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pps1c",
			Name:      "output_bytes_total",
			Help:      "Total bytes written to finished products.",
		}),
		BandReadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pps1c",
			Name:      "band_read_failures_total",
			Help:      "Bands skipped because their input could not be decoded.",
		}),
		StageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pps1c",
			Name:      "stage_runs_total",
			Help:      "Stage executions by stage name and outcome.",
		}, []string{"stage", "outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pps1c",
			Name:      "stage_duration_seconds",
			Help:      "Duration of a stage execution per queue item.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
	}
}
