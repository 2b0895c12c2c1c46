// Package telemetry exports run counters in the Prometheus text format,
// suitable for a node_exporter textfile collector.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inference-sim/occupancy-sim/sim"
)

// RunMetrics holds the collectors for finished simulation runs on a private registry.
type RunMetrics struct {
	registry     *prometheus.Registry
	runs         prometheus.Counter
	samples      prometheus.Counter
	meanOcc      prometheus.Gauge
	maxOcc       prometheus.Gauge
	expectedMean prometheus.Gauge
	runDuration  prometheus.Histogram
}

// NewRunMetrics creates and registers the run collectors.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "occupancy_sim_runs_total",
			Help: "Completed simulation runs.",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "occupancy_sim_samples_total",
			Help: "Occupancy samples recorded across all runs.",
		}),
		meanOcc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "occupancy_sim_mean_occupancy",
			Help: "Mean occupancy of the most recent run.",
		}),
		maxOcc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "occupancy_sim_max_occupancy",
			Help: "Highest occupancy observed in the most recent run.",
		}),
		expectedMean: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "occupancy_sim_expected_mean_occupancy",
			Help: "Little's-law mean occupancy of the most recent input distribution.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "occupancy_sim_run_duration_seconds",
			Help:    "Wall-clock duration of simulation runs.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	m.registry.MustRegister(m.runs, m.samples, m.meanOcc, m.maxOcc, m.expectedMean, m.runDuration)
	return m
}

// Observe records one finished run.
func (m *RunMetrics) Observe(summary sim.Summary, expectedMean float64, elapsed time.Duration) {
	m.runs.Inc()
	m.samples.Add(float64(summary.Samples))
	m.meanOcc.Set(summary.Mean)
	m.maxOcc.Set(float64(max(summary.MaxObserved, 0)))
	m.expectedMean.Set(expectedMean)
	m.runDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes all collectors to path in the Prometheus text format.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
