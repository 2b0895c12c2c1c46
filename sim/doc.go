// Package sim provides the Monte Carlo cache occupancy simulator.
//
// # Reading Guide
//
// Start with these files, leaves first:
//   - sampler.go: WeightedSampler draws tenancy durations from an empirical distribution
//   - tracker.go: OccupancyTracker advances logical time, retires expired entries, admits one per step
//   - histogram.go: Histogram accumulates occupancy observations and normalizes them
//   - simulator.go: the driver loop (warm-up, then draw → admit → record)
//
// parallel.go runs independent simulators per worker and merges their
// histograms; rng.go derives a reproducible RNG stream per worker.
//
// # Sub-packages
//   - sim/tenancy/: reads (duration, weight) rows from delimited input
//   - sim/report/: writes the normalized histogram as CSV
//   - sim/store/: persists finished runs in SQLite
//   - sim/telemetry/: Prometheus counters for finished runs
package sim
