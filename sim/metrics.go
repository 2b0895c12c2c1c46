// Summarizes an occupancy histogram for reporting.

package sim

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates statistics of an occupancy histogram.
type Summary struct {
	Samples     int64   `json:"samples"`
	MaxObserved int     `json:"max_observed"`
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	P50         float64 `json:"p50"`
	P90         float64 `json:"p90"`
	P99         float64 `json:"p99"`
}

// Summarize computes count-weighted statistics over occupancy levels.
// Safe for an empty histogram (returns zero-value fields, MaxObserved -1).
func Summarize(h *Histogram) Summary {
	summary := Summary{Samples: h.Total(), MaxObserved: h.MaxObserved()}
	if h.Total() == 0 {
		return summary
	}

	// Quantile needs sorted x; only observed levels carry weight.
	levels := make([]float64, 0, summary.MaxObserved+1)
	weights := make([]float64, 0, summary.MaxObserved+1)
	for level := 0; level <= summary.MaxObserved; level++ {
		if c := h.Count(level); c > 0 {
			levels = append(levels, float64(level))
			weights = append(weights, float64(c))
		}
	}

	mean, std := stat.MeanStdDev(levels, weights)
	summary.Mean = mean
	if h.Total() > 1 {
		summary.StdDev = std
	}
	summary.P50 = stat.Quantile(0.50, stat.Empirical, levels, weights)
	summary.P90 = stat.Quantile(0.90, stat.Empirical, levels, weights)
	summary.P99 = stat.Quantile(0.99, stat.Empirical, levels, weights)
	return summary
}

// Print writes a human-readable summary. expectedMean is the Little's-law
// mean occupancy of the input distribution.
func (s Summary) Print(w io.Writer, expectedMean float64) {
	fmt.Fprintln(w, "=== Occupancy Summary ===")
	fmt.Fprintf(w, "Samples              : %d\n", s.Samples)
	if s.Samples > 0 {
		fmt.Fprintf(w, "Max Occupancy        : %d\n", s.MaxObserved)
		fmt.Fprintf(w, "Mean Occupancy       : %.4f\n", s.Mean)
		fmt.Fprintf(w, "Expected Mean        : %.4f\n", expectedMean)
		fmt.Fprintf(w, "Std Dev              : %.4f\n", s.StdDev)
		fmt.Fprintf(w, "P50 / P90 / P99      : %.0f / %.0f / %.0f\n", s.P50, s.P90, s.P99)
	}
}
