// Package report writes normalized occupancy histograms.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/inference-sim/occupancy-sim/sim"
)

// Output formats for the probability column.
const (
	FormatFraction = "fraction" // shortest float representation, e.g. 0.25
	FormatPercent  = "percent"  // four decimals with a percent sign, e.g. 25.0000%
)

// IsValidFormat reports whether name is a known output format.
func IsValidFormat(name string) bool {
	return name == FormatFraction || name == FormatPercent
}

// Header is the CSV header row.
var Header = []string{"occupancy", "probability"}

// WriteHistogram writes one CSV row per occupancy level (0 up to the highest
// observed level) followed by a "sum: N" line with the recorded total.
// Write failures are returned unchanged apart from wrapping.
func WriteHistogram(w io.Writer, h *sim.Histogram, format string) error {
	var rows []sim.LevelProbability
	switch format {
	case "", FormatFraction:
		rows = h.Probabilities(0)
	case FormatPercent:
		rows = h.Percentages(0)
	default:
		return fmt.Errorf("unknown output format %q; valid: %s, %s", format, FormatFraction, FormatPercent)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		record := []string{strconv.Itoa(row.Level), formatProbability(row.Probability, format)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing level %d: %w", row.Level, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing histogram: %w", err)
	}
	if _, err := fmt.Fprintf(w, "sum: %d\n", h.Total()); err != nil {
		return fmt.Errorf("writing sample total: %w", err)
	}
	return nil
}

// WriteHistogramFile writes to path, or to stdout when path is "-".
func WriteHistogramFile(path string, h *sim.Histogram, format string) (retErr error) {
	if path == "-" {
		return WriteHistogram(os.Stdout, h, format)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("closing output %s: %w", path, closeErr)
		}
	}()
	return WriteHistogram(file, h, format)
}

func formatProbability(p float64, format string) string {
	if format == FormatPercent {
		return strconv.FormatFloat(p, 'f', 4, 64) + "%"
	}
	return strconv.FormatFloat(p, 'g', -1, 64)
}
