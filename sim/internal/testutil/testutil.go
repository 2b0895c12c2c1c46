// Package testutil provides shared test infrastructure for the occupancy
// simulator: float assertions, temp-file helpers and scripted randomness.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// WriteTempFile writes content to name inside a per-test temp dir and returns its path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// ScriptedSource replays fixed uniform values, cycling when exhausted.
type ScriptedSource struct {
	Values []float64
	next   int
}

// Float64 returns the next scripted value.
func (s *ScriptedSource) Float64() float64 {
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}
