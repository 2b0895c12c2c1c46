package sim

import "fmt"

// LevelProbability is one row of a normalized occupancy histogram.
type LevelProbability struct {
	Level       int
	Probability float64
}

// Histogram counts observations per occupancy level.
// Storage is dense from level 0 and grows on demand.
type Histogram struct {
	counts []int64
	total  int64
}

// NewHistogram returns a histogram pre-sized for levels 0..maxLevel.
// A negative maxLevel yields an empty (but usable) histogram.
func NewHistogram(maxLevel int64) *Histogram {
	size := 0
	if maxLevel >= 0 {
		size = int(maxLevel) + 1
	}
	return &Histogram{counts: make([]int64, size)}
}

// HistogramFromCounts rebuilds a histogram from per-level counts, e.g. a stored run.
func HistogramFromCounts(counts []int64) (*Histogram, error) {
	h := &Histogram{counts: make([]int64, len(counts))}
	for level, c := range counts {
		if c < 0 {
			return nil, fmt.Errorf("negative count %d at level %d", c, level)
		}
		h.counts[level] = c
		h.total += c
	}
	return h, nil
}

// Record adds one observation at level. Panics on a negative level.
func (h *Histogram) Record(level int64) {
	if level < 0 {
		panic(fmt.Errorf("%w: histogram level %d below zero", ErrInvariantViolation, level))
	}
	if int(level) >= len(h.counts) {
		grown := make([]int64, int(level)+1)
		copy(grown, h.counts)
		h.counts = grown
	}
	h.counts[level]++
	h.total++
}

// Count returns the observations recorded at level (0 if out of range).
func (h *Histogram) Count(level int) int64 {
	if level < 0 || level >= len(h.counts) {
		return 0
	}
	return h.counts[level]
}

// Total returns the number of recorded observations.
func (h *Histogram) Total() int64 {
	return h.total
}

// MaxObserved returns the highest level with a non-zero count, or -1 if empty.
func (h *Histogram) MaxObserved() int {
	for level := len(h.counts) - 1; level >= 0; level-- {
		if h.counts[level] > 0 {
			return level
		}
	}
	return -1
}

// Counts returns a copy of the counts for levels 0..MaxObserved.
func (h *Histogram) Counts() []int64 {
	out := make([]int64, h.MaxObserved()+1)
	copy(out, h.counts)
	return out
}

// Merge adds other's counts into h element-wise.
func (h *Histogram) Merge(other *Histogram) {
	if len(other.counts) > len(h.counts) {
		grown := make([]int64, len(other.counts))
		copy(grown, h.counts)
		h.counts = grown
	}
	for level, c := range other.counts {
		h.counts[level] += c
	}
	h.total += other.total
}

// Probabilities returns count/totalSamples for every level from 0 to the
// highest observed level, zero-count levels included. totalSamples <= 0 uses
// the recorded total; a zero denominator is treated as 1 so an empty
// histogram reports a single zero-probability row at level 0.
func (h *Histogram) Probabilities(totalSamples int64) []LevelProbability {
	return h.normalize(totalSamples, 1)
}

// Percentages is Probabilities scaled by 100.
func (h *Histogram) Percentages(totalSamples int64) []LevelProbability {
	return h.normalize(totalSamples, 100)
}

func (h *Histogram) normalize(totalSamples int64, scale float64) []LevelProbability {
	denom := totalSamples
	if denom <= 0 {
		denom = h.total
	}
	if denom == 0 {
		denom = 1
	}
	n := h.MaxObserved() + 1
	if n == 0 {
		n = 1
	}
	rows := make([]LevelProbability, n)
	for level := range rows {
		rows[level] = LevelProbability{
			Level:       level,
			Probability: float64(h.Count(level)) / float64(denom) * scale,
		}
	}
	return rows
}
