package sim

import (
	"fmt"
	"math"
)

// TenancyBucket is one row of an empirical tenancy distribution.
type TenancyBucket struct {
	Duration int64   `yaml:"duration" json:"duration"` // steps an entry stays live (>= 0)
	Weight   float64 `yaml:"weight" json:"weight"`     // relative frequency (>= 0)
}

// TenancyDistribution is an ordered set of tenancy buckets.
// Row order is significant: it fixes the sampler's index ordering.
type TenancyDistribution []TenancyBucket

// Validate checks that the distribution can be sampled.
func (d TenancyDistribution) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("%w: no buckets", ErrInvalidDistribution)
	}
	total := 0.0
	for i, b := range d {
		if b.Duration < 0 {
			return fmt.Errorf("%w: bucket %d has negative duration %d", ErrInvalidDistribution, i, b.Duration)
		}
		if math.IsNaN(b.Weight) || math.IsInf(b.Weight, 0) {
			return fmt.Errorf("%w: bucket %d weight must be finite, got %f", ErrInvalidDistribution, i, b.Weight)
		}
		if b.Weight < 0 {
			return fmt.Errorf("%w: bucket %d has negative weight %f", ErrInvalidDistribution, i, b.Weight)
		}
		total += b.Weight
	}
	if total <= 0 || math.IsInf(total, 0) {
		return fmt.Errorf("%w: weights sum to %f; must be positive", ErrInvalidDistribution, total)
	}
	return nil
}

// MaxDuration returns the largest duration in the distribution, or 0 when empty.
// It bounds the achievable occupancy.
func (d TenancyDistribution) MaxDuration() int64 {
	var largest int64
	for _, b := range d {
		if b.Duration > largest {
			largest = b.Duration
		}
	}
	return largest
}

// TotalWeight returns the sum of all bucket weights.
func (d TenancyDistribution) TotalWeight() float64 {
	total := 0.0
	for _, b := range d {
		total += b.Weight
	}
	return total
}

// MeanTenancy returns the weighted mean duration, Σ d·w / Σ w.
// With one admission per step this is also the expected mean occupancy (Little's law).
// Returns 0 for a distribution with no weight.
func (d TenancyDistribution) MeanTenancy() float64 {
	total := d.TotalWeight()
	if total <= 0 {
		return 0
	}
	sum := 0.0
	for _, b := range d {
		sum += float64(b.Duration) * b.Weight
	}
	return sum / total
}
