package sim

import "sort"

// Source is the uniform randomness consumed by a sampler.
// *rand.Rand satisfies it; tests substitute fixed sequences.
type Source interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// TenancySampler draws tenancy durations for the driver.
type TenancySampler interface {
	// Draw returns one tenancy duration (>= 0).
	Draw() int64
	// MaxDuration returns the largest duration Draw can return.
	MaxDuration() int64
}

// WeightedSampler draws durations with probability weight/Σweights using
// inverse CDF lookup over prefix sums. Immutable after construction apart
// from the randomness it consumes.
//
// Thread-safety: NOT thread-safe. The Source is owned by the sampler.
type WeightedSampler struct {
	durations  []int64
	cumulative []float64 // prefix sums of weights, same length as durations
	total      float64
	last       int // index of the last positive-weight bucket
	largest    int64
	src        Source
}

// NewWeightedSampler builds a sampler over dist. Bucket order is kept as given.
// Returns an error wrapping ErrInvalidDistribution if dist cannot be sampled.
func NewWeightedSampler(dist TenancyDistribution, src Source) (*WeightedSampler, error) {
	if err := dist.Validate(); err != nil {
		return nil, err
	}
	s := &WeightedSampler{
		durations:  make([]int64, len(dist)),
		cumulative: make([]float64, len(dist)),
		largest:    dist.MaxDuration(),
		src:        src,
	}
	running := 0.0
	for i, b := range dist {
		running += b.Weight
		s.durations[i] = b.Duration
		s.cumulative[i] = running
		if b.Weight > 0 {
			s.last = i
		}
	}
	s.total = running
	return s, nil
}

// Draw returns one duration. O(log n) per call.
func (s *WeightedSampler) Draw() int64 {
	u := s.src.Float64() * s.total
	// First bucket whose prefix sum exceeds u. Zero-weight buckets share
	// their predecessor's prefix sum and are never selected.
	idx := sort.Search(len(s.cumulative), func(i int) bool { return s.cumulative[i] > u })
	if idx > s.last {
		// u rounded up to the total
		idx = s.last
	}
	return s.durations[idx]
}

// MaxDuration returns the largest duration in the underlying distribution.
func (s *WeightedSampler) MaxDuration() int64 {
	return s.largest
}
