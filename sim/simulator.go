// sim/simulator.go
package sim

import (
	"github.com/sirupsen/logrus"
)

// Simulator holds one tenancy sampler, one occupancy tracker and the
// histogram they feed. It is single-threaded: every admission completes
// before the next begins.
type Simulator struct {
	Sampler   TenancySampler
	Tracker   *OccupancyTracker
	Histogram *Histogram
	Config    RunConfig
}

// NewSimulator builds a sampler over dist using src and an empty tracker
// and histogram sized for the largest duration.
func NewSimulator(dist TenancyDistribution, src Source, cfg RunConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sampler, err := NewWeightedSampler(dist, src)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		Sampler:   sampler,
		Tracker:   NewOccupancyTracker(),
		Histogram: NewHistogram(sampler.MaxDuration()),
		Config:    cfg,
	}, nil
}

// Run performs the configured warm-up and records Config.Samples occupancy
// observations into s.Histogram, which it returns.
func (s *Simulator) Run() *Histogram {
	logrus.Debugf("[step %07d] warm-up: %d admissions", s.Tracker.Step(), s.Config.WarmUp)
	for i := int64(0); i < s.Config.WarmUp; i++ {
		s.Tracker.Admit(s.Sampler.Draw())
	}
	for i := int64(0); i < s.Config.Samples; i++ {
		occupancy := s.Tracker.Admit(s.Sampler.Draw())
		s.Histogram.Record(occupancy)
	}
	logrus.Debugf("[step %07d] recorded %d samples, occupancy %d", s.Tracker.Step(), s.Config.Samples, s.Tracker.Occupancy())
	return s.Histogram
}

// Run drives sampler and tracker for cfg and returns a new histogram sized
// from the sampler's largest duration.
func Run(sampler TenancySampler, tracker *OccupancyTracker, cfg RunConfig) *Histogram {
	s := &Simulator{
		Sampler:   sampler,
		Tracker:   tracker,
		Histogram: NewHistogram(sampler.MaxDuration()),
		Config:    cfg,
	}
	return s.Run()
}
