package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RunParallel splits cfg.Samples across workers independent simulators and
// merges their histograms by element-wise summation once all have finished.
// Each worker owns its tracker, histogram and RNG stream (derived from key
// via PartitionedRNG) and performs its own warm-up. With workers == 1 the
// result equals a sequential run seeded from the same key.
func RunParallel(dist TenancyDistribution, key SimulationKey, cfg RunConfig, workers int) (*Histogram, error) {
	if workers < 1 {
		return nil, fmt.Errorf("workers must be >= 1, got %d", workers)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := dist.Validate(); err != nil {
		return nil, err
	}

	// PartitionedRNG is not goroutine-safe: derive every stream up front.
	rngs := NewPartitionedRNG(key)
	streams := make([]*rand.Rand, workers)
	for i := range streams {
		streams[i] = rngs.ForSubsystem(SubsystemWorker(i))
	}

	results := make([]*Histogram, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		workerCfg := RunConfig{Samples: shareOf(cfg.Samples, workers, i), WarmUp: cfg.WarmUp}
		g.Go(func() error {
			s, err := NewSimulator(dist, streams[i], workerCfg)
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			results[i] = s.Run()
			logrus.Debugf("worker %d: recorded %d samples", i, results[i].Total())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := NewHistogram(dist.MaxDuration())
	for _, h := range results {
		merged.Merge(h)
	}
	return merged, nil
}

// shareOf returns worker i's part of total; the remainder goes to the lowest ids.
func shareOf(total int64, workers, i int) int64 {
	share := total / int64(workers)
	if int64(i) < total%int64(workers) {
		share++
	}
	return share
}
