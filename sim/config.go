package sim

import "fmt"

// DefaultWarmUp is the number of unrecorded admissions before sampling starts.
// One admission makes the first recorded sample a post-admission state.
const DefaultWarmUp = 1

// RunConfig groups the parameters of a single simulation run.
type RunConfig struct {
	Samples int64 // recorded admissions (>= 0)
	WarmUp  int64 // admissions performed before recording starts (>= 0)
}

// Validate checks the run parameters.
func (c RunConfig) Validate() error {
	if c.Samples < 0 {
		return fmt.Errorf("samples must be non-negative, got %d", c.Samples)
	}
	if c.WarmUp < 0 {
		return fmt.Errorf("warm-up must be non-negative, got %d", c.WarmUp)
	}
	return nil
}
