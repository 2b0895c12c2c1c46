package sim

import (
	"fmt"
	"math"
)

// Sample budget policies.
const (
	BudgetFixed  = "fixed"  // exactly Samples
	BudgetScaled = "scaled" // largest duration x Multiplier
)

// DefaultBudgetMultiplier is the per-duration-step sample count used by the
// scaled policy when none is configured.
const DefaultBudgetMultiplier = 100000

// BudgetConfig selects how many samples a run records.
type BudgetConfig struct {
	Policy     string `yaml:"policy"`
	Samples    int64  `yaml:"samples,omitempty"`
	Multiplier int64  `yaml:"multiplier,omitempty"`
}

// SampleBudget resolves the number of recorded samples for a distribution
// whose largest duration is maxDuration. Long tenancies mix slowly, so the
// scaled policy grows the budget with the largest duration.
func (b BudgetConfig) SampleBudget(maxDuration int64) (int64, error) {
	switch b.Policy {
	case "", BudgetFixed:
		if b.Samples < 0 {
			return 0, fmt.Errorf("sample budget must be non-negative, got %d", b.Samples)
		}
		return b.Samples, nil
	case BudgetScaled:
		if b.Samples != 0 {
			return 0, fmt.Errorf("samples (%d) only apply to the %s budget policy", b.Samples, BudgetFixed)
		}
		mult := b.Multiplier
		if mult == 0 {
			mult = DefaultBudgetMultiplier
		}
		if mult < 0 {
			return 0, fmt.Errorf("budget multiplier must be non-negative, got %d", mult)
		}
		base := max(maxDuration, 1)
		if base > math.MaxInt64/mult {
			return 0, fmt.Errorf("scaled budget overflows: %d x %d", base, mult)
		}
		return base * mult, nil
	default:
		return 0, fmt.Errorf("unknown budget policy %q; valid: %s, %s", b.Policy, BudgetFixed, BudgetScaled)
	}
}
