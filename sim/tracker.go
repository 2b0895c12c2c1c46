package sim

import "fmt"

// OccupancyTracker counts live cache entries on a logical timeline.
// Each Admit advances time by one step, retires entries due at the new step,
// then admits one entry. Entries are anonymous: only the number expiring at
// each future step is kept.
//
// Invariant: occupied == sum of expirations[s] for all s > step.
type OccupancyTracker struct {
	step        int64
	occupied    int64
	expirations map[int64]int64 // absolute step -> entries expiring at that step
}

// NewOccupancyTracker returns an empty tracker at step 0.
func NewOccupancyTracker() *OccupancyTracker {
	return &OccupancyTracker{
		expirations: make(map[int64]int64),
	}
}

// Admit advances one step and admits an entry that stays live for duration
// steps. Returns the occupancy after admission.
//
// A duration-1 entry is counted at its admission step only. A duration-0
// entry expires at the step it is admitted, whose expirations are already
// resolved, so it is retired immediately and never counted.
func (t *OccupancyTracker) Admit(duration int64) int64 {
	if duration < 0 {
		panic(fmt.Errorf("%w: negative tenancy %d at step %d", ErrInvariantViolation, duration, t.step+1))
	}
	t.advance()
	if duration == 0 {
		return t.occupied
	}
	t.occupied++
	t.expirations[t.step+duration]++
	return t.occupied
}

// advance moves to the next step and retires entries due at it.
func (t *OccupancyTracker) advance() {
	t.step++
	due, ok := t.expirations[t.step]
	if !ok {
		return
	}
	delete(t.expirations, t.step)
	if due > t.occupied {
		panic(fmt.Errorf("%w: %d entries expire at step %d but only %d are live",
			ErrInvariantViolation, due, t.step, t.occupied))
	}
	t.occupied -= due
}

// Occupancy returns the number of live entries.
func (t *OccupancyTracker) Occupancy() int64 {
	return t.occupied
}

// Step returns the current logical step.
func (t *OccupancyTracker) Step() int64 {
	return t.step
}

// PendingSteps returns the number of future steps with scheduled expirations.
func (t *OccupancyTracker) PendingSteps() int {
	return len(t.expirations)
}
