package sim

import "errors"

var (
	// ErrInvalidDistribution reports a tenancy distribution that cannot be sampled:
	// no rows, a negative or non-finite weight, a negative duration, or a zero weight total.
	ErrInvalidDistribution = errors.New("invalid tenancy distribution")

	// ErrMalformedRecord reports an input row that does not parse as (integer duration, real weight).
	ErrMalformedRecord = errors.New("malformed tenancy record")

	// ErrInvariantViolation is the panic value (wrapped) raised when occupancy
	// accounting goes wrong. It always indicates a logic defect.
	ErrInvariantViolation = errors.New("occupancy invariant violated")
)
