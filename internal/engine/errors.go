package engine

import "fmt"

// PhaseError wraps a persistence failure inside one day-cycle phase.
//
// By the time a PhaseError surfaces, the failing phase's transaction has
// been rolled back; phases that committed earlier in the same day stay
// committed. The caller can retry AdvanceDay - committed phases are
// idempotent against re-execution.
type PhaseError struct {
	Phase string
	Day   int64
	Err   error
}

// Error implements the error interface.
func (e *PhaseError) Error() string {
	return fmt.Sprintf("day %d: phase %s: %v", e.Day, e.Phase, e.Err)
}

// Unwrap exposes the underlying store error.
func (e *PhaseError) Unwrap() error {
	return e.Err
}
