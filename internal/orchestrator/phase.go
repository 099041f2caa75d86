package orchestrator

import (
	"fmt"
)

// Phase represents the current state of the scan lifecycle. It tracks one
// dispatch from input validation through completion or failure.
type Phase string

const (
	// PhaseIdle indicates no scan is staged or running.
	PhaseIdle Phase = "idle"

	// PhaseValidating indicates local input checks are running; nothing
	// has reached the network yet.
	PhaseValidating Phase = "validating"

	// PhaseInFlight indicates exactly one request is outstanding at the
	// scanning service.
	PhaseInFlight Phase = "in_flight"

	// PhaseSuccess indicates the last scan completed and its results were
	// committed.
	PhaseSuccess Phase = "success"

	// PhaseError indicates the last scan failed locally or remotely.
	PhaseError Phase = "error"
)

func (p Phase) String() string { return string(p) }

// Settled reports whether the phase is a terminal outcome awaiting a reset
// or a new scan.
func (p Phase) Settled() bool {
	return p == PhaseSuccess || p == PhaseError
}

// ValidateTransition checks if a phase transition is valid and returns an error if not.
func (p Phase) ValidateTransition(target Phase) error {
	if !p.isValidTransition(target) {
		return fmt.Errorf("invalid scan phase transition from %s to %s", p, target)
	}
	return nil
}

// isValidTransition checks if the current phase can transition to the target
// phase. It enforces the scan lifecycle; a reset returns any active phase to
// idle without cancelling an outstanding request.
func (p Phase) isValidTransition(target Phase) bool {
	switch p {
	case PhaseIdle:
		// From idle, a dispatch moves to validating.
		return target == PhaseValidating
	case PhaseValidating:
		// Local checks either pass into flight or fail; a reset may
		// interleave.
		return target == PhaseInFlight || target == PhaseError || target == PhaseIdle
	case PhaseInFlight:
		// The outstanding request settles, or a reset abandons the
		// visible outcome while the request keeps running.
		return target == PhaseSuccess || target == PhaseError || target == PhaseIdle
	case PhaseSuccess, PhaseError:
		// Settled states return to idle on reset.
		return target == PhaseIdle
	default:
		return false
	}
}
