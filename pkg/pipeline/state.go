// Package pipeline runs operation sequences through a geometry engine:
// the shape state machine, fail-fast execution with an append-only
// operation log, router-driven engine fallback, and artifact export.
package pipeline

import "github.com/forgecad/forgecad/pkg/kernel"

// State is the build's shape state. Failed is terminal.
type State string

const (
	// StateEmpty means no working shape exists yet.
	StateEmpty State = "empty"

	// StateHasSketch means the working shape is a 2-D profile.
	StateHasSketch State = "has_sketch"

	// StateHasSolid means the working shape is a 3-D body.
	StateHasSolid State = "has_solid"

	// StateFailed means an operation failed and the pipeline aborted.
	// There is no transition out of this state.
	StateFailed State = "failed"
)

// allowed reports whether the operation kind may run in the given state.
// Sketch operations run in any live state and start a new profile,
// discarding the prior shape. Extrude and Revolve need a sketch;
// everything else needs a solid.
func allowed(s State, kind kernel.OpKind) bool {
	if s == StateFailed {
		return false
	}
	if kind.IsSketch() {
		return true
	}
	switch kind {
	case kernel.OpExtrude, kernel.OpRevolve:
		return s == StateHasSketch
	default:
		return s == StateHasSolid
	}
}

// preconditionMessage names the missing prerequisite for an operation
// attempted in the wrong state.
func preconditionMessage(s State, kind kernel.OpKind) string {
	switch kind {
	case kernel.OpExtrude, kernel.OpRevolve:
		return "no profile to transform"
	default:
		if s == StateEmpty {
			return "no working shape exists"
		}
		return "operation requires a solid"
	}
}

// next returns the state after a successful operation.
func next(kind kernel.OpKind) State {
	if kind.IsSketch() {
		return StateHasSketch
	}
	return StateHasSolid
}
