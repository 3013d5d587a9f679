package pipeline

import (
	"time"

	"github.com/forgecad/forgecad/pkg/kernel"
)

// OpStatus is the outcome of one logged operation.
type OpStatus string

const (
	OpStatusSuccess OpStatus = "success"
	OpStatusFailed  OpStatus = "failed"
)

// LogEntry is one append-only operation log record. Entries exist only
// for operations that ran; fail-fast means nothing after a failure is
// logged.
type LogEntry struct {
	// Index is the operation's position in the input sequence.
	Index int `json:"index"`

	// Kind is the operation kind.
	Kind kernel.OpKind `json:"kind"`

	// Status is success or failed.
	Status OpStatus `json:"status"`

	// Engine is the engine that actually ran the operation.
	Engine string `json:"engine"`

	// Duration is the operation's wall time.
	Duration time.Duration `json:"duration_ns"`

	// Error is the failure message; empty on success.
	Error string `json:"error,omitempty"`
}

// EngineSwitch records a router fallback: the remaining pipeline moved
// from one engine to another at the given operation. It is not an
// operation failure.
type EngineSwitch struct {
	// Index is the operation that triggered the switch.
	Index int `json:"index"`

	// Kind is that operation's kind.
	Kind kernel.OpKind `json:"kind"`

	// From is the engine that reported the kind unsupported.
	From string `json:"from"`

	// To is the engine now running the build.
	To string `json:"to"`
}

// Result is the terminal artifact of one build. Immutable once produced.
type Result struct {
	// Success reports whether every operation and export succeeded.
	Success bool `json:"success"`

	// BuildID keys the build and names its output files.
	BuildID string `json:"build_id"`

	// Engine is the engine in use when the build ended.
	Engine string `json:"engine"`

	// Operations is the append-only operation log.
	Operations []LogEntry `json:"operations"`

	// OperationsCount is the number of operations that ran.
	OperationsCount int `json:"operations_count"`

	// EngineSwitches lists router fallbacks, in order.
	EngineSwitches []EngineSwitch `json:"engine_switches,omitempty"`

	// Files are the exported artifact paths.
	Files []string `json:"files"`

	// Error is the failure message; empty on success.
	Error string `json:"error,omitempty"`

	// FailedIndex is the index of the failing operation, -1 on success
	// or when the failure happened outside the operation loop. Always
	// serialized so a failure at index zero stays distinguishable.
	FailedIndex int `json:"failed_index"`

	// FinalState is the shape state at build end.
	FinalState State `json:"final_state"`

	// Duration is the whole build's wall time.
	Duration time.Duration `json:"duration_ns"`
}
