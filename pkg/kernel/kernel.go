package kernel

import (
	"context"
	"io"
	"sort"

	"github.com/forgecad/forgecad/pkg/export"
	"github.com/forgecad/forgecad/pkg/geom"
)

// ShapeKind distinguishes a 2-D profile from a 3-D body.
type ShapeKind string

const (
	// ShapeProfile is a 2-D sketch prior to extrusion or revolution.
	ShapeProfile ShapeKind = "profile"

	// ShapeSolid is a 3-D body.
	ShapeSolid ShapeKind = "solid"
)

// Shape is the working shape threaded through the pipeline. Its internal
// representation is engine-specific; the interface exposes only what the
// executor and the parametric generators need. A Shape is exclusively
// owned by one build and never shared.
type Shape interface {
	// ShapeKind reports whether this is a profile or a solid.
	ShapeKind() ShapeKind

	// Bounds returns the axis-aligned bounding box.
	Bounds() geom.Box

	// Volume returns the enclosed volume in cubic millimeters. Zero for
	// profiles.
	Volume() float64

	// EdgeCount returns the number of selectable edges in the current
	// topology. Edge indices in operations resolve against this
	// enumeration at execution time; indices captured before a boolean
	// changed the topology are invalid.
	EdgeCount() int

	// FaceCount returns the number of planar faces in the current
	// topology.
	FaceCount() int
}

// CapabilitySet maps operation kinds to supported/unsupported for one
// engine. Static per engine; it does not change during a build.
type CapabilitySet map[OpKind]bool

// NewCapabilitySet returns a set supporting exactly the given kinds.
func NewCapabilitySet(kinds ...OpKind) CapabilitySet {
	s := make(CapabilitySet, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

// FullCapabilitySet returns a set supporting every operation kind.
func FullCapabilitySet() CapabilitySet {
	return NewCapabilitySet(AllOpKinds...)
}

// Supports reports whether the set contains kind.
func (s CapabilitySet) Supports(kind OpKind) bool { return s[kind] }

// Kinds returns the supported kinds in stable order.
func (s CapabilitySet) Kinds() []OpKind {
	out := make([]OpKind, 0, len(s))
	for k, ok := range s {
		if ok {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Kernel is one geometry engine. Implementations normalize their native
// API into the uniform operation contract and declare which operation
// kinds they can perform.
type Kernel interface {
	// Name returns the engine name used in results and the engine log.
	Name() string

	// Capabilities returns the static capability table.
	Capabilities() CapabilitySet

	// Supports reports whether the engine can perform the operation kind.
	Supports(kind OpKind) bool

	// NewSession opens a document/session for one build. Sessions are not
	// safe for concurrent use; each build owns its own.
	NewSession(buildID string, units Unit) (Session, error)
}

// Session is one engine document holding per-build state. Apply threads
// the working shape: each call consumes the current shape and returns its
// replacement. Kernel calls are blocking and potentially CPU-heavy; there
// is no mid-operation cancellation, so ctx is consulted only between
// internal steps.
type Session interface {
	// Apply performs one operation against the current working shape and
	// returns the new working shape. A nil cur means no shape exists yet;
	// only sketch operations accept that.
	Apply(ctx context.Context, op Operation, cur Shape) (Shape, error)

	// Export writes the shape to the given format.
	Export(ctx context.Context, shape Shape, format export.Format, w io.Writer) error

	// Snapshot serializes the working shape for transfer to another
	// engine. This is the round-trip that makes the router's engine
	// switch possible; it loses engine-native features beyond the
	// tessellated boundary.
	Snapshot(shape Shape) ([]byte, error)

	// Restore rebuilds a working shape from a snapshot produced by any
	// engine's Snapshot.
	Restore(data []byte) (Shape, error)

	// Close releases the session document.
	Close() error
}
