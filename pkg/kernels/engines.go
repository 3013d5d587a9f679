package kernels

import (
	"github.com/forgecad/forgecad/pkg/kernel"
)

// Engine names. These are the values accepted for explicit engine
// selection and reported in build results.
const (
	EngineSolid     = "solid"
	EngineWorkplane = "workplane"
	EngineMeshkit   = "meshkit"
)

// Engine is one geometry engine backed by the shared polyhedral backend.
type Engine struct {
	name string
	caps kernel.CapabilitySet
}

// Name returns the engine name.
func (e *Engine) Name() string { return e.name }

// Capabilities returns the static capability table.
func (e *Engine) Capabilities() kernel.CapabilitySet { return e.caps }

// Supports reports whether the engine can perform the operation kind.
func (e *Engine) Supports(kind kernel.OpKind) bool { return e.caps.Supports(kind) }

// NewSession opens a document for one build.
func (e *Engine) NewSession(buildID string, units kernel.Unit) (kernel.Session, error) {
	return newSession(e.name, buildID, e.caps, units), nil
}

// NewSolid returns the general-purpose default engine with full operation
// coverage. It is the router's fallback target.
func NewSolid() *Engine {
	return &Engine{name: EngineSolid, caps: kernel.FullCapabilitySet()}
}

// NewWorkplane returns the workplane engine: the richest sketch API, with
// extrude, booleans, and edge treatments, but no revolve, shell, patterns,
// or parametric features.
func NewWorkplane() *Engine {
	return &Engine{name: EngineWorkplane, caps: kernel.NewCapabilitySet(
		kernel.OpSketchRectangle, kernel.OpSketchCircle, kernel.OpSketchPolygon,
		kernel.OpExtrude,
		kernel.OpCut, kernel.OpFuse, kernel.OpCommon,
		kernel.OpFillet, kernel.OpChamfer,
	)}
}

// NewMeshkit returns the low-overhead batch engine: sketches, extrude,
// booleans, hole cuts, and patterns, but no revolve, edge treatments, or
// shell.
func NewMeshkit() *Engine {
	return &Engine{name: EngineMeshkit, caps: kernel.NewCapabilitySet(
		kernel.OpSketchRectangle, kernel.OpSketchCircle, kernel.OpSketchPolygon,
		kernel.OpExtrude,
		kernel.OpCut, kernel.OpFuse, kernel.OpCommon,
		kernel.OpAddHoles,
		kernel.OpLinearPattern, kernel.OpCircularPattern,
	)}
}

// DefaultRouterConfig assigns the shipped engines to their router roles.
func DefaultRouterConfig() kernel.RouterConfig {
	return kernel.RouterConfig{
		Default:  EngineSolid,
		Assembly: EngineWorkplane,
		Batch:    EngineMeshkit,
	}
}

// Register adds every shipped engine to the registry.
func Register(reg *kernel.Registry) error {
	for _, e := range []*Engine{NewSolid(), NewWorkplane(), NewMeshkit()} {
		if err := reg.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// NewRouter builds a router over all shipped engines with the default
// role assignment.
func NewRouter() (*kernel.Router, error) {
	reg := kernel.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return kernel.NewRouter(reg, DefaultRouterConfig())
}
