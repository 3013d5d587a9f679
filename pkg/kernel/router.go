package kernel

// JobHints describe the build as a whole and steer initial engine
// selection. They are declared by the caller, not inferred mid-build.
type JobHints struct {
	// Assembly marks a multi-part assembly-style build that benefits from
	// a rich workplane/sketch API.
	Assembly bool `json:"is_assembly,omitempty"`

	// Batch marks a batch run where per-document overhead dominates.
	Batch bool `json:"batch_mode,omitempty"`

	// Optimization marks an iterative optimization loop; treated like
	// Batch for selection purposes.
	Optimization bool `json:"optimization_required,omitempty"`
}

// RouterConfig names the engines filling each selection role.
type RouterConfig struct {
	// Default is the general-purpose engine, also the fallback target.
	Default string
	// Assembly is preferred for assembly-style builds.
	Assembly string
	// Batch is the lowest-overhead engine, preferred for batch and
	// optimization runs.
	Batch string
}

// Router picks an engine per build and provides the fallback target when
// the selected engine cannot perform an operation. Selection happens once
// at build start; the executor, not the router, drives the one-time
// engine switch because switching requires a shape round-trip.
type Router struct {
	registry *Registry
	cfg      RouterConfig
}

// NewRouter creates a router over the registry. Every configured role
// must resolve to a registered engine.
func NewRouter(registry *Registry, cfg RouterConfig) (*Router, error) {
	for _, name := range []string{cfg.Default, cfg.Assembly, cfg.Batch} {
		if _, err := registry.Get(name); err != nil {
			return nil, err
		}
	}
	return &Router{registry: registry, cfg: cfg}, nil
}

// Select returns the engine for a build. An explicit non-empty name wins
// and must be registered; otherwise hints decide: assembly builds get the
// workplane-rich engine, batch/optimization builds the lowest-overhead
// one, everything else the default.
func (r *Router) Select(explicit string, hints JobHints) (Kernel, error) {
	if explicit != "" {
		return r.registry.Get(explicit)
	}
	switch {
	case hints.Assembly:
		return r.registry.Get(r.cfg.Assembly)
	case hints.Batch, hints.Optimization:
		return r.registry.Get(r.cfg.Batch)
	default:
		return r.registry.Get(r.cfg.Default)
	}
}

// Fallback returns the engine the executor switches to when the selected
// engine reports an operation unsupported.
func (r *Router) Fallback() Kernel {
	k, err := r.registry.Get(r.cfg.Default)
	if err != nil {
		// Unreachable after NewRouter validation.
		panic(err)
	}
	return k
}

// Registry exposes the underlying engine registry.
func (r *Router) Registry() *Registry { return r.registry }
