package kernels

import (
	"testing"

	"github.com/forgecad/forgecad/pkg/kernel"
)

func TestEngineCapabilities(t *testing.T) {
	solid := NewSolid()
	for _, k := range kernel.AllOpKinds {
		if !solid.Supports(k) {
			t.Errorf("Expected solid to support %s", k)
		}
	}

	workplane := NewWorkplane()
	for _, k := range []kernel.OpKind{kernel.OpRevolve, kernel.OpShell, kernel.OpLinearPattern, kernel.OpAddLegs} {
		if workplane.Supports(k) {
			t.Errorf("Expected workplane not to support %s", k)
		}
	}
	if !workplane.Supports(kernel.OpFillet) {
		t.Error("Expected workplane to support Fillet")
	}

	meshkit := NewMeshkit()
	for _, k := range []kernel.OpKind{kernel.OpRevolve, kernel.OpFillet, kernel.OpChamfer, kernel.OpShell} {
		if meshkit.Supports(k) {
			t.Errorf("Expected meshkit not to support %s", k)
		}
	}
	if !meshkit.Supports(kernel.OpLinearPattern) {
		t.Error("Expected meshkit to support LinearPattern")
	}
}

func TestNewRouterRegistersAllEngines(t *testing.T) {
	r, err := NewRouter()
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	names := r.Registry().Names()
	want := []string{EngineMeshkit, EngineSolid, EngineWorkplane}
	if len(names) != len(want) {
		t.Fatalf("Expected %d engines, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected engine %s at %d, got %s", want[i], i, names[i])
		}
	}

	k, err := r.Select("", kernel.JobHints{})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if k.Name() != EngineSolid {
		t.Errorf("Expected default engine %s, got %s", EngineSolid, k.Name())
	}
	if r.Fallback().Name() != EngineSolid {
		t.Errorf("Expected fallback engine %s, got %s", EngineSolid, r.Fallback().Name())
	}
}
