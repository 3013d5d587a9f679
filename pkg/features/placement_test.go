package features

import (
	"math"
	"testing"

	"github.com/forgecad/forgecad/pkg/geom"
)

func TestLegPositions(t *testing.T) {
	b := geom.Box{Min: geom.Vec3{}, Max: geom.Vec3{X: 100, Y: 50, Z: 20}}
	got := LegPositions(b, 4, 10)
	want := []geom.Vec2{
		{X: 10, Y: 10},
		{X: 90, Y: 10},
		{X: 90, Y: 40},
		{X: 10, Y: 40},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d positions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestLegPositionsNonFourCount(t *testing.T) {
	b := geom.Box{Max: geom.Vec3{X: 100, Y: 100, Z: 10}}
	if got := LegPositions(b, 3, 10); got != nil {
		t.Errorf("Expected no positions for count=3, got %v", got)
	}
}

func TestSupportWebSpacing(t *testing.T) {
	b := geom.Box{Min: geom.Vec3{}, Max: geom.Vec3{X: 80, Y: 60, Z: 30}}
	webs := SupportWebs(b, 2, 5, 50)
	if len(webs) != 2 {
		t.Fatalf("Expected 2 webs, got %d", len(webs))
	}
	// spacing = 60/3 = 20, webs centered at y=20 and y=40
	centers := []float64{20, 40}
	for i, w := range webs {
		center := w.Min.Y + w.Thickness/2
		if math.Abs(center-centers[i]) > 1e-9 {
			t.Errorf("Web %d: expected center y=%v, got %v", i, centers[i], center)
		}
		if w.Length != 80 {
			t.Errorf("Web %d: expected full X span 80, got %v", i, w.Length)
		}
		if w.Min.Z != 0 {
			t.Errorf("Web %d: expected to start at zMin, got %v", i, w.Min.Z)
		}
	}
}

func TestLinearOffsets(t *testing.T) {
	offs := LinearOffsets(geom.Vec3{X: 1}, 10, 3)
	if len(offs) != 3 {
		t.Fatalf("Expected 3 offsets, got %d", len(offs))
	}
	if offs[0] != (geom.Vec3{}) {
		t.Errorf("Expected zero first offset, got %v", offs[0])
	}
	if offs[2].X != 20 {
		t.Errorf("Expected third offset x=20, got %v", offs[2].X)
	}
}

func TestLinearOffsetsNonUnitDirection(t *testing.T) {
	offs := LinearOffsets(geom.Vec3{X: 0, Y: 2, Z: 0}, 5, 2)
	if math.Abs(offs[1].Y-10) > 1e-9 {
		t.Errorf("Expected direction scaled by spacing, got %v", offs[1])
	}
}

func TestCircularAngles(t *testing.T) {
	angles := CircularAngles(6)
	want := []float64{0, 60, 120, 180, 240, 300}
	if len(angles) != len(want) {
		t.Fatalf("Expected %d angles, got %d", len(want), len(angles))
	}
	for i := range want {
		if math.Abs(angles[i]-want[i]) > 1e-9 {
			t.Errorf("Angle %d: expected %v, got %v", i, want[i], angles[i])
		}
	}
}
