package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestBoxMeshVolume(t *testing.T) {
	m := BoxMesh(10, 20, 30)
	if !almostEqual(m.Volume(), 6000, 1e-9) {
		t.Errorf("Expected volume 6000, got %f", m.Volume())
	}
}

func TestBoxMeshBounds(t *testing.T) {
	m := BoxMesh(10, 20, 30)
	b := m.Bounds()
	if !b.Min.NearEqual(Vec3{0, 0, 0}, 1e-9) {
		t.Errorf("Expected min at origin, got %+v", b.Min)
	}
	if !b.Max.NearEqual(Vec3{10, 20, 30}, 1e-9) {
		t.Errorf("Expected max (10,20,30), got %+v", b.Max)
	}
}

func TestBoxMeshFeatureEdges(t *testing.T) {
	m := BoxMesh(10, 10, 10)
	edges := m.FeatureEdges(30)
	if len(edges) != 12 {
		t.Errorf("Expected 12 feature edges for a box, got %d", len(edges))
	}
}

func TestBoxMeshPlanarFaceCount(t *testing.T) {
	m := BoxMesh(10, 10, 10)
	if got := m.PlanarFaceCount(); got != 6 {
		t.Errorf("Expected 6 planar faces for a box, got %d", got)
	}
}

func TestMeshTranslate(t *testing.T) {
	m := BoxMesh(10, 10, 10)
	m.Translate(Vec3{5, -5, 1})
	b := m.Bounds()
	if !b.Min.NearEqual(Vec3{5, -5, 1}, 1e-9) {
		t.Errorf("Expected translated min (5,-5,1), got %+v", b.Min)
	}
	if !almostEqual(m.Volume(), 1000, 1e-9) {
		t.Errorf("Translation changed volume: %f", m.Volume())
	}
}

func TestMeshRotateKeepsVolume(t *testing.T) {
	m := BoxMesh(10, 20, 30)
	m.Rotate(Vec3{}, Vec3{0, 0, 1}, 37)
	if !almostEqual(m.Volume(), 6000, 1e-6) {
		t.Errorf("Rotation changed volume: %f", m.Volume())
	}
}

func TestMeshAppendSumsVolumes(t *testing.T) {
	m := BoxMesh(10, 10, 10)
	other := BoxMesh(10, 10, 10)
	other.Translate(Vec3{100, 0, 0})
	m.Append(other)
	if !almostEqual(m.Volume(), 2000, 1e-9) {
		t.Errorf("Expected combined volume 2000, got %f", m.Volume())
	}
}

func TestMeshInvertedCavitySubtracts(t *testing.T) {
	outer := BoxMesh(10, 10, 10)
	inner := BoxMesh(2, 2, 2)
	inner.Translate(Vec3{4, 4, 4})
	inner.Invert()
	outer.Append(inner)
	if !almostEqual(outer.Volume(), 1000-8, 1e-9) {
		t.Errorf("Expected cavity volume 992, got %f", outer.Volume())
	}
}

func TestCylinderMeshVolume(t *testing.T) {
	r, h := 5.0, 20.0
	m := CylinderMesh(r, h)
	// Tessellated cylinder volume: area of a regular n-gon times height.
	n := float64(CircleSegments)
	want := 0.5 * n * r * r * math.Sin(2*math.Pi/n) * h
	if !almostEqual(m.Volume(), want, 1e-6) {
		t.Errorf("Expected volume %f, got %f", want, m.Volume())
	}
	// The polygonal approximation stays within 1% of pi*r^2*h.
	if math.Abs(m.Volume()-math.Pi*r*r*h)/(math.Pi*r*r*h) > 0.01 {
		t.Errorf("Cylinder volume off by more than 1%%: %f", m.Volume())
	}
}

func TestSphereMeshVolume(t *testing.T) {
	r := 10.0
	m := SphereMesh(r)
	want := 4.0 / 3.0 * math.Pi * r * r * r
	if math.Abs(m.Volume()-want)/want > 0.02 {
		t.Errorf("Sphere volume off by more than 2%%: got %f want %f", m.Volume(), want)
	}
}

func TestExtrudeVolumeMatchesAreaTimesHeight(t *testing.T) {
	p := PolygonProfile([]Vec2{{0, 0}, {40, 0}, {40, 10}, {10, 10}, {10, 30}, {0, 30}})
	m := Extrude(p, Vec3{0, 0, 5})
	want := p.Area() * 5
	if !almostEqual(m.Volume(), want, 1e-6) {
		t.Errorf("Expected L-profile volume %f, got %f", want, m.Volume())
	}
}

func TestExtrudeNegativeDirection(t *testing.T) {
	p := RectProfile(10, 10, true)
	m := Extrude(p, Vec3{0, 0, -5})
	if m.Volume() <= 0 {
		t.Errorf("Expected positive volume for downward extrude, got %f", m.Volume())
	}
	if !almostEqual(m.Volume(), 500, 1e-9) {
		t.Errorf("Expected volume 500, got %f", m.Volume())
	}
}

func TestRevolveFullCircleOffsetProfile(t *testing.T) {
	// A 10x10 square centered at x=30 revolved fully around Z sweeps a
	// torus-like ring: volume = area * path length of centroid (Pappus).
	p := PolygonProfile([]Vec2{{25, -5}, {35, -5}, {35, 5}, {25, 5}})
	m := Revolve(p, Vec3{0, 0, 1}, 360)
	want := 100 * 2 * math.Pi * 30
	if math.Abs(m.Volume()-want)/want > 0.02 {
		t.Errorf("Revolve volume off by more than 2%%: got %f want %f", m.Volume(), want)
	}
}

func TestRevolvePartialIsProportional(t *testing.T) {
	p := PolygonProfile([]Vec2{{25, -5}, {35, -5}, {35, 5}, {25, 5}})
	full := Revolve(p, Vec3{0, 0, 1}, 360)
	half := Revolve(p, Vec3{0, 0, 1}, 180)
	if math.Abs(half.Volume()*2-full.Volume())/full.Volume() > 0.02 {
		t.Errorf("Half revolve not half volume: half=%f full=%f", half.Volume(), full.Volume())
	}
}
