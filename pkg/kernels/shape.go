// Package kernels provides the in-process geometry engines. All three
// engines share one polyhedral backend over pkg/geom triangle meshes and
// differ in their capability tables and session overhead; the solid
// engine carries full operation coverage and serves as the fallback
// target.
package kernels

import (
	"github.com/forgecad/forgecad/pkg/geom"
	"github.com/forgecad/forgecad/pkg/kernel"
)

// featureAngleDeg is the dihedral angle above which a mesh edge counts as
// a selectable feature edge. 30 degrees keeps tessellation seams on
// curved surfaces out of the edge enumeration while keeping every sharp
// corner in it.
const featureAngleDeg = 30

// EdgeTreatment records a fillet or chamfer applied to a set of edges.
// The polyhedral backend does not re-tessellate blends; treatments ride
// on the solid and are reported alongside it.
type EdgeTreatment struct {
	Kind  kernel.OpKind `json:"kind"`
	Size  float64       `json:"size"`
	Edges []geom.Edge   `json:"edges"`
}

// polyShape is the working shape for every engine in this package: a 2-D
// profile before extrusion, a triangle-mesh solid after.
type polyShape struct {
	kind       kernel.ShapeKind
	profile    *geom.Profile
	mesh       *geom.Mesh
	treatments []EdgeTreatment
}

func newProfileShape(p *geom.Profile) *polyShape {
	return &polyShape{kind: kernel.ShapeProfile, profile: p}
}

func newSolidShape(m *geom.Mesh) *polyShape {
	return &polyShape{kind: kernel.ShapeSolid, mesh: m}
}

// ShapeKind reports profile or solid.
func (s *polyShape) ShapeKind() kernel.ShapeKind { return s.kind }

// Bounds returns the axis-aligned bounding box.
func (s *polyShape) Bounds() geom.Box {
	if s.kind == kernel.ShapeProfile {
		return s.profile.Bounds()
	}
	return s.mesh.Bounds()
}

// Volume returns the enclosed volume in cubic millimeters; zero for
// profiles.
func (s *polyShape) Volume() float64 {
	if s.kind != kernel.ShapeSolid {
		return 0
	}
	return s.mesh.Volume()
}

// EdgeCount returns the number of selectable edges: feature edges for a
// solid, boundary segments for a profile.
func (s *polyShape) EdgeCount() int {
	if s.kind == kernel.ShapeProfile {
		return len(s.profile.Points)
	}
	return len(s.mesh.FeatureEdges(featureAngleDeg))
}

// FaceCount returns the number of planar faces. A profile is one face.
func (s *polyShape) FaceCount() int {
	if s.kind == kernel.ShapeProfile {
		return 1
	}
	return s.mesh.PlanarFaceCount()
}

// Treatments returns the edge treatments recorded on the solid.
func (s *polyShape) Treatments() []EdgeTreatment { return s.treatments }

// cloneSolid copies the shape so an operation can mutate the mesh without
// aliasing the caller's shape.
func (s *polyShape) cloneSolid() *polyShape {
	out := &polyShape{kind: s.kind, mesh: s.mesh.Clone()}
	out.treatments = append(out.treatments, s.treatments...)
	return out
}
