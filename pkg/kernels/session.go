package kernels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/forgecad/forgecad/pkg/export"
	"github.com/forgecad/forgecad/pkg/features"
	"github.com/forgecad/forgecad/pkg/geom"
	"github.com/forgecad/forgecad/pkg/kernel"
)

// session is one engine document for one build. Not safe for concurrent
// use; each build owns its own.
type session struct {
	engine  string
	buildID string
	caps    kernel.CapabilitySet
	factor  float64
}

func newSession(engine, buildID string, caps kernel.CapabilitySet, units kernel.Unit) *session {
	return &session{
		engine:  engine,
		buildID: buildID,
		caps:    caps,
		factor:  units.Factor(),
	}
}

// Apply performs one operation against the current working shape.
func (s *session) Apply(ctx context.Context, op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	if err := ctx.Err(); err != nil {
		return nil, kernel.NewKernelError("build canceled", err).WithOp(op.Kind).WithEngine(s.engine)
	}
	if !s.caps.Supports(op.Kind) {
		return nil, kernel.NewUnsupportedError(
			fmt.Sprintf("engine %s does not support %s", s.engine, op.Kind), nil).
			WithOp(op.Kind).WithEngine(s.engine)
	}

	shape, err := s.apply(op, cur)
	if err != nil {
		var kerr *kernel.Error
		if !errors.As(err, &kerr) {
			kerr = kernel.NewKernelError("operation failed", err)
		}
		if kerr.Op == "" {
			kerr.Op = op.Kind
		}
		if kerr.Engine == "" {
			kerr.Engine = s.engine
		}
		return nil, kerr
	}
	return shape, nil
}

func (s *session) apply(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	switch op.Kind {
	case kernel.OpSketchRectangle:
		return s.sketchRectangle(op)
	case kernel.OpSketchCircle:
		return s.sketchCircle(op)
	case kernel.OpSketchPolygon:
		return s.sketchPolygon(op)
	case kernel.OpExtrude:
		return s.extrude(op, cur)
	case kernel.OpRevolve:
		return s.revolve(op, cur)
	case kernel.OpCut, kernel.OpFuse, kernel.OpCommon:
		return s.boolean(op, cur)
	case kernel.OpFillet, kernel.OpChamfer:
		return s.edgeTreatment(op, cur)
	case kernel.OpShell:
		return s.shell(op, cur)
	case kernel.OpAddLegs:
		return s.addLegs(op, cur)
	case kernel.OpAddHoles:
		return s.addHoles(op, cur)
	case kernel.OpAddSupports:
		return s.addSupports(op, cur)
	case kernel.OpLinearPattern:
		return s.linearPattern(op, cur)
	case kernel.OpCircularPattern:
		return s.circularPattern(op, cur)
	default:
		return nil, kernel.NewConfigurationError(fmt.Sprintf("unknown operation kind %q", op.Kind), nil)
	}
}

// solidOf asserts that the working shape is a solid from this backend.
func (s *session) solidOf(cur kernel.Shape, kind kernel.OpKind) (*polyShape, error) {
	ps, ok := cur.(*polyShape)
	if !ok || ps == nil {
		return nil, kernel.NewPreconditionError(fmt.Sprintf("%s requires a solid, no shape exists", kind), nil)
	}
	if ps.kind != kernel.ShapeSolid {
		return nil, kernel.NewPreconditionError(fmt.Sprintf("%s requires a solid, current shape is a sketch", kind), nil)
	}
	return ps, nil
}

func (s *session) profileOf(cur kernel.Shape, kind kernel.OpKind) (*polyShape, error) {
	ps, ok := cur.(*polyShape)
	if !ok || ps == nil {
		return nil, kernel.NewPreconditionError(fmt.Sprintf("%s requires a sketch, no shape exists", kind), nil)
	}
	if ps.kind != kernel.ShapeProfile {
		return nil, kernel.NewPreconditionError(fmt.Sprintf("%s requires a sketch, current shape is a solid", kind), nil)
	}
	return ps, nil
}

func (s *session) sketchRectangle(op kernel.Operation) (kernel.Shape, error) {
	p, err := op.Rectangle()
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	if p.Width <= 0 || p.Height <= 0 {
		return nil, kernel.NewValidationError(
			fmt.Sprintf("rectangle dimensions must be positive, got %gx%g", p.Width, p.Height), nil)
	}
	return newProfileShape(geom.RectProfile(p.Width, p.Height, p.Centered)), nil
}

func (s *session) sketchCircle(op kernel.Operation) (kernel.Shape, error) {
	p, err := op.Circle()
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	if p.Radius <= 0 {
		return nil, kernel.NewValidationError(
			fmt.Sprintf("circle radius must be positive, got %g", p.Radius), nil)
	}
	return newProfileShape(geom.CircleProfile(p.Radius)), nil
}

func (s *session) sketchPolygon(op kernel.Operation) (kernel.Shape, error) {
	p, err := op.Polygon()
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	if !p.Closed {
		return nil, kernel.NewValidationError("open polygon profiles cannot form a face", nil)
	}
	if len(p.Points) < 3 {
		return nil, kernel.NewValidationError(
			fmt.Sprintf("polygon needs at least 3 points, got %d", len(p.Points)), nil)
	}
	pts := make([]geom.Vec2, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = geom.Vec2{X: pt[0], Y: pt[1]}
	}
	prof := geom.PolygonProfile(pts)
	if prof.Area() == 0 {
		return nil, kernel.NewValidationError("polygon is degenerate, all points collinear", nil)
	}
	return newProfileShape(prof), nil
}

func (s *session) extrude(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	ps, err := s.profileOf(cur, op.Kind)
	if err != nil {
		return nil, err
	}
	p, err := op.Extrude()
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	if p.Height <= 0 {
		return nil, kernel.NewValidationError(fmt.Sprintf("extrude height must be positive, got %g", p.Height), nil)
	}
	dir := geom.Vec3{X: p.Direction[0], Y: p.Direction[1], Z: p.Direction[2]}
	if dir.Length() == 0 {
		return nil, kernel.NewValidationError("extrude direction must be non-zero", nil)
	}
	return newSolidShape(geom.Extrude(ps.profile, dir.Scale(p.Height))), nil
}

func (s *session) revolve(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	ps, err := s.profileOf(cur, op.Kind)
	if err != nil {
		return nil, err
	}
	p, err := op.Revolve()
	if err != nil {
		return nil, err
	}
	if p.Angle <= 0 || p.Angle > 360 {
		return nil, kernel.NewValidationError(fmt.Sprintf("revolve angle must be in (0, 360], got %g", p.Angle), nil)
	}
	axis := geom.Vec3{X: p.Axis[0], Y: p.Axis[1], Z: p.Axis[2]}
	if axis.Length() == 0 {
		return nil, kernel.NewValidationError("revolve axis must be non-zero", nil)
	}
	return newSolidShape(geom.Revolve(ps.profile, axis, p.Angle)), nil
}

// toolMesh builds the boolean tool solid at its position.
func (s *session) toolMesh(p kernel.BooleanParams) (*geom.Mesh, error) {
	var tool *geom.Mesh
	switch p.ToolType {
	case kernel.ToolBox:
		if p.Length <= 0 || p.Width <= 0 || p.Height <= 0 {
			return nil, kernel.NewValidationError("box tool dimensions must be positive", nil)
		}
		tool = geom.BoxMesh(p.Length, p.Width, p.Height)
	case kernel.ToolCylinder:
		if p.Radius <= 0 || p.Height <= 0 {
			return nil, kernel.NewValidationError("cylinder tool dimensions must be positive", nil)
		}
		tool = geom.CylinderMesh(p.Radius, p.Height)
	default:
		return nil, kernel.NewConfigurationError(fmt.Sprintf("unknown tool type %q", p.ToolType), nil)
	}
	tool.Translate(geom.Vec3{X: p.Position[0], Y: p.Position[1], Z: p.Position[2]})
	return tool, nil
}

func (s *session) boolean(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	ps, err := s.solidOf(cur, op.Kind)
	if err != nil {
		return nil, err
	}
	p, err := op.Boolean()
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	tool, err := s.toolMesh(p)
	if err != nil {
		return nil, err
	}

	switch op.Kind {
	case kernel.OpCut:
		out := ps.cloneSolid()
		tool.Invert()
		out.mesh.Append(tool)
		return out, nil
	case kernel.OpFuse:
		out := ps.cloneSolid()
		out.mesh.Append(tool)
		return out, nil
	default: // Common
		overlap := ps.Bounds().Intersect(tool.Bounds())
		if overlap.IsEmpty() {
			return nil, kernel.NewKernelError("common of disjoint solids is empty", nil)
		}
		size := overlap.Size()
		m := geom.BoxMesh(size.X, size.Y, size.Z)
		m.Translate(overlap.Min)
		return newSolidShape(m), nil
	}
}

// resolveEdges maps an edge-index list to feature edges. A nil list
// selects every edge of the current solid.
func resolveEdges(ps *polyShape, indices []int) ([]geom.Edge, error) {
	all := ps.mesh.FeatureEdges(featureAngleDeg)
	if indices == nil {
		return all, nil
	}
	out := make([]geom.Edge, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(all) {
			return nil, kernel.NewConfigurationError(
				fmt.Sprintf("edge index %d out of range, solid has %d edges", i, len(all)), nil)
		}
		out = append(out, all[i])
	}
	return out, nil
}

func (s *session) edgeTreatment(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	ps, err := s.solidOf(cur, op.Kind)
	if err != nil {
		return nil, err
	}

	var p kernel.EdgeParams
	if op.Kind == kernel.OpFillet {
		p, err = op.Fillet()
	} else {
		p, err = op.Chamfer()
	}
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	size := p.Radius
	if op.Kind == kernel.OpChamfer {
		size = p.Distance
	}
	if size <= 0 {
		return nil, kernel.NewValidationError(fmt.Sprintf("%s size must be positive, got %g", op.Kind, size), nil)
	}

	edges, err := resolveEdges(ps, p.Edges)
	if err != nil {
		return nil, err
	}
	out := ps.cloneSolid()
	out.treatments = append(out.treatments, EdgeTreatment{Kind: op.Kind, Size: size, Edges: edges})
	return out, nil
}

// openCavityFace extends the shell cavity to the outer bound on one of
// the first six face indices: top, bottom, front, back, left, right.
// Higher indices stay closed; the bounding-box mapping has no plane for
// them.
func openCavityFace(cavity, bounds geom.Box, face int) geom.Box {
	switch face {
	case 0:
		cavity.Max.Z = bounds.Max.Z
	case 1:
		cavity.Min.Z = bounds.Min.Z
	case 2:
		cavity.Min.Y = bounds.Min.Y
	case 3:
		cavity.Max.Y = bounds.Max.Y
	case 4:
		cavity.Min.X = bounds.Min.X
	case 5:
		cavity.Max.X = bounds.Max.X
	}
	return cavity
}

func (s *session) shell(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	ps, err := s.solidOf(cur, op.Kind)
	if err != nil {
		return nil, err
	}
	p, err := op.Shell()
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	if p.Thickness <= 0 {
		return nil, kernel.NewValidationError(fmt.Sprintf("shell thickness must be positive, got %g", p.Thickness), nil)
	}
	faceCount := ps.FaceCount()
	for _, f := range p.FacesToRemove {
		if f < 0 || f >= faceCount {
			return nil, kernel.NewConfigurationError(
				fmt.Sprintf("face index %d out of range, solid has %d faces", f, faceCount), nil)
		}
	}

	bounds := ps.Bounds()
	t := p.Thickness
	cavity := geom.Box{
		Min: bounds.Min.Add(geom.Vec3{X: t, Y: t, Z: t}),
		Max: bounds.Max.Sub(geom.Vec3{X: t, Y: t, Z: t}),
	}
	if cavity.IsEmpty() {
		return nil, kernel.NewKernelError(
			fmt.Sprintf("shell thickness %g leaves no interior for solid of size %v", t, bounds.Size()), nil)
	}
	for _, f := range p.FacesToRemove {
		cavity = openCavityFace(cavity, bounds, f)
	}

	size := cavity.Size()
	tool := geom.BoxMesh(size.X, size.Y, size.Z)
	tool.Translate(cavity.Min)
	tool.Invert()
	out := ps.cloneSolid()
	out.mesh.Append(tool)
	return out, nil
}

func (s *session) addLegs(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	ps, err := s.solidOf(cur, op.Kind)
	if err != nil {
		return nil, err
	}
	p, err := op.Legs()
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	if p.Height <= 0 || p.Radius <= 0 {
		return nil, kernel.NewValidationError("leg height and radius must be positive", nil)
	}

	bounds := ps.Bounds()
	out := ps.cloneSolid()
	for _, pos := range features.LegPositions(bounds, p.Count, p.Inset) {
		leg := geom.CylinderMesh(p.Radius, p.Height)
		leg.Translate(geom.Vec3{X: pos.X, Y: pos.Y, Z: bounds.Min.Z - p.Height})
		out.mesh.Append(leg)
	}
	return out, nil
}

func (s *session) addHoles(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	ps, err := s.solidOf(cur, op.Kind)
	if err != nil {
		return nil, err
	}
	p, err := op.Holes()
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	if p.Diameter <= 0 || p.Depth <= 0 {
		return nil, kernel.NewValidationError("hole diameter and depth must be positive", nil)
	}

	out := ps.cloneSolid()
	for _, pos := range p.Positions {
		hole := geom.CylinderMesh(p.Diameter/2, p.Depth)
		hole.Translate(geom.Vec3{X: pos[0], Y: pos[1], Z: pos[2] - p.Depth})
		hole.Invert()
		out.mesh.Append(hole)
	}
	return out, nil
}

func (s *session) addSupports(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	ps, err := s.solidOf(cur, op.Kind)
	if err != nil {
		return nil, err
	}
	p, err := op.Supports()
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	if p.Count < 1 {
		return nil, kernel.NewValidationError(fmt.Sprintf("support count must be at least 1, got %d", p.Count), nil)
	}
	if p.Thickness <= 0 || p.Height <= 0 {
		return nil, kernel.NewValidationError("support thickness and height must be positive", nil)
	}

	out := ps.cloneSolid()
	for _, web := range features.SupportWebs(ps.Bounds(), p.Count, p.Thickness, p.Height) {
		m := geom.BoxMesh(web.Length, web.Thickness, web.Height)
		m.Translate(web.Min)
		out.mesh.Append(m)
	}
	return out, nil
}

func (s *session) linearPattern(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	ps, err := s.solidOf(cur, op.Kind)
	if err != nil {
		return nil, err
	}
	p, err := op.LinearPattern()
	if err != nil {
		return nil, err
	}
	p.Scale(s.factor)
	if p.Count < 1 {
		return nil, kernel.NewValidationError(fmt.Sprintf("pattern count must be at least 1, got %d", p.Count), nil)
	}
	dir := geom.Vec3{X: p.Direction[0], Y: p.Direction[1], Z: p.Direction[2]}
	if dir.Length() == 0 {
		return nil, kernel.NewValidationError("pattern direction must be non-zero", nil)
	}

	// Fuse one instance at a time to bound peak memory on compound inputs.
	out := ps.cloneSolid()
	for _, off := range features.LinearOffsets(dir, p.Spacing, p.Count)[1:] {
		inst := ps.mesh.Clone()
		inst.Translate(off)
		out.mesh.Append(inst)
	}
	return out, nil
}

func (s *session) circularPattern(op kernel.Operation, cur kernel.Shape) (kernel.Shape, error) {
	ps, err := s.solidOf(cur, op.Kind)
	if err != nil {
		return nil, err
	}
	p, err := op.CircularPattern()
	if err != nil {
		return nil, err
	}
	if p.Count < 1 {
		return nil, kernel.NewValidationError(fmt.Sprintf("pattern count must be at least 1, got %d", p.Count), nil)
	}
	axis := geom.Vec3{X: p.Axis[0], Y: p.Axis[1], Z: p.Axis[2]}
	if axis.Length() == 0 {
		return nil, kernel.NewValidationError("pattern axis must be non-zero", nil)
	}

	out := ps.cloneSolid()
	for _, angle := range features.CircularAngles(p.Count)[1:] {
		inst := ps.mesh.Clone()
		inst.Rotate(geom.Vec3{}, axis, angle)
		out.mesh.Append(inst)
	}
	return out, nil
}

// Export writes the shape to the given format.
func (s *session) Export(ctx context.Context, shape kernel.Shape, format export.Format, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return kernel.NewKernelError("build canceled", err).WithEngine(s.engine)
	}
	ps, ok := shape.(*polyShape)
	if !ok || ps == nil || ps.kind != kernel.ShapeSolid {
		return kernel.NewPreconditionError("export requires a solid", nil).WithEngine(s.engine)
	}

	switch format {
	case export.FormatSTEP:
		return s.wrapExportErr(export.WriteSTEP(w, s.buildID, ps.mesh, time.Now()))
	case export.FormatSTL:
		return s.wrapExportErr(export.WriteSTL(w, s.buildID, ps.mesh))
	case export.FormatOBJ:
		comments := []string{
			fmt.Sprintf("build %s", s.buildID),
			fmt.Sprintf("engine %s", s.engine),
		}
		return s.wrapExportErr(export.WriteOBJ(w, comments, ps.mesh))
	default:
		return kernel.NewConfigurationError(fmt.Sprintf("unsupported export format %q", format), nil).WithEngine(s.engine)
	}
}

func (s *session) wrapExportErr(err error) error {
	if err == nil {
		return nil
	}
	return kernel.NewKernelError("export failed", err).WithEngine(s.engine)
}

// snapshot is the portable shape serialization used for engine switches.
type snapshot struct {
	Kind       kernel.ShapeKind `json:"kind"`
	Profile    []geom.Vec2      `json:"profile,omitempty"`
	Verts      []geom.Vec3      `json:"verts,omitempty"`
	Tris       [][3]int         `json:"tris,omitempty"`
	Treatments []EdgeTreatment  `json:"treatments,omitempty"`
}

// Snapshot serializes the working shape for transfer to another engine.
func (s *session) Snapshot(shape kernel.Shape) ([]byte, error) {
	ps, ok := shape.(*polyShape)
	if !ok || ps == nil {
		return nil, kernel.NewKernelError("cannot snapshot a foreign shape", nil).WithEngine(s.engine)
	}
	snap := snapshot{Kind: ps.kind, Treatments: ps.treatments}
	if ps.kind == kernel.ShapeProfile {
		snap.Profile = ps.profile.Points
	} else {
		snap.Verts = ps.mesh.Verts
		snap.Tris = ps.mesh.Tris
	}
	return json.Marshal(snap)
}

// Restore rebuilds a working shape from a snapshot.
func (s *session) Restore(data []byte) (kernel.Shape, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, kernel.NewKernelError("malformed shape snapshot", err).WithEngine(s.engine)
	}
	switch snap.Kind {
	case kernel.ShapeProfile:
		return newProfileShape(&geom.Profile{Points: snap.Profile}), nil
	case kernel.ShapeSolid:
		ps := newSolidShape(&geom.Mesh{Verts: snap.Verts, Tris: snap.Tris})
		ps.treatments = snap.Treatments
		return ps, nil
	default:
		return nil, kernel.NewKernelError(fmt.Sprintf("snapshot has unknown shape kind %q", snap.Kind), nil).WithEngine(s.engine)
	}
}

// Close releases the session document. The polyhedral backend holds no
// external resources.
func (s *session) Close() error { return nil }
