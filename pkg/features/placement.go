// Package features computes placements for the parametric composite
// operations: leg corners, support webs, hole tools, and pattern
// transforms. It is pure math over bounding boxes so every engine shares
// one implementation and the composites decompose into the primitive
// operations the engine already supports.
package features

import "github.com/forgecad/forgecad/pkg/geom"

// LegPositions returns the four leg center points for a solid with the
// given bounding box, inset from each corner by inset in X and Y, in
// counter-clockwise order starting at the min corner. Counts other than 4
// yield no positions; the corner math is defined for exactly four legs.
func LegPositions(b geom.Box, count int, inset float64) []geom.Vec2 {
	if count != 4 || b.IsEmpty() {
		return nil
	}
	return []geom.Vec2{
		{X: b.Min.X + inset, Y: b.Min.Y + inset},
		{X: b.Max.X - inset, Y: b.Min.Y + inset},
		{X: b.Max.X - inset, Y: b.Max.Y - inset},
		{X: b.Min.X + inset, Y: b.Max.Y - inset},
	}
}

// SupportWeb is one rectangular stiffening web to fuse into the solid.
type SupportWeb struct {
	// Min is the web's minimum corner.
	Min geom.Vec3
	// Length, Thickness, and Height are the web extents along X, Y, and Z.
	Length    float64
	Thickness float64
	Height    float64
}

// SupportWebs places count webs evenly spaced along the Y span of the
// bounding box, each spanning the full X width and rising from the bottom
// of the solid. Spacing is (yMax-yMin)/(count+1) so the webs divide the
// span into count+1 equal gaps.
func SupportWebs(b geom.Box, count int, thickness, height float64) []SupportWeb {
	if count <= 0 || b.IsEmpty() {
		return nil
	}
	spacing := (b.Max.Y - b.Min.Y) / float64(count+1)
	webs := make([]SupportWeb, 0, count)
	for i := 1; i <= count; i++ {
		y := b.Min.Y + spacing*float64(i)
		webs = append(webs, SupportWeb{
			Min:       geom.Vec3{X: b.Min.X, Y: y - thickness/2, Z: b.Min.Z},
			Length:    b.Max.X - b.Min.X,
			Thickness: thickness,
			Height:    height,
		})
	}
	return webs
}

// LinearOffsets returns the translation of each pattern instance, the
// direction vector scaled by spacing*i. The direction is used as given,
// so a non-unit vector stretches the step. The original counts as
// instance one, so the first offset is always zero and len(result) ==
// count.
func LinearOffsets(direction geom.Vec3, spacing float64, count int) []geom.Vec3 {
	if count < 1 {
		return nil
	}
	offsets := make([]geom.Vec3, count)
	for i := range offsets {
		offsets[i] = direction.Scale(spacing * float64(i))
	}
	return offsets
}

// CircularAngles returns the rotation angle in degrees of each pattern
// instance: count instances at 360/count steps, the original at zero.
func CircularAngles(count int) []float64 {
	if count < 1 {
		return nil
	}
	step := 360.0 / float64(count)
	angles := make([]float64, count)
	for i := range angles {
		angles[i] = step * float64(i)
	}
	return angles
}
