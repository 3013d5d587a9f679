package geom

import "math"

// CircleSegments is the tessellation density used when a circular profile
// or primitive is converted to a polygon.
const CircleSegments = 64

// Profile is a closed planar polygon in the XY sketch plane, wound
// counter-clockwise. It is the 2-D shape produced by sketch operations and
// consumed by extrude and revolve.
type Profile struct {
	Points []Vec2
}

// RectProfile returns a width x height rectangle. When centered is true the
// rectangle is centered on the origin, otherwise its lower-left corner sits
// at the origin.
func RectProfile(width, height float64, centered bool) *Profile {
	var x, y float64
	if centered {
		x, y = -width/2, -height/2
	}
	return &Profile{Points: []Vec2{
		{x, y},
		{x + width, y},
		{x + width, y + height},
		{x, y + height},
	}}
}

// CircleProfile returns a circle of the given radius centered on the
// origin, tessellated as a regular polygon.
func CircleProfile(radius float64) *Profile {
	pts := make([]Vec2, CircleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / CircleSegments
		pts[i] = Vec2{radius * math.Cos(a), radius * math.Sin(a)}
	}
	return &Profile{Points: pts}
}

// PolygonProfile returns a profile from explicit points. A duplicated
// closing point (last == first) is dropped; the polygon is implicitly
// closed.
func PolygonProfile(points []Vec2) *Profile {
	if len(points) > 1 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	p := &Profile{Points: points}
	if p.SignedArea() < 0 {
		p.reverse()
	}
	return p
}

// SignedArea returns the shoelace area of the polygon; positive for
// counter-clockwise winding.
func (p *Profile) SignedArea() float64 {
	var a float64
	n := len(p.Points)
	for i := 0; i < n; i++ {
		a += p.Points[i].Cross(p.Points[(i+1)%n])
	}
	return a / 2
}

// Area returns the absolute polygon area.
func (p *Profile) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Bounds returns the bounding box of the profile in the z=0 plane.
func (p *Profile) Bounds() Box {
	b := EmptyBox()
	for _, pt := range p.Points {
		b = b.Extend(Vec3{pt.X, pt.Y, 0})
	}
	return b
}

func (p *Profile) reverse() {
	for i, j := 0, len(p.Points)-1; i < j; i, j = i+1, j-1 {
		p.Points[i], p.Points[j] = p.Points[j], p.Points[i]
	}
}
