package kernel

// Parameter bags, one per operation kind, with the documented defaults
// applied before decoding. Linear quantities are scaled to millimeters by
// the adapter via Scale; counts, angles, directions, and indices are never
// scaled.

// RectangleParams parameterizes SketchRectangle.
type RectangleParams struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Centered bool    `json:"centered"`
}

// Rectangle decodes SketchRectangle parameters.
func (o Operation) Rectangle() (RectangleParams, error) {
	p := RectangleParams{Width: 100, Height: 100, Centered: true}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *RectangleParams) Scale(f float64) {
	p.Width *= f
	p.Height *= f
}

// CircleParams parameterizes SketchCircle. Radius wins over Diameter when
// both are given.
type CircleParams struct {
	Radius   float64 `json:"radius"`
	Diameter float64 `json:"diameter"`
}

// Circle decodes SketchCircle parameters.
func (o Operation) Circle() (CircleParams, error) {
	var p CircleParams
	if err := o.decode(&p); err != nil {
		return p, err
	}
	if p.Radius == 0 {
		if p.Diameter != 0 {
			p.Radius = p.Diameter / 2
		} else {
			p.Radius = 50
		}
	}
	return p, nil
}

// Scale converts linear fields by the unit factor.
func (p *CircleParams) Scale(f float64) {
	p.Radius *= f
	p.Diameter *= f
}

// PolygonParams parameterizes SketchPolygon. Points are (x, y) pairs in
// the sketch plane; a duplicated closing point is tolerated. Closed must
// be true: only closed profiles form a face, so adapters reject the open
// case.
type PolygonParams struct {
	Points [][2]float64 `json:"points"`
	Closed bool         `json:"closed"`
}

// Polygon decodes SketchPolygon parameters.
func (o Operation) Polygon() (PolygonParams, error) {
	p := PolygonParams{Closed: true}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *PolygonParams) Scale(f float64) {
	for i := range p.Points {
		p.Points[i][0] *= f
		p.Points[i][1] *= f
	}
}

// ExtrudeParams parameterizes Extrude. The sweep vector is Direction
// scaled by Height.
type ExtrudeParams struct {
	Height    float64    `json:"height"`
	Direction [3]float64 `json:"direction"`
}

// Extrude decodes Extrude parameters.
func (o Operation) Extrude() (ExtrudeParams, error) {
	p := ExtrudeParams{Height: 10, Direction: [3]float64{0, 0, 1}}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *ExtrudeParams) Scale(f float64) {
	p.Height *= f
}

// RevolveParams parameterizes Revolve: axis through the world origin,
// angle in degrees.
type RevolveParams struct {
	Angle float64    `json:"angle"`
	Axis  [3]float64 `json:"axis"`
}

// Revolve decodes Revolve parameters.
func (o Operation) Revolve() (RevolveParams, error) {
	p := RevolveParams{Angle: 360, Axis: [3]float64{0, 0, 1}}
	err := o.decode(&p)
	return p, err
}

// Tool types for boolean operations.
const (
	ToolBox      = "box"
	ToolCylinder = "cylinder"
)

// BooleanParams parameterizes Cut, Fuse, and Common: a tool solid (box or
// cylinder) and its translation.
type BooleanParams struct {
	ToolType string     `json:"tool_type"`
	Length   float64    `json:"length"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Radius   float64    `json:"radius"`
	Position [3]float64 `json:"position"`
}

// Boolean decodes Cut/Fuse/Common parameters.
func (o Operation) Boolean() (BooleanParams, error) {
	p := BooleanParams{
		ToolType: ToolBox,
		Length:   10, Width: 10, Height: 10,
		Radius: 5,
	}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *BooleanParams) Scale(f float64) {
	p.Length *= f
	p.Width *= f
	p.Height *= f
	p.Radius *= f
	for i := range p.Position {
		p.Position[i] *= f
	}
}

// EdgeParams parameterizes Fillet and Chamfer. A nil Edges list selects
// every edge of the current solid; explicit indices are resolved against
// the solid's edge enumeration at execution time.
type EdgeParams struct {
	Radius   float64 `json:"radius"`
	Distance float64 `json:"distance"`
	Edges    []int   `json:"edges"`
}

// Fillet decodes Fillet parameters.
func (o Operation) Fillet() (EdgeParams, error) {
	p := EdgeParams{Radius: 1}
	err := o.decode(&p)
	return p, err
}

// Chamfer decodes Chamfer parameters.
func (o Operation) Chamfer() (EdgeParams, error) {
	p := EdgeParams{Distance: 1}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *EdgeParams) Scale(f float64) {
	p.Radius *= f
	p.Distance *= f
}

// ShellParams parameterizes Shell: faces to open (index 0 is the top
// face) and the inward wall thickness.
type ShellParams struct {
	Thickness     float64 `json:"thickness"`
	FacesToRemove []int   `json:"faces_to_remove"`
}

// Shell decodes Shell parameters.
func (o Operation) Shell() (ShellParams, error) {
	p := ShellParams{Thickness: 2, FacesToRemove: []int{0}}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *ShellParams) Scale(f float64) {
	p.Thickness *= f
}

// LegParams parameterizes AddLegs. Only count 4 is currently meaningful;
// other counts place no legs, a documented limitation of the corner
// placement math.
type LegParams struct {
	Count  int     `json:"count"`
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
	Inset  float64 `json:"inset"`
}

// Legs decodes AddLegs parameters.
func (o Operation) Legs() (LegParams, error) {
	p := LegParams{Count: 4, Height: 700, Radius: 25, Inset: 50}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *LegParams) Scale(f float64) {
	p.Height *= f
	p.Radius *= f
	p.Inset *= f
}

// HoleParams parameterizes AddHoles: one cylindrical cut per position.
type HoleParams struct {
	Positions [][3]float64 `json:"positions"`
	Diameter  float64      `json:"diameter"`
	Depth     float64      `json:"depth"`
}

// Holes decodes AddHoles parameters.
func (o Operation) Holes() (HoleParams, error) {
	p := HoleParams{Diameter: 3, Depth: 10}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *HoleParams) Scale(f float64) {
	p.Diameter *= f
	p.Depth *= f
	for i := range p.Positions {
		for j := range p.Positions[i] {
			p.Positions[i][j] *= f
		}
	}
}

// SupportParams parameterizes AddSupports: evenly spaced webs along the
// Y span of the bounding box.
type SupportParams struct {
	Count     int     `json:"count"`
	Thickness float64 `json:"thickness"`
	Height    float64 `json:"height"`
}

// Supports decodes AddSupports parameters.
func (o Operation) Supports() (SupportParams, error) {
	p := SupportParams{Count: 2, Thickness: 5, Height: 50}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *SupportParams) Scale(f float64) {
	p.Thickness *= f
	p.Height *= f
}

// LinearPatternParams parameterizes LinearPattern. The original counts as
// instance one; count-1 copies are placed at spacing intervals along the
// direction.
type LinearPatternParams struct {
	Direction [3]float64 `json:"direction"`
	Spacing   float64    `json:"spacing"`
	Count     int        `json:"count"`
}

// LinearPattern decodes LinearPattern parameters.
func (o Operation) LinearPattern() (LinearPatternParams, error) {
	p := LinearPatternParams{Direction: [3]float64{1, 0, 0}, Spacing: 10, Count: 3}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *LinearPatternParams) Scale(f float64) {
	p.Spacing *= f
}

// CircularPatternParams parameterizes CircularPattern: count instances at
// 360/count degree steps around the axis through the world origin.
type CircularPatternParams struct {
	Axis   [3]float64 `json:"axis"`
	Count  int        `json:"count"`
	Radius float64    `json:"radius"`
}

// CircularPattern decodes CircularPattern parameters.
func (o Operation) CircularPattern() (CircularPatternParams, error) {
	p := CircularPatternParams{Axis: [3]float64{0, 0, 1}, Count: 6, Radius: 50}
	err := o.decode(&p)
	return p, err
}

// Scale converts linear fields by the unit factor.
func (p *CircularPatternParams) Scale(f float64) {
	p.Radius *= f
}
