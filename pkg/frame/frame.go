// Package frame generates parametric bicycle frames from rider height.
//
// Frame dimensions derive from standard road geometry ratios applied to
// the rider's height; tube diameters come from a per-material table. The
// result is a compound mesh of eight tubes positioned by the usual
// forward chain: seat tube at the bottom bracket, top tube off the seat
// cluster, head tube off the top tube, down tube back to the bottom
// bracket, then paired chainstays and seatstays to the rear dropouts.
package frame

import (
	"math"

	"github.com/forgecad/forgecad/pkg/geom"
	"github.com/forgecad/forgecad/pkg/kernel"
)

// Material selects the tube diameter table.
type Material string

const (
	MaterialAluminum Material = "aluminum"
	MaterialSteel    Material = "steel"
	MaterialCarbon   Material = "carbon"
)

// Geometry ratios applied to rider height, plus the fixed angles and
// bottom bracket drop shared by all sizes.
const (
	stackRatio     = 0.32
	reachRatio     = 0.24
	seatTubeRatio  = 0.50
	topTubeRatio   = 0.30
	headTubeRatio  = 0.065
	chainstayRatio = 0.25

	bbDropMM     = 70.0
	headAngleDeg = 72.0
	seatAngleDeg = 73.5

	// Rear dropouts sit 40 mm either side of the frame centerline.
	dropoutHalfSpacing = 40.0
)

// TubeDiameters holds the per-tube outer diameters in millimeters.
type TubeDiameters struct {
	DownTube  float64 `json:"down_tube"`
	TopTube   float64 `json:"top_tube"`
	SeatTube  float64 `json:"seat_tube"`
	HeadTube  float64 `json:"head_tube"`
	Chainstay float64 `json:"chainstay"`
	Seatstay  float64 `json:"seatstay"`
}

var tubeDiameters = map[Material]TubeDiameters{
	MaterialAluminum: {DownTube: 38, TopTube: 32, SeatTube: 32, HeadTube: 44, Chainstay: 18, Seatstay: 16},
	MaterialSteel:    {DownTube: 32, TopTube: 28, SeatTube: 28, HeadTube: 40, Chainstay: 16, Seatstay: 14},
	MaterialCarbon:   {DownTube: 40, TopTube: 34, SeatTube: 34, HeadTube: 46, Chainstay: 20, Seatstay: 18},
}

// DiametersFor returns the tube table for a material. Unknown materials
// get the aluminum table, matching the forgiving behavior expected of
// design documents.
func DiametersFor(m Material) TubeDiameters {
	if d, ok := tubeDiameters[m]; ok {
		return d
	}
	return tubeDiameters[MaterialAluminum]
}

// Dimensions are the derived frame measurements in millimeters and
// degrees.
type Dimensions struct {
	SeatTube  float64 `json:"seat_tube"`
	TopTube   float64 `json:"top_tube"`
	HeadTube  float64 `json:"head_tube"`
	Chainstay float64 `json:"chainstay"`
	Seatstay  float64 `json:"seatstay"`
	BBDrop    float64 `json:"bb_drop"`
	HeadAngle float64 `json:"head_angle"`
	SeatAngle float64 `json:"seat_angle"`
	Stack     float64 `json:"stack"`
	Reach     float64 `json:"reach"`
}

// DimensionsFor derives frame dimensions from a rider height in
// millimeters.
func DimensionsFor(riderHeightMM float64) Dimensions {
	h := riderHeightMM
	return Dimensions{
		SeatTube:  h * seatTubeRatio,
		TopTube:   h * topTubeRatio,
		HeadTube:  h * headTubeRatio,
		Chainstay: h * chainstayRatio,
		Seatstay:  h * chainstayRatio * 0.9,
		BBDrop:    bbDropMM,
		HeadAngle: headAngleDeg,
		SeatAngle: seatAngleDeg,
		Stack:     h * stackRatio,
		Reach:     h * reachRatio,
	}
}

// Params are the generator inputs.
type Params struct {
	// RiderHeight in the given units.
	RiderHeight float64 `json:"rider_height"`

	// Units of the rider height; empty means millimeters.
	Units kernel.Unit `json:"units,omitempty"`

	// Material selects tube diameters; empty means aluminum.
	Material Material `json:"material,omitempty"`
}

// Frame is a generated bicycle frame: its derived measurements and the
// compound mesh of all tubes.
type Frame struct {
	RiderHeight float64
	Material    Material
	Dimensions  Dimensions
	Diameters   TubeDiameters
	Mesh        *geom.Mesh
	TubeCount   int
}

// Generate builds a frame from the given parameters.
func Generate(p Params) (*Frame, error) {
	units, err := kernel.ParseUnit(string(p.Units))
	if err != nil {
		return nil, err
	}
	heightMM := p.RiderHeight * units.Factor()
	if heightMM <= 0 {
		return nil, kernel.NewValidationError("rider height must be positive", nil)
	}

	material := p.Material
	if material == "" {
		material = MaterialAluminum
	}

	f := &Frame{
		RiderHeight: heightMM,
		Material:    material,
		Dimensions:  DimensionsFor(heightMM),
		Diameters:   DiametersFor(material),
	}
	f.Mesh = buildTubes(f)
	return f, nil
}

var (
	origin = geom.Vec3{}
	axisX  = geom.Vec3{X: 1}
	axisY  = geom.Vec3{Y: 1}
	axisZ  = geom.Vec3{Z: 1}
)

func buildTubes(f *Frame) *geom.Mesh {
	d := f.Dimensions
	t := f.Diameters

	compound := &geom.Mesh{}
	add := func(m *geom.Mesh) {
		compound.Append(m)
		f.TubeCount++
	}

	seatRad := d.SeatAngle * math.Pi / 180
	headRad := d.HeadAngle * math.Pi / 180

	// Seat tube leans back off vertical at the bottom bracket.
	seat := geom.CylinderMesh(t.SeatTube/2, d.SeatTube)
	seat.Rotate(origin, axisX, 90-d.SeatAngle)
	add(seat)

	// Seat cluster, where the top tube and seatstays attach.
	clusterX := d.SeatTube * math.Sin(seatRad)
	clusterZ := d.SeatTube * math.Cos(seatRad)

	// Top tube runs forward horizontally from the seat cluster.
	top := geom.CylinderMesh(t.TopTube/2, d.TopTube)
	top.Rotate(origin, axisY, 90)
	top.Translate(geom.Vec3{X: clusterX, Z: clusterZ})
	add(top)

	// Down tube runs from the bottom bracket to the head tube top.
	endX := d.TopTube + d.HeadTube*math.Sin(headRad)
	endZ := d.HeadTube * math.Cos(headRad)
	downLen := math.Hypot(endX, endZ)
	downAngle := math.Atan2(endZ, endX) * 180 / math.Pi

	down := geom.CylinderMesh(t.DownTube/2, downLen)
	down.Rotate(origin, axisY, 90)
	down.Rotate(origin, axisZ, downAngle)
	add(down)

	// Head tube, at the forward end of the top tube.
	head := geom.CylinderMesh(t.HeadTube/2, d.HeadTube)
	head.Rotate(origin, axisX, 90-d.HeadAngle)
	head.Translate(geom.Vec3{X: clusterX + d.TopTube, Z: clusterZ})
	add(head)

	// Chainstays run rearward from the bottom bracket, angled up 5
	// degrees toward the dropouts.
	for _, side := range []float64{dropoutHalfSpacing, -dropoutHalfSpacing} {
		stay := geom.CylinderMesh(t.Chainstay/2, d.Chainstay)
		stay.Rotate(origin, axisY, 90)
		stay.Translate(geom.Vec3{Y: side})
		stay.Rotate(origin, axisZ, -5)
		add(stay)
	}

	// Seatstays attach 70% of the way up the seat tube and drop to the
	// rear dropouts.
	attach := d.SeatTube * 0.7
	startX := attach * math.Sin(seatRad)
	startZ := attach * math.Cos(seatRad)
	dx := -d.Chainstay - startX
	dz := -d.Chainstay*0.1 - startZ
	stayLen := math.Hypot(dx, dz)
	stayAngle := math.Atan2(dz, dx) * 180 / math.Pi

	for _, side := range []float64{dropoutHalfSpacing, -dropoutHalfSpacing} {
		stay := geom.CylinderMesh(t.Seatstay/2, stayLen)
		stay.Rotate(origin, axisY, 90)
		stay.Rotate(origin, axisZ, stayAngle)
		stay.Translate(geom.Vec3{X: startX, Y: side, Z: startZ})
		add(stay)
	}

	return compound
}
