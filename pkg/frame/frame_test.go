package frame

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forgecad/forgecad/pkg/kernel"
)

func TestDimensionsFor(t *testing.T) {
	d := DimensionsFor(1800)

	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"seat tube", d.SeatTube, 900},
		{"top tube", d.TopTube, 540},
		{"head tube", d.HeadTube, 117},
		{"chainstay", d.Chainstay, 450},
		{"seatstay", d.Seatstay, 405},
		{"stack", d.Stack, 576},
		{"reach", d.Reach, 432},
		{"bb drop", d.BBDrop, 70},
		{"head angle", d.HeadAngle, 72},
		{"seat angle", d.SeatAngle, 73.5},
	}
	for _, c := range cases {
		if diff := c.got - c.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Expected %s %v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestGenerateConvertsUnits(t *testing.T) {
	f, err := Generate(Params{RiderHeight: 180, Units: kernel.UnitCM})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if f.RiderHeight != 1800 {
		t.Errorf("Expected rider height 1800mm, got %v", f.RiderHeight)
	}
	if f.Dimensions.SeatTube != 900 {
		t.Errorf("Expected seat tube 900, got %v", f.Dimensions.SeatTube)
	}
}

func TestGenerateTubeCount(t *testing.T) {
	f, err := Generate(Params{RiderHeight: 1800})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if f.TubeCount != 8 {
		t.Errorf("Expected 8 tubes, got %d", f.TubeCount)
	}
	if len(f.Mesh.Tris) == 0 {
		t.Error("Expected a non-empty compound mesh")
	}

	// The rear dropouts put the frame 40mm either side of centerline,
	// plus the stay radius.
	b := f.Mesh.Bounds()
	if b.Max.Y < 40 || b.Min.Y > -40 {
		t.Errorf("Expected stays to straddle the centerline, got bounds %v to %v", b.Min.Y, b.Max.Y)
	}
	// Chainstays reach backward of the bottom bracket.
	if b.Min.X > -400 {
		t.Errorf("Expected dropouts behind the bottom bracket, got min X %v", b.Min.X)
	}
}

func TestGenerateMaterials(t *testing.T) {
	steel, err := Generate(Params{RiderHeight: 1800, Material: MaterialSteel})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if steel.Diameters.DownTube != 32 {
		t.Errorf("Expected steel down tube 32, got %v", steel.Diameters.DownTube)
	}

	// Unknown materials fall back to the aluminum table.
	unknown, err := Generate(Params{RiderHeight: 1800, Material: "titanium"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if unknown.Diameters.DownTube != 38 {
		t.Errorf("Expected aluminum down tube 38, got %v", unknown.Diameters.DownTube)
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	if _, err := Generate(Params{RiderHeight: 0}); !kernel.IsValidation(err) {
		t.Errorf("Expected validation error for zero height, got %v", err)
	}
	if _, err := Generate(Params{RiderHeight: 1800, Units: "furlongs"}); !kernel.IsValidation(err) {
		t.Errorf("Expected validation error for bad units, got %v", err)
	}
}

func TestExportWritesAllFormats(t *testing.T) {
	f, err := Generate(Params{RiderHeight: 1800, Material: MaterialCarbon})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	dir := t.TempDir()
	res, err := Export(f, "frame-test", dir, nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if !res.Success {
		t.Error("Expected a successful result")
	}
	if res.ProductType != "bicycle_frame" {
		t.Errorf("Expected product type bicycle_frame, got %q", res.ProductType)
	}
	if len(res.Files) != 3 {
		t.Fatalf("Expected 3 files, got %d", len(res.Files))
	}
	for _, path := range res.Files {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("Expected %s to exist: %v", filepath.Base(path), err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("Expected %s to be non-empty", filepath.Base(path))
		}
	}

	obj, err := os.ReadFile(filepath.Join(dir, "frame-test.obj"))
	if err != nil {
		t.Fatalf("reading OBJ failed: %v", err)
	}
	if !strings.Contains(string(obj), "material carbon") {
		t.Error("Expected OBJ header to carry the material")
	}
}
